// Package notify sends training summaries to a Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/QTrader/internal/model"
)

// Telegram messages are capped at 4096 characters
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts messages to a single chat
type Telegram struct {
	bot    sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegram authorizes the bot token and returns a notifier for chatID
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}

	return newTelegram(bot, chatID), nil
}

func newTelegram(bot sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram").Logger(),
	}
}

// Send posts text, truncated to the Telegram limit
func (t *Telegram) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen])
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}

	t.logger.Info().Int64("chat_id", t.chatID).Msg("Message sent")
	return nil
}

// SendSummary formats a training summary and posts it
func (t *Telegram) SendSummary(ctx context.Context, s *model.TrainingSummary) error {
	if s == nil {
		return errors.New("summary is required")
	}
	return t.Send(ctx, FormatMessage(s))
}

// FormatMessage renders the short chat form of a summary
func FormatMessage(s *model.TrainingSummary) string {
	verdict := "matched"
	switch {
	case s.TotalReturn > s.BuyAndHoldReturn:
		verdict = "outperformed"
	case s.TotalReturn < s.BuyAndHoldReturn:
		verdict = "underperformed"
	}

	return fmt.Sprintf("QTrader training finished: %s\n"+
		"Episodes: %d\n"+
		"Final asset: $%.2f (start $%.2f)\n"+
		"Return: %.2f%%\n"+
		"Buy & hold: %.2f%%\n"+
		"Agent %s buy & hold",
		s.Symbol, s.Episodes, s.FinalAsset, s.InitialBalance,
		s.TotalReturn*100, s.BuyAndHoldReturn*100, verdict)
}
