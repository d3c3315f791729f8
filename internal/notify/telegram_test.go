package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/QTrader/internal/model"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestSendSummary(t *testing.T) {
	fake := &fakeSender{}
	tg := newTelegram(fake, 42)

	s := &model.TrainingSummary{
		Symbol:           "AAPL",
		Episodes:         10,
		InitialBalance:   10000,
		FinalAsset:       11000,
		TotalReturn:      0.1,
		BuyAndHoldReturn: 0.05,
	}
	require.NoError(t, tg.SendSummary(context.Background(), s))

	require.Len(t, fake.sent, 1)
	assert.Equal(t, int64(42), fake.sent[0].ChatID)
	assert.Contains(t, fake.sent[0].Text, "AAPL")
	assert.Contains(t, fake.sent[0].Text, "Return: 10.00%")
	assert.Contains(t, fake.sent[0].Text, "outperformed")
}

func TestSendTruncates(t *testing.T) {
	fake := &fakeSender{}
	tg := newTelegram(fake, 1)

	require.NoError(t, tg.Send(context.Background(), strings.Repeat("x", maxMessageLen+10)))
	assert.Len(t, fake.sent[0].Text, maxMessageLen)
}

func TestSendErrors(t *testing.T) {
	tg := newTelegram(&fakeSender{err: errors.New("boom")}, 1)
	assert.ErrorContains(t, tg.Send(context.Background(), "hi"), "boom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, tg.Send(ctx, "hi"), context.Canceled)

	assert.Error(t, tg.SendSummary(context.Background(), nil))
}

func TestNewTelegramValidates(t *testing.T) {
	_, err := NewTelegram("", 1)
	assert.Error(t, err)
	_, err = NewTelegram("token", 0)
	assert.Error(t, err)
}

func TestFormatMessageVerdicts(t *testing.T) {
	assert.Contains(t, FormatMessage(&model.TrainingSummary{TotalReturn: 0.01, BuyAndHoldReturn: 0.02}), "underperformed")
	assert.Contains(t, FormatMessage(&model.TrainingSummary{}), "matched")
}
