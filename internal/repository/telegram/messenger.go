package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ErrRecipientUnavailable means the chat blocked the bot or no longer exists.
var ErrRecipientUnavailable = errors.New("recipient unavailable")

type Messenger struct {
	api API
	log *zap.Logger
}

func NewMessenger(api API) *Messenger {
	return &Messenger{
		api: api,
		log: zap.L().With(zap.String("component", "telegram.messenger")),
	}
}

func (m *Messenger) WithLogger(l *zap.Logger) *Messenger {
	if l == nil {
		return m
	}
	cp := *m
	cp.log = l.With(zap.String("component", "telegram.messenger"))
	return &cp
}

// Send delivers an HTML formatted text to one chat.
func (m *Messenger) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := m.api.Send(msg); err != nil {
		return classify(chatID, err)
	}
	m.log.Debug("message sent", zap.Int64("chat_id", chatID), zap.Int("len", len(text)))
	return nil
}

func classify(chatID int64, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden {
		return fmt.Errorf("chat %d: %w: %s", chatID, ErrRecipientUnavailable, apiErr.Message)
	}
	return fmt.Errorf("chat %d: send: %w", chatID, err)
}
