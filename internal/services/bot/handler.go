package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/NordCoder/trenes-alerts/internal/domain/line"
	"github.com/NordCoder/trenes-alerts/internal/domain/subscription"
	"github.com/NordCoder/trenes-alerts/internal/domain/user"
	"github.com/NordCoder/trenes-alerts/internal/render"
	"github.com/NordCoder/trenes-alerts/internal/repository/telegram"
)

// Handler serves the chat commands and the inline keyboard callbacks.
type Handler struct {
	Users  UserRegistrar
	Lines  LineReader
	Subs   SubscriptionWriter
	Alerts AlertReader
	Bot    telegram.API
	Log    *zap.Logger
}

// Handle processes one update. Updates that are neither commands nor callbacks are ignored.
func (h *Handler) Handle(ctx context.Context, upd tgbotapi.Update) error {
	switch {
	case upd.CallbackQuery != nil:
		return h.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.IsCommand():
		return h.handleCommand(ctx, upd.Message)
	}
	return nil
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}
	switch msg.Command() {
	case "start":
		return h.start(ctx, msg)
	case "lines":
		return h.lines(ctx, msg)
	case "alerts":
		return h.alerts(ctx, msg)
	case "add":
		return h.pickLine(ctx, msg, actionAdd)
	case "remove":
		return h.pickLine(ctx, msg, actionRemove)
	}
	return nil
}

func (h *Handler) start(ctx context.Context, msg *tgbotapi.Message) error {
	u := &user.User{
		ID:        msg.From.ID,
		ChatID:    msg.Chat.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
	if err := h.Users.Register(ctx, u); err != nil {
		if !errors.Is(err, ErrAlreadyRegistered) {
			return fmt.Errorf("register user %d: %w", u.ID, err)
		}
		h.Log.Warn("user already registered", zap.Int64("user_id", u.ID))
	} else {
		h.Log.Info("user registered", zap.Int64("user_id", u.ID), zap.Int64("chat_id", u.ChatID))
	}
	return h.reply(msg.Chat.ID, render.Welcome(msg.From.FirstName), nil)
}

func (h *Handler) lines(ctx context.Context, msg *tgbotapi.Message) error {
	ls, err := h.Lines.ListByUser(ctx, msg.From.ID)
	if err != nil {
		return fmt.Errorf("list user lines: %w", err)
	}
	names := make([]string, 0, len(ls))
	for _, l := range ls {
		names = append(names, l.Name)
	}
	return h.reply(msg.Chat.ID, render.LineList(names), nil)
}

func (h *Handler) alerts(ctx context.Context, msg *tgbotapi.Message) error {
	groups, err := h.Alerts.ListByUser(ctx, msg.From.ID)
	if err != nil {
		return fmt.Errorf("list user alerts: %w", err)
	}
	if len(groups) == 0 {
		return h.reply(msg.Chat.ID, render.NoAlerts, nil)
	}
	for _, g := range groups {
		if err := h.reply(msg.Chat.ID, render.LineAlerts(g.LineName, g.Alerts), nil); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) pickLine(ctx context.Context, msg *tgbotapi.Message, action string) error {
	var (
		ls    []line.Line
		err   error
		title = render.PickLineToAdd
		empty = render.NoLinesToAdd
	)
	if action == actionAdd {
		ls, err = h.Lines.ListAvailable(ctx, msg.From.ID)
	} else {
		ls, err = h.Lines.ListByUser(ctx, msg.From.ID)
		title, empty = render.PickLineToRemove, render.NoLinesToRemove
	}
	if err != nil {
		return fmt.Errorf("list lines for %s: %w", action, err)
	}
	if len(ls) == 0 {
		return h.reply(msg.Chat.ID, empty, nil)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(ls))
	for _, l := range ls {
		text := l.Name
		if action == actionRemove {
			text = "❌ " + l.Name
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(text, callbackData(action, l)),
		))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return h.reply(msg.Chat.ID, title, &kb)
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	// Stop the client spinner first, whatever happens next.
	if _, err := h.Bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		h.Log.Warn("answer callback", zap.Error(err))
	}
	if q.From == nil {
		return nil
	}

	cb, err := parseCallback(q.Data)
	if err != nil {
		h.Log.Warn("ignoring callback", zap.Error(err))
		return nil
	}
	sub := subscription.Subscription{UserID: q.From.ID, LineID: cb.LineID}

	var text string
	switch cb.Action {
	case actionAdd:
		err = h.Subs.Add(ctx, sub)
		switch {
		case err == nil:
			h.Log.Info("subscribed", zap.Int64("user_id", sub.UserID), zap.Int64("line_id", sub.LineID))
		case errors.Is(err, ErrAlreadySubscribed):
			h.Log.Warn("already subscribed", zap.Int64("user_id", sub.UserID), zap.Int64("line_id", sub.LineID))
		case errors.Is(err, ErrNotRegistered):
			return h.edit(q, render.NotRegistered)
		case errors.Is(err, ErrLineGone):
			h.Log.Warn("subscribe to missing line", zap.Int64("user_id", sub.UserID), zap.Int64("line_id", sub.LineID))
			return h.edit(q, render.LineGone)
		default:
			return fmt.Errorf("subscribe user %d to line %d: %w", sub.UserID, sub.LineID, err)
		}
		text = render.LineAdded(cb.LineName)
	case actionRemove:
		removed, err := h.Subs.Remove(ctx, sub)
		if err != nil {
			return fmt.Errorf("unsubscribe user %d from line %d: %w", sub.UserID, sub.LineID, err)
		}
		h.Log.Info("unsubscribed",
			zap.Int64("user_id", sub.UserID),
			zap.Int64("line_id", sub.LineID),
			zap.Bool("removed", removed),
		)
		text = render.LineRemoved(cb.LineName)
	default:
		h.Log.Warn("unknown callback action", zap.String("action", cb.Action))
		return nil
	}
	return h.edit(q, text)
}

func (h *Handler) reply(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := h.Bot.Send(msg); err != nil {
		return fmt.Errorf("reply to chat %d: %w", chatID, err)
	}
	return nil
}

// edit replaces the keyboard message with a confirmation, dropping the keyboard.
func (h *Handler) edit(q *tgbotapi.CallbackQuery, text string) error {
	if q.Message == nil || q.Message.Chat == nil {
		return nil
	}
	cfg := tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, text)
	cfg.ParseMode = tgbotapi.ModeHTML
	if _, err := h.Bot.Send(cfg); err != nil {
		return fmt.Errorf("edit message %d: %w", q.Message.MessageID, err)
	}
	return nil
}
