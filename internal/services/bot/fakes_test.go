package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/line"
	"github.com/NordCoder/trenes-alerts/internal/domain/subscription"
	"github.com/NordCoder/trenes-alerts/internal/domain/user"
)

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	sendErr   error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) edits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

type fakeUsers struct {
	registered map[int64]user.User
	err        error
}

func (f *fakeUsers) Register(_ context.Context, u *user.User) error {
	if f.err != nil {
		return f.err
	}
	if f.registered == nil {
		f.registered = map[int64]user.User{}
	}
	if _, ok := f.registered[u.ID]; ok {
		return ErrAlreadyRegistered
	}
	f.registered[u.ID] = *u
	return nil
}

type fakeLines struct {
	all  []line.Line
	subs map[int64]map[int64]bool
}

func (f *fakeLines) ListByUser(_ context.Context, userID int64) ([]line.Line, error) {
	var out []line.Line
	for _, l := range f.all {
		if f.subs[userID][l.ID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLines) ListAvailable(_ context.Context, userID int64) ([]line.Line, error) {
	var out []line.Line
	for _, l := range f.all {
		if !f.subs[userID][l.ID] {
			out = append(out, l)
		}
	}
	return out, nil
}

// Add and Remove make fakeLines double as the subscription store.
func (f *fakeLines) Add(_ context.Context, s subscription.Subscription) error {
	if f.subs == nil {
		f.subs = map[int64]map[int64]bool{}
	}
	if f.subs[s.UserID] == nil {
		f.subs[s.UserID] = map[int64]bool{}
	}
	if f.subs[s.UserID][s.LineID] {
		return ErrAlreadySubscribed
	}
	f.subs[s.UserID][s.LineID] = true
	return nil
}

func (f *fakeLines) Remove(_ context.Context, s subscription.Subscription) (bool, error) {
	if !f.subs[s.UserID][s.LineID] {
		return false, nil
	}
	delete(f.subs[s.UserID], s.LineID)
	return true, nil
}

type fakeAlerts struct {
	byUser map[int64][]alert.LineAlerts
}

func (f *fakeAlerts) ListByUser(_ context.Context, userID int64) ([]alert.LineAlerts, error) {
	return f.byUser[userID], nil
}

func command(userID, chatID int64, text string) tgbotapi.Update {
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		From:     &tgbotapi.User{ID: userID, FirstName: "Ana", UserName: "ana"},
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func callbackUpdate(userID, chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: userID},
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 77,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
	}}
}
