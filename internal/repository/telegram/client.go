package telegram

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Config struct {
	Token   string
	Timeout time.Duration
	Debug   bool
}

// API is the part of the bot client the services use.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBotAPI authenticates against the Bot API over an instrumented HTTP client.
func NewBotAPI(cfg Config) (*tgbotapi.BotAPI, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	// Long polling keeps a request open for the poll timeout; leave room for it.
	client := &http.Client{
		Timeout:   timeout + 60*time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	bot.Debug = cfg.Debug
	return bot, nil
}
