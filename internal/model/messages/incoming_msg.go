package messages

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

const strangerMessage = "Sorry, I only talk to my owner"

type messageSender interface {
	SendMessage(text string, userID int64) error
}

type MessageHandler interface {
	HandleMessage(ctx context.Context, text string) (string, error)
}

type serviceConfig interface {
	config
	OwnerID() int64
}

type Service struct {
	tgClient messageSender
	handler  MessageHandler
	ownerID  int64
}

func NewService(tgClient messageSender, store expenseStore, config serviceConfig) *Service {
	return &Service{
		tgClient: tgClient,
		handler:  newHandler(store, config),
		ownerID:  config.OwnerID(),
	}
}

type Message struct {
	Text   string
	UserID int64
}

func (s *Service) HandleIncomingMessage(ctx context.Context, msg Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "handleMessage")
	defer span.Finish()

	cmd, _ := parseCommand(msg.Text)
	span.SetTag("command", cmd)

	start := time.Now()
	err := s.handle(ctx, msg)
	elapsed := time.Since(start)

	observeResponse(elapsed, cmd, err != nil)
	if err != nil {
		ext.Error.Set(span, true)
	}
	return err
}

func (s *Service) handle(ctx context.Context, msg Message) error {
	if msg.UserID != s.ownerID {
		logger.Warn("message from a stranger", zap.Int64("user", msg.UserID))
		return s.tgClient.SendMessage(strangerMessage, msg.UserID)
	}

	resp, err := s.handler.HandleMessage(ctx, msg.Text)
	if err != nil {
		_ = s.tgClient.SendMessage(fitMessage("Sorry, something wrong happened...\n"+resp), msg.UserID)
		return err
	}
	return s.tgClient.SendMessage(fitMessage(resp), msg.UserID)
}

// fitMessage cuts text to the longest message Telegram accepts.
func fitMessage(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageRunes {
		return text
	}
	return string([]rune(text)[:maxMessageRunes])
}
