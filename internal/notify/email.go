package notify

import (
	"context"

	"go.uber.org/zap"
)

type Email struct {
	To      string
	Subject string
	Text    string
}

// EmailAdapter abstracts the outbound mail channel.
type EmailAdapter interface {
	Send(ctx context.Context, email Email) error
}

// MockEmailAdapter logs instead of sending. Used in dev and tests.
type MockEmailAdapter struct {
	log *zap.Logger
}

func NewMockEmailAdapter(log *zap.Logger) *MockEmailAdapter {
	return &MockEmailAdapter{log: log}
}

func (a *MockEmailAdapter) Send(_ context.Context, email Email) error {
	a.log.Info("mock email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
	)
	return nil
}
