package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TelegramSender delivers operator alerts to a chat.
type TelegramSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}

// TelegramBridgeClient talks to the bot bridge internal API.
type TelegramBridgeClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewTelegramBridgeClient(baseURL string, log *zap.Logger) *TelegramBridgeClient {
	return &TelegramBridgeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

func (c *TelegramBridgeClient) SendMessage(ctx context.Context, chatID, text string) error {
	body, _ := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    text,
	})

	url := fmt.Sprintf("%s/internal/notify", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram bridge unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram bridge returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// MockTelegramSender logs instead of delivering.
type MockTelegramSender struct {
	log *zap.Logger
}

func NewMockTelegramSender(log *zap.Logger) *MockTelegramSender {
	return &MockTelegramSender{log: log}
}

func (s *MockTelegramSender) SendMessage(_ context.Context, chatID, text string) error {
	s.log.Info("mock telegram message sent",
		zap.String("chat_id", chatID),
		zap.String("text", text),
	)
	return nil
}
