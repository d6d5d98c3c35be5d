package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/pkg/config"
)

// ErrRejected is returned when Expo refuses a message for good
var ErrRejected = errors.New("push rejected")

// TokenSource returns the registered push token of an identity
type TokenSource interface {
	PushToken(ctx context.Context, identity string) (string, error)
}

// Gateway sends push notifications through the Expo push API
type Gateway struct {
	url             string
	tokens          TokenSource
	client          *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	logger          *zap.Logger
}

// NewGateway creates an Expo gateway
func NewGateway(cfg config.PushConfig, tokens TokenSource, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		url:             cfg.URL,
		tokens:          tokens,
		client:          &http.Client{Timeout: cfg.Timeout},
		maxRetries:      cfg.MaxRetries,
		initialInterval: 500 * time.Millisecond,
		logger:          logger.Named("expo"),
	}
}

type platformOptions struct {
	Priority  string `json:"priority,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
	Sound     string `json:"sound,omitempty"`
	Vibrate   []int  `json:"vibrate,omitempty"`
}

type iosOptions struct {
	Sound             string `json:"sound,omitempty"`
	InterruptionLevel string `json:"interruptionLevel,omitempty"`
}

type message struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound"`
	Priority string                 `json:"priority"`
	Android  platformOptions        `json:"android"`
	IOS      iosOptions             `json:"ios"`
}

type ticket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type sendResponse struct {
	Data ticket `json:"data"`
}

func buildMessage(token string, msg entities.PushMessage) message {
	m := message{
		To:       token,
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     msg.Data,
		Sound:    "default",
		Priority: "high",
		Android: platformOptions{
			Priority:  "high",
			ChannelID: "default-notifications",
			Sound:     "default",
			Vibrate:   []int{100, 200, 100},
		},
		IOS: iosOptions{Sound: "default", InterruptionLevel: "active"},
	}
	if msg.Urgent {
		m.Sound = "ringtone"
		m.Android.ChannelID = "urgent-notifications"
		m.Android.Sound = "ringtone"
		m.Android.Vibrate = []int{100, 200, 100, 200, 100, 400}
		m.IOS = iosOptions{Sound: "ringtone.wav", InterruptionLevel: "critical"}
	}
	return m
}

// Send pushes msg to every device of msg.Identity. Identities without a
// registered token are skipped silently.
func (g *Gateway) Send(ctx context.Context, msg entities.PushMessage) error {
	token, err := g.tokens.PushToken(ctx, msg.Identity)
	if errors.Is(err, entities.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load push token: %w", err)
	}
	if token == "" {
		g.logger.Debug("push.no_token", zap.String("identity", msg.Identity))
		return nil
	}

	body, err := json.Marshal(buildMessage(token, msg))
	if err != nil {
		return fmt.Errorf("failed to encode push: %w", err)
	}

	attempt := 0
	send := func() error {
		attempt++
		return g.post(ctx, body)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.initialInterval
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(send, backoff.WithContext(backoff.WithMaxRetries(bo, g.maxRetries), ctx)); err != nil {
		return fmt.Errorf("push to %s failed after %d attempts: %w", msg.Identity, attempt, err)
	}

	g.logger.Debug("push.sent",
		zap.String("identity", msg.Identity),
		zap.String("title", msg.Title),
		zap.Int("attempts", attempt),
	)
	return nil
}

func (g *Gateway) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("expo returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return backoff.Permanent(fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, raw))
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	if out.Data.Status == "error" {
		return backoff.Permanent(fmt.Errorf("%w: %s (%s)", ErrRejected, out.Data.Message, out.Data.Details.Error))
	}
	return nil
}
