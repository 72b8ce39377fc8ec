package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"github.com/thikana-bd/app-thikana/internal/utils/httpclient"
	"go.uber.org/zap"
)

// SMSDispatcher sends short messages to a mobile number
type SMSDispatcher interface {
	Send(ctx context.Context, mobileNumber, message string) error
}

// GatewaySMSDispatcher posts messages to an external SMS gateway
type GatewaySMSDispatcher struct {
	gatewayURL string
	pool       *httpclient.Pool
	logger     *logging.SafeLogger
}

// NewGatewaySMSDispatcher creates a dispatcher backed by an HTTP gateway
func NewGatewaySMSDispatcher(gatewayURL string, pool *httpclient.Pool, logger *logging.SafeLogger) *GatewaySMSDispatcher {
	return &GatewaySMSDispatcher{
		gatewayURL: gatewayURL,
		pool:       pool,
		logger:     logger,
	}
}

func (d *GatewaySMSDispatcher) Send(ctx context.Context, mobileNumber, message string) error {
	payload, err := json.Marshal(map[string]string{
		"to":      mobileNumber,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.pool.Get()
	defer d.pool.Put(client)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: gateway unreachable: %v", models.ErrDispatchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.logger.Error("sms gateway rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("mobile_number", observability.MaskPhone(mobileNumber)))
		return fmt.Errorf("%w: gateway returned status %d", models.ErrDispatchFailed, resp.StatusCode)
	}

	d.logger.Debug("sms dispatched",
		zap.String("mobile_number", observability.MaskPhone(mobileNumber)))
	return nil
}

// LogSMSDispatcher logs instead of sending. Used in development and as
// the fallback when no gateway is configured.
type LogSMSDispatcher struct {
	logger *logging.SafeLogger

	mu   sync.Mutex
	sent []SentMessage
}

// SentMessage records one dispatched message
type SentMessage struct {
	MobileNumber string
	Message      string
}

// NewLogSMSDispatcher creates a dispatcher that only logs
func NewLogSMSDispatcher(logger *logging.SafeLogger) *LogSMSDispatcher {
	return &LogSMSDispatcher{logger: logger}
}

func (d *LogSMSDispatcher) Send(ctx context.Context, mobileNumber, message string) error {
	d.mu.Lock()
	d.sent = append(d.sent, SentMessage{MobileNumber: mobileNumber, Message: message})
	d.mu.Unlock()

	d.logger.Info("sms dispatch (log only)",
		zap.String("mobile_number", observability.MaskPhone(mobileNumber)))
	return nil
}

// Sent returns a copy of the messages recorded so far
func (d *LogSMSDispatcher) Sent() []SentMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SentMessage, len(d.sent))
	copy(out, d.sent)
	return out
}
