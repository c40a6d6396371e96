package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Message is the provider payload for one delivery: credentials, template
// identifiers, recipients and template substitution parameters.
type Message struct {
	AccessKeyID     string            `json:"access_key_id"`
	AccessKeySecret string            `json:"access_key_secret"`
	TemplateCode    string            `json:"template_code"`
	SignName        string            `json:"sign_name"`
	Recipients      []string          `json:"recipients"`
	Params          map[string]string `json:"params"`
}

// Result is the provider's delivery receipt.
type Result struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	BizID     string `json:"biz_id"`
}

// Sender delivers a message through the SMS provider. Implementations
// fail with an error on provider rejection or network failure.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
}

// GatewayClient posts messages to the provider's HTTP gateway.
type GatewayClient struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

func NewGatewayClient(endpoint string, log *zap.Logger) *GatewayClient {
	return &GatewayClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log.With(zap.String("client", "sms")),
	}
}

func (c *GatewayClient) Send(ctx context.Context, msg *Message) (*Result, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("SMS gateway unreachable", zap.Error(err))
		return nil, fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sms response: %w", err)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		c.log.Error("SMS gateway returned malformed response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("parse sms response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || result.Code != "OK" {
		c.log.Warn("SMS delivery rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("code", result.Code),
			zap.String("message", result.Message),
		)
		return nil, fmt.Errorf("sms delivery rejected: %s (%s)", result.Message, result.Code)
	}

	return &result, nil
}
