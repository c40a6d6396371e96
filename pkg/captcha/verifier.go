package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Verifier is the pre-send challenge gate evaluated before a code is
// issued. It returns whether the challenge response is accepted; the
// check may perform network I/O and must honor the context.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// HTTPVerifier checks a challenge token against a siteverify-style
// endpoint (form-encoded secret + response, JSON success flag back).
type HTTPVerifier struct {
	endpoint string
	secret   string
	client   *http.Client
	log      *zap.Logger
}

func NewHTTPVerifier(endpoint, secret string, log *zap.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint: endpoint,
		secret:   secret,
		client:   &http.Client{Timeout: 5 * time.Second},
		log:      log.With(zap.String("client", "captcha")),
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("create captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Error("Captcha endpoint unreachable", zap.Error(err))
		return false, fmt.Errorf("captcha verify: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("parse captcha response: %w", err)
	}

	if !result.Success {
		v.log.Warn("Captcha challenge denied", zap.Strings("error_codes", result.ErrorCodes))
	}

	return result.Success, nil
}
