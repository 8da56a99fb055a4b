package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ovenlight/sms-dispatch/internal/apperrors"
)

var _ Client = (*RESTClient)(nil)

// RESTClient talks to the carrier's account-scoped REST API. Requests
// are authenticated with HTTP basic auth (account SID / auth token).
type RESTClient struct {
	baseURL    string
	accountSID string
	authToken  string
	httpClient *http.Client
}

// NewRESTClient creates a carrier client for the given account.
func NewRESTClient(baseURL, accountSID, authToken string) *RESTClient {
	return &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// withTimeout wraps the context with a timeout if it doesn't already have one.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// sendResponse is the carrier's message resource shape.
type sendResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	From         string `json:"from"`
	To           string `json:"to"`
	Body         string `json:"body"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	DateSent     string `json:"date_sent"`
	DateUpdated  string `json:"date_updated"`
	Price        string `json:"price"`
}

// errorResponse is the carrier's error payload on non-2xx answers.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type batchResponse struct {
	Accepted int    `json:"accepted"`
	Status   string `json:"status"`
}

// Send posts a form-encoded message create request:
// POST {base}/Accounts/{sid}/Messages.json with To, From, Body.
func (c *RESTClient) Send(ctx context.Context, to, from, body string) (*SendResult, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	raw, err := c.do(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}

	var parsed sendResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse gateway send response: %w", err)
	}
	if parsed.SID == "" {
		return nil, fmt.Errorf("gateway send response missing sid")
	}

	return &SendResult{
		SID:    parsed.SID,
		Status: parsed.Status,
		From:   parsed.From,
		To:     parsed.To,
		Body:   parsed.Body,
		Raw:    raw,
	}, nil
}

// FetchStatus queries a message resource by SID:
// GET {base}/Accounts/{sid}/Messages/{messageSid}.json.
func (c *RESTClient) FetchStatus(ctx context.Context, sid string) (*StatusResult, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages/%s.json", c.baseURL, c.accountSID, sid)

	raw, err := c.do(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return nil, err
	}

	var parsed sendResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse gateway status response: %w", err)
	}

	return &StatusResult{
		SID:          parsed.SID,
		Status:       parsed.Status,
		ErrorCode:    parsed.ErrorCode,
		ErrorMessage: parsed.ErrorMessage,
		DateSent:     parseCarrierTime(parsed.DateSent),
		DateUpdated:  parseCarrierTime(parsed.DateUpdated),
		Price:        parsed.Price,
		Raw:          raw,
	}, nil
}

// SendBatch posts one JSON bulk request for the whole recipient list:
// POST {base}/Accounts/{sid}/Messages/bulk.json.
func (c *RESTClient) SendBatch(ctx context.Context, recipients []string, body, senderID string) (*BatchResult, error) {
	ctx, cancel := withTimeout(ctx, 15*time.Second)
	defer cancel()

	payload, err := json.Marshal(map[string]any{
		"to":        recipients,
		"body":      body,
		"sender_id": senderID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bulk payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages/bulk.json", c.baseURL, c.accountSID)

	raw, err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}

	var parsed batchResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse gateway bulk response: %w", err)
	}

	return &BatchResult{
		Accepted: parsed.Accepted,
		Raw:      raw,
	}, nil
}

// Health pings the account resource with a short timeout.
func (c *RESTClient) Health(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, 2*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/Accounts/%s.json", c.baseURL, c.accountSID)

	if _, err := c.do(ctx, http.MethodGet, endpoint, nil, ""); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

// do executes one authenticated request and returns the raw body.
// Non-2xx carrier answers come back as *apperrors.Gateway; only
// network-level failures return plain errors.
func (c *RESTClient) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.accountSID, c.authToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("gateway request timeout or canceled: %w", err)
		}
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	rawBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gateway response: %w", err)
	}
	raw := string(rawBytes)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gerr := &apperrors.Gateway{HTTPStatus: resp.StatusCode, Message: raw}
		var parsed errorResponse
		if jsonErr := json.Unmarshal(rawBytes, &parsed); jsonErr == nil && parsed.Message != "" {
			gerr.Code = parsed.Code
			gerr.Message = parsed.Message
		}
		return raw, gerr
	}

	return raw, nil
}

// parseCarrierTime handles the carrier's RFC 1123 timestamps; empty or
// malformed values come back as nil rather than an error.
func parseCarrierTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC1123Z, v)
	if err != nil {
		return nil
	}
	return &t
}
