// AngelaMos | 2026
// client.go

package payment

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

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/flashforge/internal/config"
	"github.com/carterperez-dev/flashforge/internal/core"
)

const (
	defaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20

	StatusSuccess = "success"
)

// Client talks to the Paystack transaction API. Each call is a single
// attempt bounded by the configured timeout.
type Client struct {
	cfg        config.PaystackConfig
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(cfg config.PaystackConfig, opts ...Option) *Client {
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Amount() int64 {
	return c.cfg.Amount
}

func (c *Client) Currency() string {
	return c.cfg.Currency
}

type Checkout struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type Transaction struct {
	Reference string
	Status    string
	Amount    int64
	Currency  string
	Email     string
	PaidAt    *time.Time
}

func (t *Transaction) Successful() bool {
	return t != nil && t.Status == StatusSuccess
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type initializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	CallbackURL string `json:"callback_url,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Status    string     `json:"status"`
	Reference string     `json:"reference"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	PaidAt    *time.Time `json:"paid_at"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
}

// Initialize opens a hosted checkout for email. reference may be empty, in
// which case the gateway picks one.
func (c *Client) Initialize(
	ctx context.Context,
	email, reference string,
) (checkout *Checkout, err error) {
	const op = "initialize"

	ctx, span := core.StartSpan(ctx, "paystack.initialize",
		attribute.String("payment.reference", reference),
	)
	defer func() { core.EndSpan(span, err) }()

	body, err := json.Marshal(initializeRequest{
		Email:       email,
		Amount:      c.cfg.Amount,
		Currency:    c.cfg.Currency,
		CallbackURL: c.cfg.CallbackURL,
		Reference:   reference,
	})
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: encode body: %w", err)
	}

	env, err := c.do(ctx, op, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var data initializeData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, &Error{Op: op, Kind: KindMalformed, Err: err}
		}
	}

	if data.AuthorizationURL == "" {
		return nil, &Error{
			Op:      op,
			Kind:    KindMalformed,
			Message: "missing authorization_url",
		}
	}

	if data.Reference == "" {
		data.Reference = reference
	}

	return &Checkout{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// Verify fetches the gateway's view of reference. A nil error only means
// the gateway answered; check Transaction.Successful for the outcome.
func (c *Client) Verify(
	ctx context.Context,
	reference string,
) (tx *Transaction, err error) {
	const op = "verify"

	ctx, span := core.StartSpan(ctx, "paystack.verify",
		attribute.String("payment.reference", reference),
	)
	defer func() { core.EndSpan(span, err) }()

	if strings.TrimSpace(reference) == "" {
		return nil, &Error{Op: op, Kind: KindRejected, Message: "reference required"}
	}

	env, err := c.do(ctx, op, http.MethodGet,
		"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &Error{Op: op, Kind: KindMalformed, Err: err}
	}

	if data.Reference == "" {
		data.Reference = reference
	}

	return &Transaction{
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    data.Amount,
		Currency:  data.Currency,
		Email:     data.Customer.Email,
		PaidAt:    data.PaidAt,
	}, nil
}

func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	body []byte,
) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("paystack %s: new request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{
			Op:         op,
			Kind:       KindTransport,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &Error{
			Op:         op,
			Kind:       KindMalformed,
			StatusCode: resp.StatusCode,
			Err:        errors.New(core.Truncate(strings.TrimSpace(string(raw)), 256)),
		}
	}

	if !env.Status {
		message := env.Message
		if message == "" {
			message = "Payment failed."
		}
		return nil, &Error{
			Op:         op,
			Kind:       classify(env.Code, message),
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    message,
		}
	}

	return &env, nil
}
