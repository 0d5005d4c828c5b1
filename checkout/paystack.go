package checkout

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const DefaultPaystackBaseURL = "https://api.paystack.co"

// APIError is a non-2xx answer or a status=false envelope from Paystack.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack: %d %s", e.StatusCode, e.Message)
}

// PaystackClient talks to the Paystack transaction API. Every call runs
// through a circuit breaker so an outage fails fast instead of piling up.
type PaystackClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewPaystackClient(baseURL, secretKey string, logger *zap.Logger) *PaystackClient {
	if baseURL == "" {
		baseURL = DefaultPaystackBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaystackClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "paystack",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
			},
			// a rejected request is the caller's problem, not an outage
			IsSuccessful: func(err error) bool {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					return apiErr.StatusCode < 500
				}
				return err == nil
			},
		}),
		logger: logger,
	}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeBody struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount,string"`
	Currency    string         `json:"currency,omitempty"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	GatewayResponse string `json:"gateway_response"`
	Channel         string `json:"channel"`
	PaidAt          string `json:"paid_at"`
}

func (p *PaystackClient) Initialize(ctx context.Context, req InitializeRequest) (*Authorization, error) {
	body := initializeBody{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}
	var data initializeData
	if err := p.call(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, errors.Wrap(err, "initialize transaction")
	}
	if data.AuthorizationURL == "" {
		return nil, errors.New("paystack returned an empty authorization url")
	}
	return &Authorization{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

func (p *PaystackClient) Verify(ctx context.Context, reference string) (*Verification, error) {
	var data verifyData
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := p.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, errors.Wrap(err, "verify transaction")
	}
	v := &Verification{
		Reference:       data.Reference,
		Status:          strings.ToLower(data.Status),
		AmountMinor:     data.Amount,
		Currency:        data.Currency,
		GatewayResponse: data.GatewayResponse,
		Channel:         data.Channel,
	}
	if t, err := time.Parse(time.RFC3339, data.PaidAt); err == nil {
		v.PaidAt = &t
	}
	return v, nil
}

func (p *PaystackClient) call(ctx context.Context, method, path string, in, out any) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.do(ctx, method, path, in, out)
	})
	return err
}

func (p *PaystackClient) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "reach paystack")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read paystack response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return errors.Wrap(err, "decode paystack response")
	}
	if resp.StatusCode >= 300 || !env.Status {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "decode paystack data")
		}
	}
	return nil
}

// VerifySignature checks a webhook body against its x-paystack-signature
// header: hex HMAC-SHA512 of the raw body keyed with the secret key.
func VerifySignature(secretKey string, body []byte, signature string) bool {
	if secretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := mac.Sum(nil)

	given, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, given)
}
