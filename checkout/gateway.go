package checkout

import (
	"context"
	"time"
)

type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    map[string]any
}

// Authorization is what the shopper needs to complete payment on the
// hosted page or inline widget.
type Authorization struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type Verification struct {
	Reference       string
	Status          string
	AmountMinor     int64
	Currency        string
	GatewayResponse string
	Channel         string
	PaidAt          *time.Time
}

// Gateway is a hosted payment provider.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*Authorization, error)
	Verify(ctx context.Context, reference string) (*Verification, error)
}
