package billing

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is an in-memory Provider for tests and local development.
// It returns deterministic links and records every request it receives.
type MockProvider struct {
	mu      sync.Mutex
	counter int
	links   []CreatePaymentLinkParams

	// CreatePaymentLinkFunc overrides the default behavior when set.
	CreatePaymentLinkFunc func(ctx context.Context, params CreatePaymentLinkParams) (*PaymentLink, error)
}

// NewMockProvider creates a mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) CreatePaymentLink(ctx context.Context, params CreatePaymentLinkParams) (*PaymentLink, error) {
	if m.CreatePaymentLinkFunc != nil {
		return m.CreatePaymentLinkFunc(ctx, params)
	}

	if params.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrPaymentLinkFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	m.links = append(m.links, params)

	ref := fmt.Sprintf("mock_link_%d", m.counter)
	return &PaymentLink{
		Provider:  "mock",
		Reference: ref,
		URL:       fmt.Sprintf("https://pay.example.test/%s", ref),
	}, nil
}

// Requests returns a copy of every payment link request seen so far.
func (m *MockProvider) Requests() []CreatePaymentLinkParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CreatePaymentLinkParams, len(m.links))
	copy(out, m.links)
	return out
}
