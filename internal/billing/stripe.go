package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// StripeProvider implements Provider using Stripe Checkout.
//
// Each invoice becomes a single-line-item Checkout Session in payment mode.
// The session URL is the hosted payment page; the session ID is kept as the
// provider reference so webhook events can be matched back to the invoice.
type StripeProvider struct {
	apiKey string
}

// NewStripeProvider creates a Stripe billing provider.
func NewStripeProvider(apiKey string) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	stripe.Key = apiKey
	return &StripeProvider{apiKey: apiKey}, nil
}

// CreatePaymentLink creates a Checkout Session for the invoice amount.
func (s *StripeProvider) CreatePaymentLink(ctx context.Context, params CreatePaymentLinkParams) (*PaymentLink, error) {
	if params.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrPaymentLinkFailed)
	}

	name := params.Description
	if name == "" {
		name = fmt.Sprintf("Invoice %s", params.InvoiceNumber)
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(params.Currency),
					UnitAmount: stripe.Int64(params.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"invoice_id":     params.InvoiceID,
			"invoice_number": params.InvoiceNumber,
		},
	}
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	if params.SuccessURL != "" {
		sessionParams.SuccessURL = stripe.String(params.SuccessURL)
	}
	sessionParams.Context = ctx

	sess, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentLinkFailed, err)
	}

	return &PaymentLink{
		Provider:  "stripe",
		Reference: sess.ID,
		URL:       sess.URL,
	}, nil
}
