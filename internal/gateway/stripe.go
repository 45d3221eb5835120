package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
)

const orderIDMetadataKey = "order_id"

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	// Backends overrides the Stripe API endpoints, nil means the live API.
	Backends *stripe.Backends
}

// Stripe takes payments through Stripe Checkout. The order id travels as
// payment intent metadata so the trade status can be looked up by order.
type Stripe struct {
	api        *client.API
	successURL string
	cancelURL  string
}

func NewStripe(cfg StripeConfig) (*Stripe, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("secretKey is empty")
	}
	if cfg.SuccessURL == "" || cfg.CancelURL == "" {
		return nil, fmt.Errorf("successURL and cancelURL are required")
	}

	return &Stripe{
		api:        client.New(cfg.SecretKey, cfg.Backends),
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}, nil
}

func (s *Stripe) CreatePaymentURL(ctx context.Context, order domain.Order) (string, error) {
	if len(order.Lines) == 0 {
		return "", fmt.Errorf("order[%s] has no lines", order.ID)
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Lines))
	for _, line := range order.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(line.UnitPrice.Currency.String())),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.ProductName),
				},
				UnitAmount: stripe.Int64(line.UnitPrice.MinorUnits()),
			},
			Quantity: stripe.Int64(int64(line.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(order.ID.String()),
		LineItems:         lineItems,
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{orderIDMetadataKey: order.ID.String()},
		},
	}
	params.Context = ctx
	params.AddMetadata(orderIDMetadataKey, order.ID.String())

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session: %w", err)
	}

	if session.URL == "" {
		return "", fmt.Errorf("stripe checkout session[%s] has no url", session.ID)
	}

	return session.URL, nil
}

// QueryTradeStatus maps the payment intents of the order to one status. Any
// succeeded intent wins; if every intent was canceled the trade is closed.
func (s *Stripe) QueryTradeStatus(ctx context.Context, orderID uuid.UUID) (domain.TradeStatus, error) {
	params := &stripe.PaymentIntentSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf("metadata['%s']:'%s'", orderIDMetadataKey, orderID),
			Context: ctx,
		},
	}

	var (
		found    int
		canceled int
	)

	iter := s.api.PaymentIntents.Search(params)
	for iter.Next() {
		pi := iter.PaymentIntent()
		found++

		switch pi.Status {
		case stripe.PaymentIntentStatusSucceeded:
			return domain.TradeStatusSuccess, nil
		case stripe.PaymentIntentStatusCanceled:
			canceled++
		}
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("stripe payment intent search: %w", err)
	}

	if found > 0 && found == canceled {
		return domain.TradeStatusClosed, nil
	}

	return domain.TradeStatusPending, nil
}
