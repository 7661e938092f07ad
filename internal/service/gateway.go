package service

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/subscription"

	"github.com/willjrcristo/moneyquest-api/internal/domain"
)

// CheckoutGateway isola as chamadas de rede à Stripe para que o serviço possa
// ser testado sem ela.
type CheckoutGateway interface {
	CreateCustomer(ctx context.Context, profile domain.Profile) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)
	GetSubscription(ctx context.Context, id string) (*BillingSubscription, error)
}

type CheckoutParams struct {
	CustomerID string
	PriceID    string
	ProfileID  string
	SuccessURL string
	CancelURL  string
}

// BillingSubscription é o recorte da assinatura da Stripe que nos interessa.
type BillingSubscription struct {
	ID               string
	CustomerID       string
	Status           string
	PriceID          string
	CurrentPeriodEnd time.Time
}

type stripeGateway struct{}

// NewStripeGateway configura a chave global do SDK e devolve o gateway real.
func NewStripeGateway(secretKey string) CheckoutGateway {
	stripe.Key = secretKey
	return &stripeGateway{}
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, profile domain.Profile) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	params.AddMetadata("profile_id", profile.ID.String())

	c, err := customer.New(params)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(p.CustomerID),
		ClientReferenceID: stripe.String(p.ProfileID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (g *stripeGateway) GetSubscription(ctx context.Context, id string) (*BillingSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(id, params)
	if err != nil {
		return nil, err
	}
	return billingFromStripe(sub), nil
}

func billingFromStripe(sub *stripe.Subscription) *BillingSubscription {
	b := &BillingSubscription{
		ID:               sub.ID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}
	if sub.Customer != nil {
		b.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item != nil && item.Price != nil {
				b.PriceID = item.Price.ID
				break
			}
		}
	}
	return b
}
