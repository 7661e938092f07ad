package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/willjrcristo/moneyquest-api/internal/clock"
)

// Dependencies reúne o que os handlers precisam.
type Dependencies struct {
	JWTSecret     string
	Sessions      SessionLoader
	Subscriptions SubscriptionService
	Profiles      ProfileUpdater
	Campaigns     CampaignAdmin
	Ads           AdDecider
	Clock         clock.Clock
}

// Register monta todas as rotas da API em r.
func Register(r chi.Router, d Dependencies) {
	r.Post("/webhooks/stripe", NewStripeWebhookHandler(d.Subscriptions).HandleStripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(OptionalAuth(d.JWTSecret))
		r.Use(SessionMiddleware(d.Sessions))

		NewPublicHandler(d.Sessions, d.Subscriptions, d.Ads, d.Clock).RegisterRoutes(r)
		r.Mount("/me", NewMeHandler(d.Sessions, d.Subscriptions, d.Profiles).Routes())
		r.Mount("/admin", NewAdminHandler(d.Campaigns, d.Subscriptions).Routes())
	})
}
