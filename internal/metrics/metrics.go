// Package metrics concentra os contadores de domínio expostos em /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Avaliações de entitlement por tier resultante (loading, free, premium, trial).
	EntitlementEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moneyquest_entitlement_evaluations_total",
			Help: "Número de avaliações de entitlement por tier.",
		},
		[]string{"tier"},
	)

	// Buscas de campanhas no backend por público e resultado (ok, error, superseded).
	CampaignFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moneyquest_campaign_fetches_total",
			Help: "Buscas de campanhas ativas no backend.",
		},
		[]string{"audience", "result"},
	)

	CampaignCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moneyquest_campaign_cache_hits_total",
			Help: "Seleções de campanha atendidas pelo cache.",
		},
		[]string{"audience"},
	)

	AdDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moneyquest_ad_decisions_total",
			Help: "Decisões de exibição de anúncio por resultado.",
		},
		[]string{"allowed"},
	)

	// Falhas do backend recuperadas na borda (categoria "network").
	BackendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moneyquest_backend_failures_total",
			Help: "Falhas do backend absorvidas com valor padrão.",
		},
		[]string{"operation", "kind"},
	)
)
