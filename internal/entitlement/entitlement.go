// Package entitlement projeta plano e trial em capacidades booleanas.
//
// O resultado serve apenas para decidir o que a interface mostra. Ele nunca é
// fonte de verdade para autorização no backend.
package entitlement

import (
	"time"

	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/metrics"
)

type Capability string

const (
	AIInsights      Capability = "ai_insights"
	CategoryGoals   Capability = "category_goals"
	UnlimitedWallet Capability = "unlimited_wallets"
	AdvancedReports Capability = "advanced_reports"
	DataExport      Capability = "data_export"
	CustomThemes    Capability = "custom_themes"
	AdFree          Capability = "ad_free"
)

// PremiumCapabilities é o conjunto liberado por PREMIUM vigente ou trial ativo.
var PremiumCapabilities = []Capability{
	AIInsights,
	CategoryGoals,
	UnlimitedWallet,
	AdvancedReports,
	DataExport,
	CustomThemes,
	AdFree,
}

// Tier distingue "ainda carregando" de "free": os dois negam tudo, mas não são iguais.
type Tier string

const (
	TierLoading Tier = "loading"
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierTrial   Tier = "trial"
)

// Snapshot é recalculado a cada leitura e nunca persistido.
type Snapshot struct {
	Tier         Tier                `json:"tier"`
	Loading      bool                `json:"loading"`
	IsPremium    bool                `json:"is_premium"`
	IsTrial      bool                `json:"is_trial"`
	Capabilities map[Capability]bool `json:"capabilities"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
}

// Has nega qualquer capacidade desconhecida.
func (s Snapshot) Has(c Capability) bool {
	return s.Capabilities[c]
}

type Evaluator struct {
	clock clock.Clock
}

func NewEvaluator(c clock.Clock) *Evaluator {
	return &Evaluator{clock: c}
}

// Evaluate avalia o perfil no instante atual do relógio.
func (e *Evaluator) Evaluate(profile *domain.Profile, trial domain.TrialStatus) Snapshot {
	return EvaluateAt(profile, trial, e.clock.Now())
}

// EvaluateAt é a regra pura:
//   - perfil nil: tudo false e Loading=true;
//   - trial ativo: conjunto PREMIUM, independente do plano gravado;
//   - PREMIUM com expires_at nil ou futuro: conjunto PREMIUM;
//   - qualquer outro caso (inclusive PREMIUM vencido): FREE.
func EvaluateAt(profile *domain.Profile, trial domain.TrialStatus, now time.Time) Snapshot {
	s := evaluate(profile, trial, now)
	metrics.EntitlementEvaluations.WithLabelValues(string(s.Tier)).Inc()
	return s
}

func evaluate(profile *domain.Profile, trial domain.TrialStatus, now time.Time) Snapshot {
	if profile == nil {
		return Snapshot{Tier: TierLoading, Loading: true, Capabilities: grant(false)}
	}
	if trial.ActiveAt(now) {
		return Snapshot{Tier: TierTrial, IsPremium: true, IsTrial: true, Capabilities: grant(true), ExpiresAt: trial.EndsAt}
	}
	if PremiumActiveAt(profile, now) {
		return Snapshot{Tier: TierPremium, IsPremium: true, Capabilities: grant(true), ExpiresAt: profile.SubscriptionExpiresAt}
	}
	return Snapshot{Tier: TierFree, Capabilities: grant(false)}
}

// PremiumActiveAt é true para plano PREMIUM sem expiração ou com expiração futura.
func PremiumActiveAt(profile *domain.Profile, now time.Time) bool {
	if profile == nil || profile.SubscriptionPlan != domain.PlanPremium {
		return false
	}
	return profile.SubscriptionExpiresAt == nil || profile.SubscriptionExpiresAt.After(now)
}

func grant(v bool) map[Capability]bool {
	caps := make(map[Capability]bool, len(PremiumCapabilities))
	for _, c := range PremiumCapabilities {
		caps[c] = v
	}
	return caps
}
