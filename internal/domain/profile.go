package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan é o plano de assinatura gravado no perfil.
type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanPremium Plan = "PREMIUM"
)

// Mood é o "humor financeiro" usado apenas para tema visual.
type Mood string

const (
	MoodVeryPositive Mood = "VERY_POSITIVE"
	MoodPositive     Mood = "POSITIVE"
	MoodNeutral      Mood = "NEUTRAL"
	MoodNegative     Mood = "NEGATIVE"
	MoodCritical     Mood = "CRITICAL"
)

// Valid indica se o valor é um dos cinco humores conhecidos.
func (m Mood) Valid() bool {
	switch m {
	case MoodVeryPositive, MoodPositive, MoodNeutral, MoodNegative, MoodCritical:
		return true
	}
	return false
}

type Profile struct {
	ID uuid.UUID `json:"id"`

	// --- ASSINATURA ---
	SubscriptionPlan      Plan       `json:"subscription_plan"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"` // nil = sem data de expiração

	// Estado do período de teste (trial).
	TrialActive bool       `json:"trial_active"`
	TrialEndsAt *time.Time `json:"trial_ends_at"`

	// --- PREFERÊNCIAS ---
	Timezone        string `json:"timezone"`
	ThemePreference string `json:"theme_preference"`
	Language        string `json:"language"`

	// --- AGREGADOS FINANCEIROS ---
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	FinancialMood *Mood           `json:"financial_mood"` // nil = recalculado a partir dos agregados

	// IDs na Stripe, nunca expostos na API.
	StripeCustomerID     string `json:"-"`
	StripeSubscriptionID string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Trial devolve o estado do trial gravado no perfil.
func (p *Profile) Trial() TrialStatus {
	if p == nil {
		return TrialStatus{}
	}
	return TrialStatus{Active: p.TrialActive, EndsAt: p.TrialEndsAt}
}

// TrialStatus é o estado de trial verificado pelo backend.
type TrialStatus struct {
	Active bool       `json:"active"`
	EndsAt *time.Time `json:"ends_at,omitempty"`
}

// ActiveAt considera o trial vencido quando EndsAt já passou, mesmo com Active=true.
func (t TrialStatus) ActiveAt(now time.Time) bool {
	if !t.Active {
		return false
	}
	return t.EndsAt == nil || t.EndsAt.After(now)
}

// ProfilePatch é uma atualização parcial: apenas os campos não-nil são gravados.
type ProfilePatch struct {
	SubscriptionPlan      *Plan            `json:"subscription_plan,omitempty"`
	SubscriptionExpiresAt *time.Time       `json:"subscription_expires_at,omitempty"`
	TrialActive           *bool            `json:"trial_active,omitempty"`
	TrialEndsAt           *time.Time       `json:"trial_ends_at,omitempty"`
	Timezone              *string          `json:"timezone,omitempty"`
	ThemePreference       *string          `json:"theme_preference,omitempty"`
	Language              *string          `json:"language,omitempty"`
	TotalIncome           *decimal.Decimal `json:"total_income,omitempty"`
	TotalExpenses         *decimal.Decimal `json:"total_expenses,omitempty"`
	FinancialMood         *Mood            `json:"financial_mood,omitempty"`
	StripeCustomerID      *string          `json:"-"`
	StripeSubscriptionID  *string          `json:"-"`
}

// Empty indica que o patch não altera nenhum campo.
func (p ProfilePatch) Empty() bool {
	return p.SubscriptionPlan == nil && p.SubscriptionExpiresAt == nil &&
		p.TrialActive == nil && p.TrialEndsAt == nil &&
		p.Timezone == nil && p.ThemePreference == nil && p.Language == nil &&
		p.TotalIncome == nil && p.TotalExpenses == nil && p.FinancialMood == nil &&
		p.StripeCustomerID == nil && p.StripeSubscriptionID == nil
}

// SubscriptionStats resume a base de perfis para o painel administrativo.
type SubscriptionStats struct {
	TotalProfiles  int64 `json:"total_profiles"`
	ActivePremium  int64 `json:"active_premium"`
	ActiveTrials   int64 `json:"active_trials"`
	ExpiredPremium int64 `json:"expired_premium"` // PREMIUM vencidos ainda não rebaixados
}
