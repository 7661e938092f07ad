package domain

import (
	"time"

	"github.com/google/uuid"
)

type CampaignType string

const (
	CampaignSeasonal CampaignType = "seasonal"
	CampaignPromo    CampaignType = "promo"
	CampaignDiscount CampaignType = "discount"
	CampaignFeature  CampaignType = "feature"
)

func (t CampaignType) Valid() bool {
	switch t {
	case CampaignSeasonal, CampaignPromo, CampaignDiscount, CampaignFeature:
		return true
	}
	return false
}

// Audience é o segmento de público de uma campanha.
type Audience string

const (
	AudienceAll     Audience = "all"
	AudienceFree    Audience = "free"
	AudiencePremium Audience = "premium"
	AudienceTrial   Audience = "trial"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceFree, AudiencePremium, AudienceTrial:
		return true
	}
	return false
}

// Campaign é uma campanha promocional criada fora deste serviço.
type Campaign struct {
	ID       uuid.UUID    `json:"id"`
	Type     CampaignType `json:"type"`
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	CTAText  string       `json:"cta_text"`
	CTALink  string       `json:"cta_link"`
	Icon     string       `json:"icon"`

	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`

	// Priority é aplicada pela consulta do backend (ordem/limite), nunca re-ordenada aqui.
	Priority int `json:"priority"`

	IsActive       bool       `json:"is_active"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	TargetAudience Audience   `json:"target_audience"`

	CreatedAt time.Time `json:"created_at"`
}

// EligibleAt revalida a campanha para um público e instante.
// Cada limite de data só é aplicado quando presente.
func (c Campaign) EligibleAt(audience Audience, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.TargetAudience != AudienceAll && c.TargetAudience != audience {
		return false
	}
	if c.StartDate != nil && now.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && now.After(*c.EndDate) {
		return false
	}
	return true
}
