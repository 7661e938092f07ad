package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/repository"
)

var ErrCampanhaInvalida = errors.New("dados da campanha inválidos")

// CampaignAdminService é usado pelo painel administrativo para cadastrar campanhas.
type CampaignAdminService struct {
	repo repository.CampaignRepository
}

func NewCampaignAdminService(repo repository.CampaignRepository) *CampaignAdminService {
	return &CampaignAdminService{repo: repo}
}

func (s *CampaignAdminService) Create(ctx context.Context, c domain.Campaign) (uuid.UUID, error) {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" || !c.Type.Valid() {
		return uuid.Nil, ErrCampanhaInvalida
	}
	if c.TargetAudience == "" {
		c.TargetAudience = domain.AudienceAll
	}
	if !c.TargetAudience.Valid() {
		return uuid.Nil, ErrCampanhaInvalida
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return uuid.Nil, ErrCampanhaInvalida
	}
	return s.repo.Create(ctx, c)
}

func (s *CampaignAdminService) List(ctx context.Context) ([]domain.Campaign, error) {
	return s.repo.GetAll(ctx)
}
