package backend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/metrics"
	"github.com/willjrcristo/moneyquest-api/internal/repository"
)

// ActiveCampaignsLimit é o limite aplicado pela consulta de campanhas ativas.
const ActiveCampaignsLimit = 10

// Client expõe os contratos que as regras de decisão consomem.
type Client struct {
	profiles  repository.ProfileRepository
	campaigns repository.CampaignRepository
	clock     clock.Clock
}

func NewClient(profiles repository.ProfileRepository, campaigns repository.CampaignRepository, c clock.Clock) *Client {
	return &Client{profiles: profiles, campaigns: campaigns, clock: c}
}

// ActiveCampaigns é o get_active_campaigns(audience).
func (c *Client) ActiveCampaigns(ctx context.Context, audience domain.Audience) Result[[]domain.Campaign] {
	if !audience.Valid() {
		return Fail[[]domain.Campaign](KindInvalid, errors.New("público inválido: "+string(audience)))
	}
	list, err := c.campaigns.GetActive(ctx, audience, c.clock.Now(), ActiveCampaignsLimit)
	if err != nil {
		kind := classify(err)
		metrics.BackendFailures.WithLabelValues("active_campaigns", kind.String()).Inc()
		return Fail[[]domain.Campaign](kind, err)
	}
	return Ok(list)
}

func (c *Client) Profile(ctx context.Context, id uuid.UUID) Result[*domain.Profile] {
	p, err := c.profiles.GetByID(ctx, id)
	if err != nil {
		kind := classify(err)
		metrics.BackendFailures.WithLabelValues("profile", kind.String()).Inc()
		return Fail[*domain.Profile](kind, err)
	}
	if p == nil {
		return Fail[*domain.Profile](KindNotFound, repository.ErrNotFound)
	}
	return Ok(p)
}

func (c *Client) UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) Result[struct{}] {
	if err := c.profiles.Update(ctx, id, patch); err != nil {
		kind := classify(err)
		metrics.BackendFailures.WithLabelValues("update_profile", kind.String()).Inc()
		return Fail[struct{}](kind, err)
	}
	return Ok(struct{}{})
}

// UpdateProfileAsync grava o patch sem bloquear o chamador. Erros só vão para o log.
// done, quando não nil, é fechado ao término (usado nos testes).
func (c *Client) UpdateProfileAsync(id uuid.UUID, patch domain.ProfilePatch, done chan<- struct{}) {
	go func() {
		if done != nil {
			defer close(done)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if res := c.UpdateProfile(ctx, id, patch); !res.OK() {
			slog.Error("Falha ao atualizar perfil em segundo plano", "profile_id", id, "kind", res.Kind.String(), "error", res.Err)
		}
	}()
}
