package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/repository"
)

// --- Mocks dos repositórios ---

type mockProfileRepo struct {
	repository.ProfileRepository
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	UpdateFn  func(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) error
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockProfileRepo) Update(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) error {
	return m.UpdateFn(ctx, id, patch)
}

type mockCampaignRepo struct {
	repository.CampaignRepository
	GetActiveFn func(ctx context.Context, audience domain.Audience, now time.Time, limit int) ([]domain.Campaign, error)
}

func (m *mockCampaignRepo) GetActive(ctx context.Context, audience domain.Audience, now time.Time, limit int) ([]domain.Campaign, error) {
	return m.GetActiveFn(ctx, audience, now, limit)
}

var agora = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestClient_ActiveCampaigns(t *testing.T) {
	t.Run("sucesso repassa público e instante", func(t *testing.T) {
		repo := &mockCampaignRepo{GetActiveFn: func(ctx context.Context, audience domain.Audience, now time.Time, limit int) ([]domain.Campaign, error) {
			assert.Equal(t, domain.AudienceTrial, audience)
			assert.Equal(t, agora, now)
			assert.Equal(t, ActiveCampaignsLimit, limit)
			return []domain.Campaign{{Title: "A"}}, nil
		}}
		c := NewClient(nil, repo, clock.Fixed(agora))

		res := c.ActiveCampaigns(context.Background(), domain.AudienceTrial)
		require.True(t, res.OK())
		assert.Len(t, res.Value, 1)
	})

	t.Run("falha de transporte vira lista vazia no fallback", func(t *testing.T) {
		repo := &mockCampaignRepo{GetActiveFn: func(context.Context, domain.Audience, time.Time, int) ([]domain.Campaign, error) {
			return nil, errors.New("connection reset")
		}}
		c := NewClient(nil, repo, clock.Fixed(agora))

		res := c.ActiveCampaigns(context.Background(), domain.AudienceFree)
		assert.Equal(t, KindNetwork, res.Kind)
		assert.Empty(t, res.OrElse([]domain.Campaign{}))
	})

	t.Run("público inválido", func(t *testing.T) {
		c := NewClient(nil, &mockCampaignRepo{}, clock.Fixed(agora))
		res := c.ActiveCampaigns(context.Background(), domain.Audience("vip"))
		assert.Equal(t, KindInvalid, res.Kind)
	})
}

func TestClient_Profile(t *testing.T) {
	id := uuid.New()

	t.Run("perfil ausente", func(t *testing.T) {
		c := NewClient(&mockProfileRepo{GetByIDFn: func(context.Context, uuid.UUID) (*domain.Profile, error) { return nil, nil }}, nil, clock.Fixed(agora))
		res := c.Profile(context.Background(), id)
		assert.Equal(t, KindNotFound, res.Kind)
		_, err := res.Unwrap()
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("perfil encontrado", func(t *testing.T) {
		c := NewClient(&mockProfileRepo{GetByIDFn: func(_ context.Context, got uuid.UUID) (*domain.Profile, error) {
			return &domain.Profile{ID: got}, nil
		}}, nil, clock.Fixed(agora))
		p, err := c.Profile(context.Background(), id).Unwrap()
		require.NoError(t, err)
		assert.Equal(t, id, p.ID)
	})
}

func TestClient_UpdateProfileAsync(t *testing.T) {
	chamado := make(chan domain.ProfilePatch, 1)
	repo := &mockProfileRepo{UpdateFn: func(_ context.Context, _ uuid.UUID, patch domain.ProfilePatch) error {
		chamado <- patch
		return errors.New("falha ignorada")
	}}
	c := NewClient(repo, nil, clock.Fixed(agora))

	lang := "es"
	done := make(chan struct{})
	c.UpdateProfileAsync(uuid.New(), domain.ProfilePatch{Language: &lang}, done)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("atualização assíncrona não terminou")
	}
	patch := <-chamado
	assert.Equal(t, "es", *patch.Language)
}

func TestResult(t *testing.T) {
	assert.Equal(t, 3, Ok(3).OrElse(7))
	assert.Equal(t, 7, Fail[int](KindNetwork, errors.New("x")).OrElse(7))

	_, err := Fail[int](KindNotConfigured, nil).Unwrap()
	assert.EqualError(t, err, "not_configured")
	assert.Equal(t, "kind(42)", ErrorKind(42).String())
}
