package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/moneyquest-api/internal/backend"
	"github.com/willjrcristo/moneyquest-api/internal/campaign"
	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/entitlement"
	"github.com/willjrcristo/moneyquest-api/internal/region"
	"github.com/willjrcristo/moneyquest-api/internal/repository"
)

type sessionFixture struct {
	db        *sql.DB
	profiles  repository.ProfileRepository
	campaigns repository.CampaignRepository
	svc       *SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	db, err := repository.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &sessionFixture{
		db:        db,
		profiles:  repository.NewSQLiteProfileRepository(db),
		campaigns: repository.NewSQLiteCampaignRepository(db),
	}
	clk := clock.Fixed(agora)
	client := backend.NewClient(f.profiles, f.campaigns, clk)
	f.svc = NewSessionService(client, campaign.NewSelector(client, clk), clk)
	return f
}

func TestSessionService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("visitante anônimo é free", func(t *testing.T) {
		f := newSessionFixture(t)
		s := f.svc.Load(ctx, nil, "Europe/Berlin")

		assert.False(t, s.Authenticated)
		assert.Equal(t, entitlement.TierFree, s.Entitlements.Tier)
		assert.Equal(t, domain.AudienceFree, s.Audience)
		assert.Equal(t, region.EUR, s.Currency)
	})

	t.Run("premium vigente com humor e moeda da região", func(t *testing.T) {
		f := newSessionFixture(t)
		id := uuid.New()
		exp := agora.Add(30 * 24 * time.Hour)
		require.NoError(t, f.profiles.Create(ctx, domain.Profile{
			ID:                    id,
			SubscriptionPlan:      domain.PlanPremium,
			SubscriptionExpiresAt: &exp,
			Timezone:              "America/Sao_Paulo",
			Language:              "en",
			TotalIncome:           decimal.NewFromInt(1000),
			TotalExpenses:         decimal.NewFromInt(500),
		}))

		s := f.svc.Load(ctx, &id, "Asia/Tokyo")
		require.NotNil(t, s.Profile)
		assert.True(t, s.Entitlements.IsPremium)
		assert.Equal(t, domain.AudiencePremium, s.Audience)
		assert.Equal(t, region.BRL, s.Currency)
		assert.Equal(t, "America/Sao_Paulo", s.Timezone)
		assert.Equal(t, domain.MoodVeryPositive, s.Mood)
		assert.Equal(t, "sunny", s.MoodTheme)
		assert.Equal(t, "en", s.Language)
	})

	t.Run("perfil ainda não criado é free", func(t *testing.T) {
		f := newSessionFixture(t)
		id := uuid.New()
		s := f.svc.Load(ctx, &id, "")
		assert.Equal(t, entitlement.TierFree, s.Entitlements.Tier)
		assert.Nil(t, s.Profile)
	})

	t.Run("falha do backend deixa tudo negado em loading", func(t *testing.T) {
		f := newSessionFixture(t)
		f.db.Close()
		id := uuid.New()

		s := f.svc.Load(ctx, &id, "")
		assert.True(t, s.Entitlements.Loading)
		for _, c := range entitlement.PremiumCapabilities {
			assert.False(t, s.Entitlements.Has(c))
		}
		assert.Nil(t, s.Campaign(ctx))
		c, ok := f.svc.CurrentCampaign(ctx, s)
		assert.True(t, ok)
		assert.Nil(t, c)
	})
}

func TestSessionService_CurrentCampaign(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)

	_, err := f.campaigns.Create(ctx, domain.Campaign{Title: "Assine", Type: domain.CampaignPromo, IsActive: true, TargetAudience: domain.AudienceFree})
	require.NoError(t, err)
	_, err = f.campaigns.Create(ctx, domain.Campaign{Title: "Novidade", Type: domain.CampaignFeature, IsActive: true, TargetAudience: domain.AudiencePremium})
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, f.profiles.Create(ctx, domain.Profile{ID: id}))

	s := f.svc.Load(ctx, &id, "")
	c, ok := f.svc.CurrentCampaign(ctx, s)
	require.True(t, ok)
	require.NotNil(t, c)
	assert.Equal(t, "Assine", c.Title)

	// A campanha da sessão é estável durante a vida dela.
	first := s.Campaign(ctx)
	require.NotNil(t, first)
	assert.Same(t, first, s.Campaign(ctx))

	anon := f.svc.Load(ctx, nil, "")
	c, ok = f.svc.CurrentCampaign(ctx, anon)
	require.True(t, ok)
	assert.Equal(t, "Assine", c.Title)
}

func TestSessionFromContext(t *testing.T) {
	s := &Session{UserID: uuid.New()}
	ctx := WithSession(context.Background(), s)
	assert.Same(t, s, SessionFromContext(ctx))

	assert.Panics(t, func() { SessionFromContext(context.Background()) })
}

func TestSessionService_PruneFeeds(t *testing.T) {
	ctx := context.Background()
	db, err := repository.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := agora
	clk := clock.Func(func() time.Time { return now })
	profiles := repository.NewSQLiteProfileRepository(db)
	client := backend.NewClient(profiles, repository.NewSQLiteCampaignRepository(db), clk)
	svc := NewSessionService(client, campaign.NewSelector(client, clk), clk)

	antigo, recente := uuid.New(), uuid.New()
	for _, id := range []uuid.UUID{antigo, recente} {
		require.NoError(t, profiles.Create(ctx, domain.Profile{ID: id}))
	}

	_, ok := svc.CurrentCampaign(ctx, svc.Load(ctx, &antigo, ""))
	require.True(t, ok)

	now = agora.Add(20 * time.Minute)
	_, ok = svc.CurrentCampaign(ctx, svc.Load(ctx, &recente, ""))
	require.True(t, ok)

	now = agora.Add(40 * time.Minute)
	assert.Equal(t, 1, svc.PruneFeeds(30*time.Minute))

	_, found := svc.feeds.Load(antigo)
	assert.False(t, found)
	_, found = svc.feeds.Load(recente)
	assert.True(t, found)
}
