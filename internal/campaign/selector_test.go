package campaign

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/moneyquest-api/internal/backend"
	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/entitlement"
)

// mockSource simula o get_active_campaigns do backend.
type mockSource struct {
	calls             atomic.Int32
	ActiveCampaignsFn func(ctx context.Context, audience domain.Audience) backend.Result[[]domain.Campaign]
}

func (m *mockSource) ActiveCampaigns(ctx context.Context, audience domain.Audience) backend.Result[[]domain.Campaign] {
	m.calls.Add(1)
	return m.ActiveCampaignsFn(ctx, audience)
}

func fixedList(list ...domain.Campaign) *mockSource {
	return &mockSource{ActiveCampaignsFn: func(context.Context, domain.Audience) backend.Result[[]domain.Campaign] {
		return backend.Ok(list)
	}}
}

func ptr(t time.Time) *time.Time { return &t }

var t0 = time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)

func camp(title string, audience domain.Audience) domain.Campaign {
	return domain.Campaign{ID: uuid.New(), Title: title, Type: domain.CampaignPromo, IsActive: true, TargetAudience: audience}
}

func TestComputeAudience(t *testing.T) {
	assert.Equal(t, domain.AudienceTrial, ComputeAudience(true, true))
	assert.Equal(t, domain.AudienceTrial, ComputeAudience(true, false))
	assert.Equal(t, domain.AudiencePremium, ComputeAudience(false, true))
	assert.Equal(t, domain.AudienceFree, ComputeAudience(false, false))

	trial := entitlement.EvaluateAt(&domain.Profile{SubscriptionPlan: domain.PlanFree}, domain.TrialStatus{Active: true}, t0)
	assert.Equal(t, domain.AudienceTrial, AudienceFor(trial))
}

func TestSelector_Revalida(t *testing.T) {
	now := t0
	clk := clock.Func(func() time.Time { return now })

	natal := camp("Natal", domain.AudienceFree)
	natal.StartDate = ptr(t0.Add(-time.Hour))
	natal.EndDate = ptr(t0.Add(time.Minute))

	// O backend (ou um cache velho) devolve linhas que não deveriam aparecer.
	src := fixedList(
		natal,
		camp("Premium", domain.AudiencePremium),
		func() domain.Campaign { c := camp("Desligada", domain.AudienceFree); c.IsActive = false; return c }(),
		func() domain.Campaign { c := camp("Futura", domain.AudienceFree); c.StartDate = ptr(t0.Add(time.Hour)); return c }(),
		camp("Geral", domain.AudienceAll),
	)
	s := NewSelector(src, clk)

	got := s.Candidates(context.Background(), domain.AudienceFree)
	require.Len(t, got, 2)
	assert.Equal(t, "Natal", got[0].Title)
	assert.Equal(t, "Geral", got[1].Title)

	t.Run("cache velho não ressuscita campanha encerrada", func(t *testing.T) {
		now = t0.Add(2 * time.Minute)
		for i := 0; i < 20; i++ {
			c := s.Select(context.Background(), domain.AudienceFree)
			require.NotNil(t, c)
			assert.Equal(t, "Geral", c.Title)
			assert.True(t, c.EligibleAt(domain.AudienceFree, now))
		}
		assert.Equal(t, int32(1), src.calls.Load())
	})
}

func TestSelector_SorteioUniforme(t *testing.T) {
	src := fixedList(camp("A", domain.AudienceAll), camp("B", domain.AudienceAll), camp("C", domain.AudienceAll))

	var pedidos []int
	s := NewSelector(src, clock.Fixed(t0), WithRand(func(n int) int {
		pedidos = append(pedidos, n)
		return 2
	}))

	c := s.Select(context.Background(), domain.AudiencePremium)
	require.NotNil(t, c)
	assert.Equal(t, "C", c.Title)
	assert.Equal(t, []int{3}, pedidos)
}

func TestSelector_SemCandidatas(t *testing.T) {
	s := NewSelector(fixedList(), clock.Fixed(t0))
	assert.Nil(t, s.Select(context.Background(), domain.AudienceFree))
}

func TestSelector_FalhaDoBackend(t *testing.T) {
	src := &mockSource{ActiveCampaignsFn: func(context.Context, domain.Audience) backend.Result[[]domain.Campaign] {
		return backend.Fail[[]domain.Campaign](backend.KindNetwork, errors.New("timeout"))
	}}
	s := NewSelector(src, clock.Fixed(t0))

	assert.Nil(t, s.Select(context.Background(), domain.AudienceFree))
	assert.Empty(t, s.Candidates(context.Background(), domain.AudienceFree))
	// Falhas não entram no cache.
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestSelector_JanelaDeCache(t *testing.T) {
	now := t0
	src := fixedList(camp("A", domain.AudienceAll))
	s := NewSelector(src, clock.Func(func() time.Time { return now }))

	s.Candidates(context.Background(), domain.AudienceFree)
	now = now.Add(StalenessWindow - time.Second)
	s.Candidates(context.Background(), domain.AudienceFree)
	assert.Equal(t, int32(1), src.calls.Load())

	// Cada público tem sua própria entrada.
	s.Candidates(context.Background(), domain.AudienceTrial)
	assert.Equal(t, int32(2), src.calls.Load())

	now = now.Add(time.Second)
	s.Candidates(context.Background(), domain.AudienceFree)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestSelector_BuscasSimultaneasCompartilhadas(t *testing.T) {
	release := make(chan struct{})
	src := &mockSource{ActiveCampaignsFn: func(context.Context, domain.Audience) backend.Result[[]domain.Campaign] {
		<-release
		return backend.Ok([]domain.Campaign{camp("A", domain.AudienceAll)})
	}}
	s := NewSelector(src, clock.Fixed(t0))

	var wg sync.WaitGroup
	results := make([][]domain.Campaign, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Candidates(context.Background(), domain.AudienceFree)
		}(i)
	}

	// Dá tempo para todas as goroutines entrarem na mesma busca.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, r := range results {
		assert.Len(t, r, 1)
	}
}

func TestFeed_NovoPublicoSubstituiRequisicao(t *testing.T) {
	freeStarted := make(chan struct{})
	releaseFree := make(chan struct{})
	src := &mockSource{ActiveCampaignsFn: func(_ context.Context, audience domain.Audience) backend.Result[[]domain.Campaign] {
		if audience == domain.AudienceFree {
			close(freeStarted)
			<-releaseFree
			return backend.Ok([]domain.Campaign{camp("Free", domain.AudienceFree)})
		}
		return backend.Ok([]domain.Campaign{camp("Premium", domain.AudiencePremium)})
	}}
	feed := NewFeed(NewSelector(src, clock.Fixed(t0)))

	type out struct {
		list []domain.Campaign
		ok   bool
	}
	first := make(chan out, 1)
	go func() {
		list, ok := feed.SetAudience(context.Background(), domain.AudienceFree)
		first <- out{list, ok}
	}()
	<-freeStarted

	list, ok := feed.SetAudience(context.Background(), domain.AudiencePremium)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "Premium", list[0].Title)

	r := <-first
	assert.False(t, r.ok)
	assert.Nil(t, r.list)

	audience, current := feed.Current()
	assert.Equal(t, domain.AudiencePremium, audience)
	assert.Equal(t, "Premium", current[0].Title)
	close(releaseFree)
}

func TestFeed_MesmoPublicoNaoSeCancela(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	src := &mockSource{ActiveCampaignsFn: func(context.Context, domain.Audience) backend.Result[[]domain.Campaign] {
		once.Do(func() { close(started) })
		<-release
		return backend.Ok([]domain.Campaign{camp("Free", domain.AudienceFree)})
	}}
	feed := NewFeed(NewSelector(src, clock.Fixed(t0)))

	type out struct {
		list []domain.Campaign
		ok   bool
	}
	results := make(chan out, 2)
	call := func() {
		list, ok := feed.SetAudience(context.Background(), domain.AudienceFree)
		results <- out{list, ok}
	}

	go call()
	<-started
	go call()
	require.Eventually(t, feed.Busy, time.Second, time.Millisecond)
	// Dá tempo da segunda chamada entrar antes de liberar a busca.
	time.Sleep(20 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		r := <-results
		assert.True(t, r.ok)
		assert.Len(t, r.list, 1)
	}
	assert.False(t, feed.Busy())
}

func TestView_CampanhaEstavel(t *testing.T) {
	src := fixedList(camp("A", domain.AudienceAll), camp("B", domain.AudienceAll))
	n := 0
	s := NewSelector(src, clock.Fixed(t0), WithRand(func(int) int { n++; return n % 2 }))

	v := s.NewView(domain.AudienceFree)
	first := v.Campaign(context.Background())
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		assert.Same(t, first, v.Campaign(context.Background()))
	}

	// Sem View, seleções seguidas podem mudar.
	a := s.Select(context.Background(), domain.AudienceFree)
	b := s.Select(context.Background(), domain.AudienceFree)
	assert.NotEqual(t, a.Title, b.Title)
}
