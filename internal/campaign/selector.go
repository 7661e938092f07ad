// Package campaign escolhe a campanha promocional exibida para um público.
package campaign

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/willjrcristo/moneyquest-api/internal/backend"
	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/entitlement"
	"github.com/willjrcristo/moneyquest-api/internal/metrics"
)

// StalenessWindow é a idade máxima do cache antes de buscar de novo.
const StalenessWindow = 5 * time.Minute

const fetchTimeout = 10 * time.Second

// Source é o get_active_campaigns do backend.
type Source interface {
	ActiveCampaigns(ctx context.Context, audience domain.Audience) backend.Result[[]domain.Campaign]
}

// ComputeAudience: trial tem precedência sobre premium, que tem precedência sobre free.
func ComputeAudience(trialActive, isPremium bool) domain.Audience {
	switch {
	case trialActive:
		return domain.AudienceTrial
	case isPremium:
		return domain.AudiencePremium
	default:
		return domain.AudienceFree
	}
}

// AudienceFor deriva o público de um snapshot de entitlement.
func AudienceFor(s entitlement.Snapshot) domain.Audience {
	return ComputeAudience(s.IsTrial, s.IsPremium)
}

type cacheEntry struct {
	campaigns []domain.Campaign
	fetchedAt time.Time
}

// Selector guarda o resultado de cada público por StalenessWindow. O cache não é
// invalidado quando a assinatura muda: quem acabou de assinar pode ver uma
// campanha "free" por alguns minutos.
type Selector struct {
	source Source
	clock  clock.Clock
	ttl    time.Duration
	intn   func(n int) int

	mu    sync.Mutex
	cache map[domain.Audience]cacheEntry
	group singleflight.Group
}

type Option func(*Selector)

// WithRand troca o sorteio uniforme (útil nos testes).
func WithRand(intn func(n int) int) Option {
	return func(s *Selector) { s.intn = intn }
}

func WithStalenessWindow(d time.Duration) Option {
	return func(s *Selector) { s.ttl = d }
}

func NewSelector(source Source, c clock.Clock, opts ...Option) *Selector {
	s := &Selector{
		source: source,
		clock:  c,
		ttl:    StalenessWindow,
		intn:   rand.IntN,
		cache:  make(map[domain.Audience]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select sorteia uniformemente entre as campanhas elegíveis. Devolve nil quando não há nenhuma.
// Duas chamadas podem devolver campanhas diferentes; use View para manter a mesma por página.
func (s *Selector) Select(ctx context.Context, audience domain.Audience) *domain.Campaign {
	return s.Pick(s.Candidates(ctx, audience))
}

// Pick sorteia uniformemente uma das candidatas, ou nil se não houver nenhuma.
func (s *Selector) Pick(eligible []domain.Campaign) *domain.Campaign {
	if len(eligible) == 0 {
		return nil
	}
	c := eligible[s.intn(len(eligible))]
	return &c
}

// Candidates devolve as campanhas elegíveis agora. O resultado do backend pode
// estar em cache, então cada linha é revalidada (is_active, datas, público).
// Falha no backend resulta em lista vazia.
func (s *Selector) Candidates(ctx context.Context, audience domain.Audience) []domain.Campaign {
	raw, err := s.fetch(ctx, audience)
	if err != nil {
		return nil
	}

	now := s.clock.Now()
	eligible := make([]domain.Campaign, 0, len(raw))
	for _, c := range raw {
		if c.EligibleAt(audience, now) {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

func (s *Selector) fetch(ctx context.Context, audience domain.Audience) ([]domain.Campaign, error) {
	if cached, ok := s.cached(audience); ok {
		metrics.CampaignCacheHits.WithLabelValues(string(audience)).Inc()
		return cached, nil
	}

	// Chamadas simultâneas para o mesmo público compartilham uma única busca.
	// A busca não herda o cancelamento do chamador; quem desiste só para de esperar.
	ch := s.group.DoChan(string(audience), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		res := s.source.ActiveCampaigns(fetchCtx, audience)
		list, err := res.Unwrap()
		if err != nil {
			metrics.CampaignFetches.WithLabelValues(string(audience), "error").Inc()
			slog.Error("Falha ao buscar campanhas ativas", "audience", audience, "kind", res.Kind.String(), "error", err)
			return nil, err
		}
		metrics.CampaignFetches.WithLabelValues(string(audience), "ok").Inc()

		s.mu.Lock()
		s.cache[audience] = cacheEntry{campaigns: list, fetchedAt: s.clock.Now()}
		s.mu.Unlock()
		return list, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		list, _ := r.Val.([]domain.Campaign)
		return list, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Selector) cached(audience domain.Audience) ([]domain.Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache[audience]
	if !ok || s.clock.Now().Sub(e.fetchedAt) >= s.ttl {
		return nil, false
	}
	return e.campaigns, true
}
