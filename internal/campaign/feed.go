package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/metrics"
)

// Feed mantém as candidatas de um consumidor para o público atual.
// Um novo público substitui a requisição em andamento em vez de esperar por ela;
// requisições do mesmo público em andamento seguem juntas.
type Feed struct {
	selector *Selector

	mu       sync.Mutex
	gen      uint64
	inflight int
	pending  domain.Audience
	cancels  []context.CancelFunc
	audience domain.Audience
	current  []domain.Campaign
	lastUsed time.Time
}

func NewFeed(s *Selector) *Feed {
	return &Feed{selector: s}
}

// SetAudience busca as candidatas de audience. Se uma chamada com outro público
// chegar antes do fim, esta é cancelada e devolve ok=false; o estado do Feed não
// é alterado.
func (f *Feed) SetAudience(ctx context.Context, audience domain.Audience) (candidates []domain.Campaign, ok bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	if f.inflight > 0 && f.pending != audience {
		for _, c := range f.cancels {
			c()
		}
		f.cancels = nil
		f.inflight = 0
		f.gen++
	}
	my := f.gen
	f.inflight++
	f.pending = audience
	f.cancels = append(f.cancels, cancel)
	f.lastUsed = f.selector.clock.Now()
	f.mu.Unlock()

	candidates = f.selector.Candidates(ctx, audience)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != my {
		metrics.CampaignFetches.WithLabelValues(string(audience), "superseded").Inc()
		return nil, false
	}
	f.inflight--
	if f.inflight == 0 {
		f.cancels = nil
	}
	f.audience = audience
	f.current = candidates
	return candidates, true
}

// Busy indica se há requisição em andamento.
func (f *Feed) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight > 0
}

// LastUsed é o horário da última chamada a SetAudience.
func (f *Feed) LastUsed() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUsed
}

// Current devolve o último resultado não substituído.
func (f *Feed) Current() (domain.Audience, []domain.Campaign) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audience, f.current
}

// View fixa a primeira campanha sorteada durante uma visualização de página.
type View struct {
	selector *Selector
	audience domain.Audience

	once     sync.Once
	campaign *domain.Campaign
}

func (s *Selector) NewView(audience domain.Audience) *View {
	return &View{selector: s, audience: audience}
}

func (v *View) Campaign(ctx context.Context) *domain.Campaign {
	v.once.Do(func() {
		v.campaign = v.selector.Select(ctx, v.audience)
	})
	return v.campaign
}
