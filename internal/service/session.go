package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/willjrcristo/moneyquest-api/internal/backend"
	"github.com/willjrcristo/moneyquest-api/internal/campaign"
	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/entitlement"
	"github.com/willjrcristo/moneyquest-api/internal/mood"
	"github.com/willjrcristo/moneyquest-api/internal/region"
)

// Session reúne o que a interface consome para um usuário: perfil, entitlements,
// público, moeda, humor, idioma e tema. É criada uma vez por requisição e
// passada por referência, no lugar de estado global.
type Session struct {
	UserID        uuid.UUID
	Authenticated bool

	// Profile é nil quando o perfil não pôde ser carregado.
	Profile      *domain.Profile
	Entitlements entitlement.Snapshot
	Audience     domain.Audience
	Timezone     string
	Currency     region.Currency
	Mood         domain.Mood
	MoodTheme    string
	Theme        string
	Language     string

	view *campaign.View
}

// Campaign devolve sempre a mesma campanha durante a vida da sessão.
func (s *Session) Campaign(ctx context.Context) *domain.Campaign {
	if s.view == nil {
		return nil
	}
	return s.view.Campaign(ctx)
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext entra em pânico sem o middleware de sessão: é erro de
// integração e deve aparecer já no desenvolvimento.
func SessionFromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || s == nil {
		panic("service: SessionFromContext chamado fora do middleware de sessão")
	}
	return s
}

// SessionService monta sessões a partir do backend.
type SessionService struct {
	backend   *backend.Client
	evaluator *entitlement.Evaluator
	selector  *campaign.Selector
	clock     clock.Clock

	// Um Feed por usuário: um público novo cancela a busca antiga do mesmo usuário.
	// Feeds ociosos são removidos por PruneFeeds.
	feeds sync.Map // uuid.UUID -> *campaign.Feed
}

func NewSessionService(b *backend.Client, s *campaign.Selector, c clock.Clock) *SessionService {
	return &SessionService{
		backend:   b,
		evaluator: entitlement.NewEvaluator(c),
		selector:  s,
		clock:     c,
	}
}

// Load monta a sessão. userID nil significa visitante anônimo (tier free).
// timezoneHint é o fuso detectado pelo navegador, usado quando o perfil não tem um.
func (s *SessionService) Load(ctx context.Context, userID *uuid.UUID, timezoneHint string) *Session {
	sess := &Session{}

	var profile *domain.Profile
	switch {
	case userID == nil:
		profile = &domain.Profile{SubscriptionPlan: domain.PlanFree}
	default:
		sess.UserID = *userID
		sess.Authenticated = true

		res := s.backend.Profile(ctx, *userID)
		switch res.Kind {
		case backend.KindNone:
			profile = res.Value
			sess.Profile = profile
		case backend.KindNotFound:
			// Perfil ainda não criado pelo cadastro: tratado como FREE.
			profile = &domain.Profile{ID: *userID, SubscriptionPlan: domain.PlanFree}
		default:
			// Falha de backend: fica em "loading", tudo negado.
		}
	}

	sess.Entitlements = s.evaluator.Evaluate(profile, profile.Trial())
	sess.Audience = campaign.AudienceFor(sess.Entitlements)

	resolver := region.NewResolver(func() string {
		if timezoneHint != "" {
			return timezoneHint
		}
		return region.DetectLocalTimezone()
	})
	stored := ""
	if profile != nil {
		stored = profile.Timezone
		sess.Language = profile.Language
		sess.Theme = profile.ThemePreference
		sess.Mood = mood.Derive(profile.TotalIncome, profile.TotalExpenses, profile.FinancialMood)
	} else {
		sess.Mood = domain.MoodNeutral
	}
	sess.MoodTheme = mood.Theme(sess.Mood)
	sess.Timezone = resolver.Timezone(stored)
	sess.Currency = resolver.Resolve(stored)

	// Sem entitlements carregados não há público confiável: nenhuma campanha.
	if !sess.Entitlements.Loading {
		sess.view = s.selector.NewView(sess.Audience)
	}
	return sess
}

// CurrentCampaign escolhe a campanha do usuário autenticado pelo Feed dele.
// ok=false indica que uma requisição mais nova do mesmo usuário substituiu esta.
func (s *SessionService) CurrentCampaign(ctx context.Context, sess *Session) (c *domain.Campaign, ok bool) {
	if sess.Entitlements.Loading {
		return nil, true
	}
	if !sess.Authenticated {
		return sess.Campaign(ctx), true
	}

	v, _ := s.feeds.LoadOrStore(sess.UserID, campaign.NewFeed(s.selector))
	candidates, ok := v.(*campaign.Feed).SetAudience(ctx, sess.Audience)
	if !ok {
		return nil, false
	}
	return s.selector.Pick(candidates), true
}

// PruneFeeds remove os Feeds sem uso há mais de idle e sem requisição em
// andamento. Devolve quantos foram removidos. Roda pelo cron.
func (s *SessionService) PruneFeeds(idle time.Duration) int {
	cutoff := s.clock.Now().Add(-idle)
	removed := 0
	s.feeds.Range(func(key, value any) bool {
		f := value.(*campaign.Feed)
		if !f.Busy() && f.LastUsed().Before(cutoff) {
			s.feeds.Delete(key)
			removed++
		}
		return true
	})
	return removed
}
