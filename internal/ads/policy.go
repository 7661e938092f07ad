// Package ads decide se, onde e qual bloco de anúncio pode ser exibido.
package ads

import (
	"strings"

	"github.com/willjrcristo/moneyquest-api/internal/metrics"
)

// RestrictedRoutes são rotas autenticadas onde nunca há anúncio.
var RestrictedRoutes = []string{
	"/dashboard",
	"/settings",
	"/wallets",
	"/goals",
	"/transactions",
	"/premium",
	"/admin",
	"/onboarding",
	"/profile",
	"/achievements",
}

// BlogRoutes só exibem anúncio para visitantes não autenticados.
var BlogRoutes = []string{"/blog"}

// Policy é construída uma vez a partir da configuração.
type Policy struct {
	clientID   string
	slots      map[string]string
	restricted []string
	blog       []string
}

func NewPolicy(clientID string, slots map[string]string) *Policy {
	cleaned := make(map[string]string, len(slots))
	for name, id := range slots {
		if id = strings.TrimSpace(id); id != "" {
			cleaned[name] = id
		}
	}
	return &Policy{
		clientID:   strings.TrimSpace(clientID),
		slots:      cleaned,
		restricted: RestrictedRoutes,
		blog:       BlogRoutes,
	}
}

// Enabled é false quando não há client id configurado.
func (p *Policy) Enabled() bool {
	return p.clientID != ""
}

func (p *Policy) ClientID() string {
	return p.clientID
}

// CanShowAds exige as três condições: rota fora da lista restrita, visitante
// anônimo nas rotas de blog e client id configurado.
func (p *Policy) CanShowAds(pathname string, isAuthenticated bool) bool {
	allowed := p.canShowAds(pathname, isAuthenticated)
	metrics.AdDecisions.WithLabelValues(boolLabel(allowed)).Inc()
	return allowed
}

func (p *Policy) canShowAds(pathname string, isAuthenticated bool) bool {
	if !p.Enabled() {
		return false
	}
	if matchesAny(pathname, p.restricted) {
		return false
	}
	if isAuthenticated && matchesAny(pathname, p.blog) {
		return false
	}
	return true
}

// Slot devolve o id do bloco pelo nome. Bloco sem id não é renderizado.
func (p *Policy) Slot(name string) (string, bool) {
	id, ok := p.slots[name]
	return id, ok
}

// Matches é o casamento por prefixo exato: igual à entrada ou começando com entrada + "/".
func Matches(pathname, entry string) bool {
	return pathname == entry || strings.HasPrefix(pathname, entry+"/")
}

func matchesAny(pathname string, entries []string) bool {
	for _, e := range entries {
		if Matches(pathname, e) {
			return true
		}
	}
	return false
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
