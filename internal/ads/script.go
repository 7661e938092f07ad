package ads

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sync"
)

const scriptBaseURL = "https://pagead2.googlesyndication.com/pagead/js/adsbygoogle.js"

var clientIDPattern = regexp.MustCompile(`^ca-pub-\d{10,20}$`)

// ScriptSrc é a URL do script global para o client id.
func ScriptSrc(clientID string) string {
	return scriptBaseURL + "?client=" + url.QueryEscape(clientID)
}

// ValidateClientID é o LoadFunc padrão do servidor: o script só é oferecido
// ao navegador quando o client id tem o formato da rede.
func ValidateClientID(_ context.Context, clientID string) error {
	if !clientIDPattern.MatchString(clientID) {
		return fmt.Errorf("client id de anúncios inválido: %q", clientID)
	}
	return nil
}

type ScriptState int

const (
	ScriptIdle ScriptState = iota
	ScriptLoaded
	// Falha no carregamento: nenhum bloco é renderizado nesta sessão.
	ScriptDisabled
)

func (s ScriptState) String() string {
	switch s {
	case ScriptLoaded:
		return "loaded"
	case ScriptDisabled:
		return "disabled"
	default:
		return "idle"
	}
}

// LoadFunc injeta o script global da rede de anúncios.
type LoadFunc func(ctx context.Context, clientID string) error

// ScriptLoader carrega o script no máximo uma vez por sessão. A decisão de
// exibir é refeita a cada navegação em Decide, mesmo com o script já carregado.
type ScriptLoader struct {
	policy *Policy
	load   LoadFunc

	mu    sync.Mutex
	state ScriptState
}

func NewScriptLoader(p *Policy, load LoadFunc) *ScriptLoader {
	return &ScriptLoader{policy: p, load: load}
}

// Ensure carrega o script se ainda não foi tentado. Erros nunca são propagados.
func (l *ScriptLoader) Ensure(ctx context.Context) ScriptState {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != ScriptIdle {
		return l.state
	}
	if !l.policy.Enabled() {
		return ScriptIdle
	}
	if err := l.load(ctx, l.policy.ClientID()); err != nil {
		slog.Warn("Falha ao carregar o script de anúncios", "error", err)
		l.state = ScriptDisabled
		return l.state
	}
	l.state = ScriptLoaded
	return l.state
}

func (l *ScriptLoader) State() ScriptState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Decision é o resultado de uma navegação.
type Decision struct {
	Render    bool   `json:"render"`
	ClientID  string `json:"client_id,omitempty"`
	Slot      string `json:"slot,omitempty"`
	ScriptSrc string `json:"script_src,omitempty"`
	Script    string `json:"script_state"`
}

// Decide reavalia a política para a rota atual e, se permitido, garante o script.
func (l *ScriptLoader) Decide(ctx context.Context, pathname string, isAuthenticated bool, slotName string) Decision {
	if !l.policy.CanShowAds(pathname, isAuthenticated) {
		return Decision{Script: l.State().String()}
	}
	slot, ok := l.policy.Slot(slotName)
	if !ok {
		return Decision{Script: l.State().String()}
	}
	state := l.Ensure(ctx)
	if state != ScriptLoaded {
		return Decision{Script: state.String()}
	}
	return Decision{
		Render:    true,
		ClientID:  l.policy.ClientID(),
		Slot:      slot,
		ScriptSrc: ScriptSrc(l.policy.ClientID()),
		Script:    state.String(),
	}
}
