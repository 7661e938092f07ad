package ads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const clientID = "ca-pub-1234567890123456"

func TestPolicy_CanShowAds(t *testing.T) {
	p := NewPolicy(clientID, map[string]string{"blog_inline": "111"})

	casos := []struct {
		nome     string
		path     string
		auth     bool
		esperado bool
	}{
		{"rota autenticada nega mesmo sem login", "/settings", false, false},
		{"rota autenticada nega com login", "/settings", true, false},
		{"sub-rota restrita", "/settings/billing", false, false},
		{"prefixo parecido não casa", "/settingsx", false, true},
		{"blog nega para autenticado", "/blog", true, false},
		{"post do blog nega para autenticado", "/blog/como-economizar", true, false},
		{"blog libera para visitante", "/blog", false, true},
		{"home libera para autenticado", "/", true, true},
		{"landing de preços", "/pricing", false, true},
	}
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			assert.Equal(t, c.esperado, p.CanShowAds(c.path, c.auth))
		})
	}
}

func TestPolicy_SemClientID(t *testing.T) {
	p := NewPolicy("  ", map[string]string{"blog_inline": "111"})
	assert.False(t, p.Enabled())
	assert.False(t, p.CanShowAds("/blog", false))
}

func TestPolicy_Slot(t *testing.T) {
	p := NewPolicy(clientID, map[string]string{"blog_inline": "111", "sidebar": ""})

	id, ok := p.Slot("blog_inline")
	assert.True(t, ok)
	assert.Equal(t, "111", id)

	_, ok = p.Slot("sidebar")
	assert.False(t, ok)
}

func TestScriptLoader(t *testing.T) {
	t.Run("carrega uma única vez e reavalia a cada navegação", func(t *testing.T) {
		loads := 0
		l := NewScriptLoader(NewPolicy(clientID, map[string]string{"blog_inline": "111"}), func(context.Context, string) error {
			loads++
			return nil
		})

		d := l.Decide(context.Background(), "/blog", false, "blog_inline")
		assert.True(t, d.Render)
		assert.Equal(t, "111", d.Slot)
		assert.Contains(t, d.ScriptSrc, "client=ca-pub-1234567890123456")

		// Navegação SPA para uma rota restrita: script já carregado, mas sem anúncio.
		d = l.Decide(context.Background(), "/dashboard", true, "blog_inline")
		assert.False(t, d.Render)
		assert.Equal(t, "loaded", d.Script)

		l.Decide(context.Background(), "/blog/post", false, "blog_inline")
		assert.Equal(t, 1, loads)
	})

	t.Run("erro no carregamento desabilita sem propagar", func(t *testing.T) {
		loads := 0
		l := NewScriptLoader(NewPolicy(clientID, map[string]string{"blog_inline": "111"}), func(context.Context, string) error {
			loads++
			return errors.New("bloqueado pelo navegador")
		})

		d := l.Decide(context.Background(), "/blog", false, "blog_inline")
		assert.False(t, d.Render)
		assert.Equal(t, "disabled", d.Script)

		l.Decide(context.Background(), "/blog", false, "blog_inline")
		assert.Equal(t, 1, loads)
		assert.Equal(t, ScriptDisabled, l.State())
	})

	t.Run("slot ausente não carrega script", func(t *testing.T) {
		l := NewScriptLoader(NewPolicy(clientID, nil), ValidateClientID)
		d := l.Decide(context.Background(), "/blog", false, "blog_inline")
		assert.False(t, d.Render)
		assert.Equal(t, ScriptIdle, l.State())
	})
}

func TestValidateClientID(t *testing.T) {
	assert.NoError(t, ValidateClientID(context.Background(), clientID))
	assert.Error(t, ValidateClientID(context.Background(), "pub-123"))
}
