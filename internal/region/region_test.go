package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBillingCurrency(t *testing.T) {
	casos := []struct {
		timezone string
		esperado Currency
	}{
		{"America/Sao_Paulo", BRL},
		{"America/Manaus", BRL},
		{"Brazil/East", BRL},
		{"Europe/Berlin", EUR},
		{"Europe/Lisbon", EUR},
		{"Atlantic/Madeira", EUR},
		{"Asia/Tokyo", USD},
		{"America/New_York", USD},
		{"America/Argentina/Buenos_Aires", USD},
		{"", USD},
		{"   ", USD},
		{"Europe/", USD},
		{"not a timezone", USD},
		{"europe/berlin", USD},
	}

	for _, c := range casos {
		t.Run(c.timezone, func(t *testing.T) {
			got := ResolveBillingCurrency(c.timezone)
			assert.Equal(t, c.esperado, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestResolver_Fallbacks(t *testing.T) {
	t.Run("fuso salvo tem prioridade sobre o detectado", func(t *testing.T) {
		r := NewResolver(func() string { return "Europe/Paris" })
		assert.Equal(t, BRL, r.Resolve("America/Sao_Paulo"))
	})

	t.Run("sem fuso salvo usa o detectado", func(t *testing.T) {
		r := NewResolver(func() string { return "Europe/Paris" })
		assert.Equal(t, EUR, r.Resolve(""))
	})

	t.Run("sem nenhum fuso usa a região padrão", func(t *testing.T) {
		r := NewResolver(func() string { return "" })
		assert.Equal(t, DefaultRegion.Currency(), r.Resolve(""))
		assert.Equal(t, "", r.Timezone(" "))
	})
}

func TestRegion_Currency(t *testing.T) {
	assert.Equal(t, BRL, RegionBrazil.Currency())
	assert.Equal(t, EUR, RegionEurope.Currency())
	assert.Equal(t, USD, RegionInternational.Currency())
	assert.Equal(t, USD, Region(42).Currency())
}
