package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/moneyquest-api/internal/region"
)

var todasAsMoedas = []region.Currency{region.BRL, region.USD, region.EUR}

func TestCatalog_PriceIDRoundTrip(t *testing.T) {
	c := MustCatalog()

	for _, cur := range todasAsMoedas {
		for _, p := range []Period{Monthly, Yearly} {
			id := c.PriceID(cur, p)
			require.NotEmpty(t, id)

			row, ok := c.Lookup(id)
			require.True(t, ok, "price id %s sem volta", id)
			assert.Equal(t, cur, row.Currency)
			assert.Equal(t, p, row.Period)
			assert.Equal(t, c.Get(cur, p), row)
		}
	}
}

func TestCatalog_Get(t *testing.T) {
	c := MustCatalog()

	t.Run("moeda desconhecida cai em USD", func(t *testing.T) {
		assert.Equal(t, c.Get(region.USD, Monthly), c.Get(region.Currency("JPY"), Monthly))
		assert.Equal(t, c.Get(region.USD, Yearly), c.Get("", Yearly))
	})

	t.Run("período desconhecido cai em mensal", func(t *testing.T) {
		assert.Equal(t, c.Get(region.EUR, Monthly), c.Get(region.EUR, Period("weekly")))
	})

	t.Run("anual carrega economia e equivalente mensal", func(t *testing.T) {
		row := c.Get(region.BRL, Yearly)
		require.NotNil(t, row.Savings)
		require.NotNil(t, row.MonthlyEquivalent)
		assert.True(t, decimal.RequireFromString("35.80").Equal(*row.Savings))
		assert.True(t, decimal.RequireFromString("11.92").Equal(*row.MonthlyEquivalent))
		assert.Equal(t, "R$ 143,00", row.Display)
	})

	t.Run("mensal não carrega campos do anual", func(t *testing.T) {
		row := c.Get(region.USD, Monthly)
		assert.Nil(t, row.Savings)
		assert.Nil(t, row.MonthlyEquivalent)
		assert.Equal(t, "$4.99", row.Display)
	})
}

func TestNewCatalog_Overrides(t *testing.T) {
	t.Run("sobrescreve apenas o ID informado", func(t *testing.T) {
		c, err := NewCatalog(map[region.Currency]map[Period]string{
			region.EUR: {Yearly: "price_live_eur_y"},
		})
		require.NoError(t, err)
		assert.Equal(t, "price_live_eur_y", c.PriceID(region.EUR, Yearly))
		assert.Equal(t, DefaultPriceIDs()[region.EUR][Monthly], c.PriceID(region.EUR, Monthly))

		row, ok := c.Lookup("price_live_eur_y")
		require.True(t, ok)
		assert.Equal(t, region.EUR, row.Currency)
	})

	t.Run("rejeita IDs repetidos", func(t *testing.T) {
		_, err := NewCatalog(map[region.Currency]map[Period]string{
			region.BRL: {Monthly: "price_x"},
			region.USD: {Monthly: "price_x"},
		})
		assert.Error(t, err)
	})

	t.Run("rejeita moeda sem preço", func(t *testing.T) {
		_, err := NewCatalog(map[region.Currency]map[Period]string{"GBP": {Monthly: "price_gbp"}})
		assert.Error(t, err)
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "€4,49", FormatAmount(region.EUR, decimal.RequireFromString("4.49")))
	assert.Equal(t, "R$ 14,90", FormatAmount(region.BRL, decimal.RequireFromString("14.9")))
	assert.Equal(t, "$47.90", FormatAmount(region.USD, decimal.RequireFromString("47.9")))
}
