package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/willjrcristo/moneyquest-api/internal/region"
)

type Period string

const (
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

func (p Period) Valid() bool {
	return p == Monthly || p == Yearly
}

// PriceConfig é uma linha da tabela de preços.
type PriceConfig struct {
	Currency region.Currency `json:"currency"`
	Period   Period          `json:"period"`
	PriceID  string          `json:"price_id"` // ID opaco usado no checkout
	Amount   decimal.Decimal `json:"amount"`
	Display  string          `json:"display"`

	// Apenas no plano anual.
	Savings           *decimal.Decimal `json:"savings,omitempty"`
	MonthlyEquivalent *decimal.Decimal `json:"monthly_equivalent,omitempty"`
}

type key struct {
	currency region.Currency
	period   Period
}

// Catalog é a tabela estática de preços: exatamente uma entrada por (moeda, período).
type Catalog struct {
	entries map[key]PriceConfig
	byID    map[string]key
}

// Preços de lista por moeda.
var listPrices = map[region.Currency]struct{ monthly, yearly string }{
	region.BRL: {"14.90", "143.00"},
	region.USD: {"4.99", "47.90"},
	region.EUR: {"4.49", "42.90"},
}

// DefaultPriceIDs são usados quando a configuração não sobrescreve os IDs da Stripe.
func DefaultPriceIDs() map[region.Currency]map[Period]string {
	ids := make(map[region.Currency]map[Period]string, len(listPrices))
	for cur := range listPrices {
		c := strings.ToLower(string(cur))
		ids[cur] = map[Period]string{
			Monthly: "price_moneyquest_" + c + "_monthly",
			Yearly:  "price_moneyquest_" + c + "_yearly",
		}
	}
	return ids
}

// NewCatalog monta a tabela. IDs ausentes em overrides ficam com o valor padrão.
// Dois pares com o mesmo ID são rejeitados, senão o checkout não teria volta.
func NewCatalog(overrides map[region.Currency]map[Period]string) (*Catalog, error) {
	ids := DefaultPriceIDs()
	for cur, periods := range overrides {
		if _, ok := ids[cur]; !ok {
			return nil, fmt.Errorf("moeda sem preço de lista: %s", cur)
		}
		for p, id := range periods {
			if id != "" {
				ids[cur][p] = id
			}
		}
	}

	c := &Catalog{
		entries: make(map[key]PriceConfig, 6),
		byID:    make(map[string]key, 6),
	}
	for cur, prices := range listPrices {
		monthly := decimal.RequireFromString(prices.monthly)
		yearly := decimal.RequireFromString(prices.yearly)
		savings := monthly.Mul(decimal.NewFromInt(12)).Sub(yearly)
		equivalent := yearly.Div(decimal.NewFromInt(12)).Round(2)

		rows := []PriceConfig{
			{Currency: cur, Period: Monthly, PriceID: ids[cur][Monthly], Amount: monthly, Display: FormatAmount(cur, monthly)},
			{Currency: cur, Period: Yearly, PriceID: ids[cur][Yearly], Amount: yearly, Display: FormatAmount(cur, yearly),
				Savings: &savings, MonthlyEquivalent: &equivalent},
		}
		for _, row := range rows {
			if prev, dup := c.byID[row.PriceID]; dup {
				return nil, fmt.Errorf("price id %q repetido em %s/%s e %s/%s", row.PriceID, prev.currency, prev.period, cur, row.Period)
			}
			k := key{cur, row.Period}
			c.entries[k] = row
			c.byID[row.PriceID] = k
		}
	}
	return c, nil
}

// MustCatalog é NewCatalog para os IDs padrão, que nunca colidem.
func MustCatalog() *Catalog {
	c, err := NewCatalog(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Get sempre resolve: moeda desconhecida cai em USD, período desconhecido em mensal.
func (c *Catalog) Get(currency region.Currency, period Period) PriceConfig {
	if !currency.Valid() {
		currency = region.USD
	}
	if !period.Valid() {
		period = Monthly
	}
	return c.entries[key{currency, period}]
}

func (c *Catalog) PriceID(currency region.Currency, period Period) string {
	return c.Get(currency, period).PriceID
}

// Lookup faz o caminho inverso de PriceID, usado pelo checkout e pelo webhook.
func (c *Catalog) Lookup(priceID string) (PriceConfig, bool) {
	k, ok := c.byID[priceID]
	if !ok {
		return PriceConfig{}, false
	}
	return c.entries[k], true
}

// ForCurrency devolve as duas linhas (mensal e anual) de uma moeda.
func (c *Catalog) ForCurrency(currency region.Currency) []PriceConfig {
	return []PriceConfig{c.Get(currency, Monthly), c.Get(currency, Yearly)}
}

// FormatAmount gera a string de exibição no formato de cada moeda.
func FormatAmount(currency region.Currency, amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	switch currency {
	case region.BRL:
		return "R$ " + strings.Replace(fixed, ".", ",", 1)
	case region.EUR:
		return "€" + strings.Replace(fixed, ".", ",", 1)
	default:
		return "$" + fixed
	}
}
