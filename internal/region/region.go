// Package region resolve a moeda de cobrança a partir do fuso horário do usuário.
// A decisão é por região, nunca por idioma: um usuário que fala português numa
// região em dólar paga em USD.
package region

import (
	"os"
	"strings"
	"time"
)

type Currency string

const (
	BRL Currency = "BRL"
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// Valid indica se a moeda é uma das três suportadas.
func (c Currency) Valid() bool {
	switch c {
	case BRL, USD, EUR:
		return true
	}
	return false
}

// Region é a jurisdição de cobrança inferida do fuso.
type Region int

const (
	RegionInternational Region = iota
	RegionBrazil
	RegionEurope
)

// DefaultRegion é usada quando nem o fuso salvo nem o detectado estão disponíveis.
const DefaultRegion = RegionInternational

// Currency mapeia a região para a moeda de cobrança.
func (r Region) Currency() Currency {
	switch r {
	case RegionBrazil:
		return BRL
	case RegionEurope:
		return EUR
	case RegionInternational:
		return USD
	default:
		return USD
	}
}

func (r Region) String() string {
	switch r {
	case RegionBrazil:
		return "brazil"
	case RegionEurope:
		return "europe"
	default:
		return "international"
	}
}

// Fusos brasileiros do banco IANA (incluindo os aliases legados "Brazil/*").
var brazilZones = map[string]struct{}{
	"America/Sao_Paulo":    {},
	"America/Araguaina":    {},
	"America/Bahia":        {},
	"America/Belem":        {},
	"America/Boa_Vista":    {},
	"America/Campo_Grande": {},
	"America/Cuiaba":       {},
	"America/Eirunepe":     {},
	"America/Fortaleza":    {},
	"America/Maceio":       {},
	"America/Manaus":       {},
	"America/Noronha":      {},
	"America/Porto_Velho":  {},
	"America/Recife":       {},
	"America/Rio_Branco":   {},
	"America/Santarem":     {},
}

// Fusos fora do prefixo Europe/ que pertencem a regiões europeias.
var europeanAtlanticZones = map[string]struct{}{
	"Atlantic/Azores":  {},
	"Atlantic/Canary":  {},
	"Atlantic/Madeira": {},
}

// RegionFor classifica um fuso IANA. Strings vazias ou desconhecidas caem na região padrão.
func RegionFor(timezone string) Region {
	tz := strings.TrimSpace(timezone)
	if tz == "" {
		return DefaultRegion
	}
	if _, ok := brazilZones[tz]; ok {
		return RegionBrazil
	}
	if strings.HasPrefix(tz, "Brazil/") {
		return RegionBrazil
	}
	if _, ok := europeanAtlanticZones[tz]; ok {
		return RegionEurope
	}
	if strings.HasPrefix(tz, "Europe/") && len(tz) > len("Europe/") {
		return RegionEurope
	}
	return DefaultRegion
}

// ResolveBillingCurrency é total: todo fuso resulta em exatamente uma moeda.
func ResolveBillingCurrency(timezone string) Currency {
	return RegionFor(timezone).Currency()
}

// Resolver aplica a cadeia de fallback: fuso salvo no perfil -> fuso detectado -> região padrão.
type Resolver struct {
	detect func() string
}

// NewResolver cria um Resolver. Com detect nil, usa DetectLocalTimezone.
func NewResolver(detect func() string) *Resolver {
	if detect == nil {
		detect = DetectLocalTimezone
	}
	return &Resolver{detect: detect}
}

// Timezone devolve o fuso efetivo, ou "" quando nenhum está disponível.
func (r *Resolver) Timezone(stored string) string {
	if tz := strings.TrimSpace(stored); tz != "" {
		return tz
	}
	return strings.TrimSpace(r.detect())
}

func (r *Resolver) Resolve(stored string) Currency {
	tz := r.Timezone(stored)
	if tz == "" {
		return DefaultRegion.Currency()
	}
	return ResolveBillingCurrency(tz)
}

// DetectLocalTimezone lê o fuso do runtime: variável TZ e depois time.Local.
// "Local" e "UTC" não identificam região, então devolvem "".
func DetectLocalTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" && !strings.HasPrefix(tz, ":") {
		return tz
	}
	name := time.Local.String()
	if name == "Local" || name == "UTC" {
		return ""
	}
	return name
}
