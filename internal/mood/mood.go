// Package mood deriva o humor financeiro exibido no tema. É puramente
// cosmético e não participa de nenhuma decisão de cobrança ou acesso.
package mood

import (
	"github.com/shopspring/decimal"

	"github.com/willjrcristo/moneyquest-api/internal/domain"
)

// Limites inferiores de cada faixa sobre a taxa de poupança (receita - despesa) / receita.
var (
	veryPositiveFrom = decimal.RequireFromString("0.30")
	positiveFrom     = decimal.RequireFromString("0.10")
	neutralFrom      = decimal.RequireFromString("-0.05")
	negativeFrom     = decimal.RequireFromString("-0.30")
)

// Derive devolve o humor gravado quando existe; senão classifica pelos agregados.
func Derive(totalIncome, totalExpenses decimal.Decimal, stored *domain.Mood) domain.Mood {
	if stored != nil && stored.Valid() {
		return *stored
	}
	return Classify(SavingsRatio(totalIncome, totalExpenses))
}

// SavingsRatio com receita zero: sem despesa é 0, com despesa é -1 (faixa crítica).
func SavingsRatio(income, expenses decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		if expenses.IsPositive() {
			return decimal.NewFromInt(-1)
		}
		return decimal.Zero
	}
	return income.Sub(expenses).Div(income)
}

func Classify(ratio decimal.Decimal) domain.Mood {
	switch {
	case ratio.GreaterThanOrEqual(veryPositiveFrom):
		return domain.MoodVeryPositive
	case ratio.GreaterThanOrEqual(positiveFrom):
		return domain.MoodPositive
	case ratio.GreaterThanOrEqual(neutralFrom):
		return domain.MoodNeutral
	case ratio.GreaterThanOrEqual(negativeFrom):
		return domain.MoodNegative
	default:
		return domain.MoodCritical
	}
}

// Theme é a chave de tema visual de cada humor.
func Theme(m domain.Mood) string {
	switch m {
	case domain.MoodVeryPositive:
		return "sunny"
	case domain.MoodPositive:
		return "bright"
	case domain.MoodNegative:
		return "cloudy"
	case domain.MoodCritical:
		return "stormy"
	default:
		return "calm"
	}
}
