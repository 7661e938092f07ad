// Package setup decide se o assistente de primeiro acesso precisa ser exibido.
package setup

const (
	LanguageKey = "mq_setup_language"
	CurrencyKey = "mq_setup_currency"
)

// Store é o estado local persistido pelo cliente (cookies, localStorage).
type Store interface {
	Get(key string) (string, bool)
}

// MapStore é um Store em memória.
type MapStore map[string]string

func (m MapStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Choices são as escolhas feitas no assistente.
type Choices struct {
	Language string `json:"language,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// NeedsWizard é true a menos que idioma e moeda estejam os dois gravados.
func NeedsWizard(s Store) bool {
	_, ok := Read(s)
	return !ok
}

func Read(s Store) (Choices, bool) {
	lang, okLang := s.Get(LanguageKey)
	cur, okCur := s.Get(CurrencyKey)
	c := Choices{Language: lang, Currency: cur}
	return c, okLang && okCur && lang != "" && cur != ""
}
