package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/willjrcristo/moneyquest-api/internal/pricing"
	"github.com/willjrcristo/moneyquest-api/internal/region"
)

// DefaultJWTSecret só serve para desenvolvimento local: com ele qualquer um
// assina tokens de admin.
const DefaultJWTSecret = "dev-secret-change-me"

// Config contém as configurações da aplicação.
type Config struct {
	Port   string // Porta HTTP
	DBPath string // Caminho do arquivo SQLite

	JWTSecret string // Segredo HS256 dos tokens de acesso

	StripeSecretKey     string
	StripeWebhookSecret string
	PriceIDs            map[region.Currency]map[pricing.Period]string

	// URLs do frontend para o retorno do checkout.
	CheckoutSuccessURL string
	CheckoutCancelURL  string

	// Anúncios: tudo opcional. Sem client id, nenhum anúncio é exibido.
	AdClientID string
	AdSlots    map[string]string

	SweepSchedule string // Expressão cron da varredura de expirações
	TrialDays     int
}

// LoadConfig carrega a configuração do ambiente, lendo antes o .env se existir.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Arquivo .env não encontrado, usando apenas variáveis de ambiente")
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		DBPath:              getEnv("DB_PATH", "./moneyquest.db"),
		JWTSecret:           getEnv("JWT_SECRET", DefaultJWTSecret),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/premium/success?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/premium"),
		AdClientID:          os.Getenv("ADSENSE_CLIENT_ID"),
		AdSlots:             parseSlots(os.Getenv("ADSENSE_SLOTS")),
		SweepSchedule:       getEnv("SWEEP_SCHEDULE", "@every 15m"),
		TrialDays:           7,
		PriceIDs:            make(map[region.Currency]map[pricing.Period]string),
	}

	// STRIPE_PRICE_BRL_MONTHLY, STRIPE_PRICE_USD_YEARLY, ...
	for _, cur := range []region.Currency{region.BRL, region.USD, region.EUR} {
		for _, p := range []pricing.Period{pricing.Monthly, pricing.Yearly} {
			key := "STRIPE_PRICE_" + string(cur) + "_" + strings.ToUpper(string(p))
			if v := os.Getenv(key); v != "" {
				if cfg.PriceIDs[cur] == nil {
					cfg.PriceIDs[cur] = make(map[pricing.Period]string)
				}
				cfg.PriceIDs[cur][p] = v
			}
		}
	}

	if cfg.UsingDefaultJWTSecret() {
		slog.Warn("JWT_SECRET não definido: usando o segredo de desenvolvimento, não use em produção")
	}
	if cfg.StripeWebhookSecret == "" {
		slog.Warn("STRIPE_WEBHOOK_SECRET não definido: webhooks da Stripe serão recusados")
	}

	return cfg, nil
}

// UsingDefaultJWTSecret indica se o segredo dos tokens é o de desenvolvimento.
func (c *Config) UsingDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// parseSlots lê "nome=id,nome=id".
func parseSlots(raw string) map[string]string {
	slots := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, id, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || id == "" {
			continue
		}
		slots[strings.TrimSpace(name)] = strings.TrimSpace(id)
	}
	return slots
}

// getEnv devolve a variável de ambiente ou o valor padrão.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
