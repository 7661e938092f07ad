package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/entitlement"
	"github.com/willjrcristo/moneyquest-api/internal/pricing"
	"github.com/willjrcristo/moneyquest-api/internal/region"
	"github.com/willjrcristo/moneyquest-api/internal/repository"
)

// Erros de negócio relacionados à assinatura.
var (
	ErrPerfilNaoEncontrado   = errors.New("perfil não encontrado")
	ErrAssinaturaJaAtiva     = errors.New("usuário já possui uma assinatura ativa")
	ErrTrialJaUtilizado      = errors.New("período de teste já utilizado")
	ErrPeriodoInvalido       = errors.New("período de cobrança inválido")
	ErrPagamentoIndisponivel = errors.New("pagamentos não configurados")
	ErrWebhookStripe         = errors.New("erro ao processar webhook da stripe")
)

// SubscriptionService encapsula trial, checkout e sincronização com a Stripe.
type SubscriptionService struct {
	repo    repository.ProfileRepository
	catalog *pricing.Catalog
	gateway CheckoutGateway
	clock   clock.Clock
	cfg     SubscriptionConfig
}

type SubscriptionConfig struct {
	TrialDays     int
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// NewSubscriptionService cria o serviço. gateway nil desliga o checkout.
func NewSubscriptionService(repo repository.ProfileRepository, catalog *pricing.Catalog, gateway CheckoutGateway, c clock.Clock, cfg SubscriptionConfig) *SubscriptionService {
	if cfg.TrialDays <= 0 {
		cfg.TrialDays = 7
	}
	return &SubscriptionService{repo: repo, catalog: catalog, gateway: gateway, clock: c, cfg: cfg}
}

func (s *SubscriptionService) getProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPerfilNaoEncontrado
	}
	return p, nil
}

// StartTrial libera o trial uma única vez por perfil.
func (s *SubscriptionService) StartTrial(ctx context.Context, userID uuid.UUID) (domain.TrialStatus, error) {
	p, err := s.getProfile(ctx, userID)
	if err != nil {
		return domain.TrialStatus{}, err
	}

	now := s.clock.Now()
	if entitlement.PremiumActiveAt(p, now) {
		return domain.TrialStatus{}, ErrAssinaturaJaAtiva
	}
	if p.TrialActive || p.TrialEndsAt != nil {
		return domain.TrialStatus{}, ErrTrialJaUtilizado
	}

	active := true
	ends := now.AddDate(0, 0, s.cfg.TrialDays)
	if err := s.repo.Update(ctx, userID, domain.ProfilePatch{TrialActive: &active, TrialEndsAt: &ends}); err != nil {
		return domain.TrialStatus{}, err
	}
	slog.Info("Trial iniciado", "profile_id", userID, "ends_at", ends)
	return domain.TrialStatus{Active: true, EndsAt: &ends}, nil
}

// CheckoutResult é a URL de pagamento e a linha de preço cobrada.
type CheckoutResult struct {
	URL   string              `json:"checkout_url"`
	Price pricing.PriceConfig `json:"price"`
}

// CreateCheckoutSession cria uma sessão de pagamento na Stripe para o período pedido.
// A moeda vem da região do usuário, nunca do idioma.
func (s *SubscriptionService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, period pricing.Period, timezoneHint string) (*CheckoutResult, error) {
	if s.gateway == nil {
		return nil, ErrPagamentoIndisponivel
	}
	if !period.Valid() {
		return nil, ErrPeriodoInvalido
	}

	// 1. Buscar o perfil
	p, err := s.getProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 2. Não criar sessão para quem já tem PREMIUM vigente
	if entitlement.PremiumActiveAt(p, s.clock.Now()) {
		return nil, ErrAssinaturaJaAtiva
	}

	// 3. Resolver moeda e preço
	currency := region.NewResolver(func() string { return timezoneHint }).Resolve(p.Timezone)
	price := s.catalog.Get(currency, period)

	// 4. Criar o cliente na Stripe se ainda não existir
	customerID := p.StripeCustomerID
	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(ctx, *p)
		if err != nil {
			slog.Error("Falha ao criar cliente na Stripe", "error", err)
			return nil, err
		}
		if err := s.repo.Update(ctx, userID, domain.ProfilePatch{StripeCustomerID: &customerID}); err != nil {
			return nil, err
		}
	}

	// 5. Criar a sessão de checkout
	url, err := s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID: customerID,
		PriceID:    price.PriceID,
		ProfileID:  userID.String(),
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		slog.Error("Falha ao criar a sessão de checkout na Stripe", "error", err)
		return nil, err
	}
	return &CheckoutResult{URL: url, Price: price}, nil
}

// HandleStripeWebhook processa os eventos recebidos da Stripe.
// Sem segredo configurado nenhum evento é aceito.
func (s *SubscriptionService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.cfg.WebhookSecret == "" {
		slog.Error("Webhook da Stripe recebido sem STRIPE_WEBHOOK_SECRET configurado")
		return ErrPagamentoIndisponivel
	}

	// 1. Verificar a assinatura do evento
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		slog.Error("Erro ao verificar a assinatura do webhook", "error", err)
		return ErrWebhookStripe
	}

	// 2. Processar o evento com base no seu tipo
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return err
		}
		if cs.Subscription == nil || s.gateway == nil {
			return nil
		}
		// A sessão não traz a vigência: buscar a assinatura completa.
		sub, err := s.gateway.GetSubscription(ctx, cs.Subscription.ID)
		if err != nil {
			return err
		}
		if sub.CustomerID == "" && cs.Customer != nil {
			sub.CustomerID = cs.Customer.ID
		}
		return s.applySubscription(ctx, sub)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return err
		}
		return s.applySubscription(ctx, billingFromStripe(&sub))

	default:
		slog.Info("Webhook da Stripe recebido, mas não tratado", "event_type", event.Type)
	}
	return nil
}

// applySubscription grava plano e vigência no perfil dono do cliente Stripe.
func (s *SubscriptionService) applySubscription(ctx context.Context, sub *BillingSubscription) error {
	p, err := s.repo.GetByStripeCustomerID(ctx, sub.CustomerID)
	if err != nil {
		return err
	}
	if p == nil {
		slog.Warn("Assinatura da Stripe sem perfil correspondente", "customer_id", sub.CustomerID, "subscription_id", sub.ID)
		return nil
	}

	// Só preços da tabela alteram o plano.
	if _, ok := s.catalog.Lookup(sub.PriceID); !ok {
		slog.Warn("Assinatura com price id fora da tabela ignorada", "price_id", sub.PriceID, "profile_id", p.ID)
		return nil
	}

	plan := domain.PlanFree
	if premiumStatus(sub.Status) {
		plan = domain.PlanPremium
	}
	expires := sub.CurrentPeriodEnd
	subID := sub.ID
	patch := domain.ProfilePatch{
		SubscriptionPlan:      &plan,
		SubscriptionExpiresAt: &expires,
		StripeSubscriptionID:  &subID,
	}
	// Quem assina encerra o trial.
	if plan == domain.PlanPremium && p.TrialActive {
		inactive := false
		patch.TrialActive = &inactive
	}

	slog.Info("Assinatura sincronizada", "profile_id", p.ID, "status", sub.Status, "plan", plan, "expires_at", expires)
	return s.repo.Update(ctx, p.ID, patch)
}

func premiumStatus(status string) bool {
	switch stripe.SubscriptionStatus(status) {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
		return true
	}
	return false
}

// SweepExpired encerra trials vencidos e rebaixa PREMIUM vencidos. Roda pelo cron.
func (s *SubscriptionService) SweepExpired(ctx context.Context) (trials, premium int64, err error) {
	now := s.clock.Now()
	if trials, err = s.repo.ExpireTrials(ctx, now); err != nil {
		return 0, 0, err
	}
	if premium, err = s.repo.DowngradeExpiredPremium(ctx, now); err != nil {
		return trials, 0, err
	}
	return trials, premium, nil
}

func (s *SubscriptionService) Stats(ctx context.Context) (domain.SubscriptionStats, error) {
	return s.repo.Stats(ctx, s.clock.Now())
}

// PriceTable devolve as linhas de preço da moeda da região informada.
func (s *SubscriptionService) PriceTable(timezone string) (region.Currency, []pricing.PriceConfig) {
	currency := region.NewResolver(nil).Resolve(timezone)
	return currency, s.catalog.ForCurrency(currency)
}

// sweepTimeout limita cada execução da varredura agendada.
const sweepTimeout = time.Minute

// RunSweep é o job agendado: erros só vão para o log.
func (s *SubscriptionService) RunSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	trials, premium, err := s.SweepExpired(ctx)
	if err != nil {
		slog.Error("Falha na varredura de expirações", "error", err)
		return
	}
	slog.Info("Varredura de expirações concluída", "trials_encerrados", trials, "premium_rebaixados", premium)
}
