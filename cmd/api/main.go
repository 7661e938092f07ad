package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/willjrcristo/moneyquest-api/docs" // Importa a pasta docs gerada

	"github.com/willjrcristo/moneyquest-api/internal/ads"
	"github.com/willjrcristo/moneyquest-api/internal/backend"
	"github.com/willjrcristo/moneyquest-api/internal/campaign"
	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/config"
	httphandler "github.com/willjrcristo/moneyquest-api/internal/handler/http"
	"github.com/willjrcristo/moneyquest-api/internal/pricing"
	"github.com/willjrcristo/moneyquest-api/internal/repository"
	"github.com/willjrcristo/moneyquest-api/internal/service"
)

// feedIdleTimeout é quanto tempo o Feed de campanhas de um usuário sobrevive sem uso.
const feedIdleTimeout = 30 * time.Minute

// @title           MoneyQuest API
// @version         1.0
// @description     Entitlements, campanhas, preços regionais e anúncios do MoneyQuest.
//
// @contact.name   Will Cristo
// @contact.url    https://linkedin.com/in/willjrcristo
// @contact.email  willjrcristo@gmail.com
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// --- 1. CONFIGURAÇÃO DO LOGGER ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	slog.Info("🚀 Iniciando a API do MoneyQuest...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Erro ao carregar a configuração", "error", err)
		os.Exit(1)
	}

	// --- 2. CONEXÃO COM O BANCO DE DADOS ---
	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Erro ao inicializar o banco de dados", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("💾 Banco de dados pronto e migrado.", "path", cfg.DBPath)

	// --- 3. INJEÇÃO DE DEPENDÊNCIAS (WIRING) ---
	// DB -> Repository -> Backend -> Service -> Handler
	clk := clock.Real()

	profileRepo := repository.NewSQLiteProfileRepository(db)
	campaignRepo := repository.NewSQLiteCampaignRepository(db)
	backendClient := backend.NewClient(profileRepo, campaignRepo, clk)

	catalog, err := pricing.NewCatalog(cfg.PriceIDs)
	if err != nil {
		slog.Error("Tabela de preços inválida", "error", err)
		os.Exit(1)
	}

	var gateway service.CheckoutGateway
	if cfg.StripeSecretKey != "" {
		gateway = service.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		slog.Warn("STRIPE_SECRET_KEY ausente: checkout desativado")
	}

	subscriptionService := service.NewSubscriptionService(profileRepo, catalog, gateway, clk, service.SubscriptionConfig{
		TrialDays:     cfg.TrialDays,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
	})
	sessionService := service.NewSessionService(backendClient, campaign.NewSelector(backendClient, clk), clk)
	campaignAdmin := service.NewCampaignAdminService(campaignRepo)

	adPolicy := ads.NewPolicy(cfg.AdClientID, cfg.AdSlots)
	adLoader := ads.NewScriptLoader(adPolicy, ads.ValidateClientID)
	slog.Info("Camada de serviço inicializada", "ads_enabled", adPolicy.Enabled(), "checkout_enabled", gateway != nil)

	// --- 4. VARREDURA AGENDADA DE EXPIRAÇÕES ---
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, subscriptionService.RunSweep); err != nil {
		slog.Error("Expressão cron inválida", "schedule", cfg.SweepSchedule, "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc("@every 10m", func() {
		if n := sessionService.PruneFeeds(feedIdleTimeout); n > 0 {
			slog.Info("Feeds de campanha ociosos removidos", "total", n)
		}
	}); err != nil {
		slog.Error("Falha ao agendar a limpeza de feeds", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// --- 5. CONFIGURAÇÃO DO ROTEADOR E ROTAS ---
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(prometheusMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("API do MoneyQuest está no ar! 🚀"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// A URL será http://localhost:8080/swagger/index.html
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	httphandler.Register(r, httphandler.Dependencies{
		JWTSecret:     cfg.JWTSecret,
		Sessions:      sessionService,
		Subscriptions: subscriptionService,
		Profiles:      backendClient,
		Campaigns:     campaignAdmin,
		Ads:           adLoader,
		Clock:         clk,
	})
	slog.Info("🛰️  Rotas registradas")

	// --- 6. INICIALIZAÇÃO DO SERVIDOR HTTP ---
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("✅ Servidor pronto para receber requisições", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Erro ao iniciar o servidor", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Encerrando o servidor...")
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Erro ao encerrar o servidor", "error", err)
	}
	slog.Info("Servidor encerrado")
}
