package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/willjrcristo/moneyquest-api/internal/clock"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/ledger"
	"github.com/willjrcristo/moneyquest-api/internal/pricing"
	"github.com/willjrcristo/moneyquest-api/internal/region"
	"github.com/willjrcristo/moneyquest-api/internal/service"
	"github.com/willjrcristo/moneyquest-api/internal/setup"
)

// PublicHandler atende rotas abertas a visitantes. A sessão pode ser anônima.
type PublicHandler struct {
	sessions      SessionLoader
	subscriptions SubscriptionService
	ads           AdDecider
	clock         clock.Clock
}

func NewPublicHandler(sessions SessionLoader, subscriptions SubscriptionService, ads AdDecider, c clock.Clock) *PublicHandler {
	return &PublicHandler{sessions: sessions, subscriptions: subscriptions, ads: ads, clock: c}
}

// RegisterRoutes registra as rotas diretamente no roteador informado.
func (h *PublicHandler) RegisterRoutes(r chi.Router) {
	r.Get("/pricing", h.GetPricing)
	r.Get("/campaigns/current", h.GetCurrentCampaign)
	r.Get("/ads/decision", h.GetAdDecision)
	r.Get("/setup/status", h.GetSetupStatus)
	r.Get("/ledger/can-edit", h.GetCanEdit)
}

type pricingResponse struct {
	Currency region.Currency       `json:"currency"`
	Prices   []pricing.PriceConfig `json:"prices"`
}

// @Summary      Tabela de preços
// @Description  Preços na moeda da região do usuário (fuso do perfil ou cabeçalho X-Timezone)
// @Tags         assinaturas
// @Produce      json
// @Param        X-Timezone  header    string  false  "Fuso IANA detectado no navegador"
// @Success      200         {object}  pricingResponse
// @Router       /pricing [get]
func (h *PublicHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())
	currency, prices := h.subscriptions.PriceTable(sess.Timezone)
	respondWithJSON(w, http.StatusOK, pricingResponse{Currency: currency, Prices: prices})
}

// @Summary      Campanha para visitantes
// @Description  Campanha da sessão atual; estável durante a requisição
// @Tags         campanhas
// @Produce      json
// @Success      200  {object}  campaignResponse
// @Router       /campaigns/current [get]
func (h *PublicHandler) GetCurrentCampaign(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())
	var c *domain.Campaign
	if !sess.Authenticated {
		c = sess.Campaign(r.Context())
	} else {
		var ok bool
		if c, ok = h.sessions.CurrentCampaign(r.Context(), sess); !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	respondWithJSON(w, http.StatusOK, campaignResponse{Campaign: c})
}

// @Summary      Decisão de anúncio
// @Description  Indica se um bloco de anúncio pode ser exibido na rota informada
// @Tags         anuncios
// @Produce      json
// @Param        path  query     string  true   "Rota da página"
// @Param        slot  query     string  false  "Nome do bloco configurado"
// @Success      200   {object}  ads.Decision
// @Failure      400   {object}  map[string]string
// @Router       /ads/decision [get]
func (h *PublicHandler) GetAdDecision(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondWithError(w, http.StatusBadRequest, "Parâmetro path é obrigatório")
		return
	}
	sess := service.SessionFromContext(r.Context())
	decision := h.ads.Decide(r.Context(), path, sess.Authenticated, r.URL.Query().Get("slot"))
	respondWithJSON(w, http.StatusOK, decision)
}

// cookieStore lê as escolhas do assistente inicial dos cookies da requisição.
type cookieStore struct {
	r *http.Request
}

func (c cookieStore) Get(key string) (string, bool) {
	cookie, err := c.r.Cookie(key)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

type setupStatusResponse struct {
	NeedsWizard bool          `json:"needs_wizard"`
	Choices     setup.Choices `json:"choices"`
}

// @Summary      Estado do assistente inicial
// @Description  needs_wizard=true enquanto idioma ou moeda não foram escolhidos
// @Tags         setup
// @Produce      json
// @Success      200  {object}  setupStatusResponse
// @Router       /setup/status [get]
func (h *PublicHandler) GetSetupStatus(w http.ResponseWriter, r *http.Request) {
	choices, complete := setup.Read(cookieStore{r: r})
	respondWithJSON(w, http.StatusOK, setupStatusResponse{NeedsWizard: !complete, Choices: choices})
}

type canEditResponse struct {
	CanEdit bool `json:"can_edit"`
}

// @Summary      Mês fechado
// @Description  Só transações do mês corrente (UTC) podem ser editadas
// @Tags         lancamentos
// @Produce      json
// @Param        date  query     string  true  "Data da transação (YYYY-MM-DD ou RFC3339)"
// @Success      200   {object}  canEditResponse
// @Failure      400   {object}  map[string]string
// @Router       /ledger/can-edit [get]
func (h *PublicHandler) GetCanEdit(w http.ResponseWriter, r *http.Request) {
	txDate, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Data inválida")
		return
	}
	respondWithJSON(w, http.StatusOK, canEditResponse{CanEdit: ledger.CanEdit(txDate, h.clock.Now())})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
