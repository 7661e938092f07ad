package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/service"
)

// AdminHandler atende o painel administrativo (papel "admin" no token).
type AdminHandler struct {
	campaigns     CampaignAdmin
	subscriptions SubscriptionService
}

func NewAdminHandler(campaigns CampaignAdmin, subscriptions SubscriptionService) *AdminHandler {
	return &AdminHandler{campaigns: campaigns, subscriptions: subscriptions}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequireAdmin)

	r.Get("/campaigns", h.ListCampaigns)
	r.Post("/campaigns", h.CreateCampaign)
	r.Get("/stats", h.GetStats)

	return r
}

// @Summary      Cadastra uma campanha
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        campanha  body      domain.Campaign  true  "Dados da campanha"
// @Success      201       {object}  domain.Campaign
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /admin/campaigns [post]
func (h *AdminHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c domain.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	id, err := h.campaigns.Create(r.Context(), c)
	if err != nil {
		if errors.Is(err, service.ErrCampanhaInvalida) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Erro ao criar campanha")
		return
	}

	c.ID = id
	respondWithJSON(w, http.StatusCreated, c)
}

// @Summary      Lista todas as campanhas
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Campaign
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /admin/campaigns [get]
func (h *AdminHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Erro ao buscar campanhas")
		return
	}
	if campaigns == nil {
		campaigns = []domain.Campaign{}
	}
	respondWithJSON(w, http.StatusOK, campaigns)
}

// @Summary      Estatísticas de assinaturas
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SubscriptionStats
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /admin/stats [get]
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.subscriptions.Stats(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Erro ao calcular estatísticas")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
