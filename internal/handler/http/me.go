package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/entitlement"
	"github.com/willjrcristo/moneyquest-api/internal/pricing"
	"github.com/willjrcristo/moneyquest-api/internal/region"
	"github.com/willjrcristo/moneyquest-api/internal/service"
)

// MeHandler atende as rotas do usuário autenticado.
type MeHandler struct {
	sessions      SessionLoader
	subscriptions SubscriptionService
	profiles      ProfileUpdater
}

func NewMeHandler(sessions SessionLoader, subscriptions SubscriptionService, profiles ProfileUpdater) *MeHandler {
	return &MeHandler{sessions: sessions, subscriptions: subscriptions, profiles: profiles}
}

// Routes espera OptionalAuth e SessionMiddleware já aplicados pelo roteador pai.
func (h *MeHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequireAuth)

	r.Get("/session", h.GetSession)
	r.Get("/entitlements", h.GetEntitlements)
	r.Get("/campaign", h.GetCampaign)
	r.Patch("/profile", h.UpdateProfile)
	r.Post("/trial", h.StartTrial)
	r.Post("/checkout", h.CreateCheckout)

	return r
}

type sessionResponse struct {
	Authenticated bool                 `json:"authenticated"`
	Profile       *domain.Profile      `json:"profile,omitempty"`
	Entitlements  entitlement.Snapshot `json:"entitlements"`
	Audience      domain.Audience      `json:"audience"`
	Timezone      string               `json:"timezone"`
	Currency      region.Currency      `json:"currency"`
	Mood          domain.Mood          `json:"mood"`
	MoodTheme     string               `json:"mood_theme"`
	Theme         string               `json:"theme,omitempty"`
	Language      string               `json:"language,omitempty"`
}

func newSessionResponse(s *service.Session) sessionResponse {
	return sessionResponse{
		Authenticated: s.Authenticated,
		Profile:       s.Profile,
		Entitlements:  s.Entitlements,
		Audience:      s.Audience,
		Timezone:      s.Timezone,
		Currency:      s.Currency,
		Mood:          s.Mood,
		MoodTheme:     s.MoodTheme,
		Theme:         s.Theme,
		Language:      s.Language,
	}
}

// @Summary      Sessão do usuário
// @Description  Perfil, entitlements, moeda e humor financeiro do usuário autenticado
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /me/session [get]
func (h *MeHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, newSessionResponse(service.SessionFromContext(r.Context())))
}

// @Summary      Entitlements do usuário
// @Description  Snapshot das capacidades premium liberadas agora. loading=true nega tudo.
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entitlement.Snapshot
// @Failure      401  {object}  map[string]string
// @Router       /me/entitlements [get]
func (h *MeHandler) GetEntitlements(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, service.SessionFromContext(r.Context()).Entitlements)
}

type campaignResponse struct {
	Campaign *domain.Campaign `json:"campaign"`
}

// @Summary      Campanha atual
// @Description  Campanha escolhida para o público do usuário, ou null
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  campaignResponse
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /me/campaign [get]
func (h *MeHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())
	c, ok := h.sessions.CurrentCampaign(r.Context(), sess)
	if !ok {
		// Substituída por uma requisição mais nova do mesmo usuário.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondWithJSON(w, http.StatusOK, campaignResponse{Campaign: c})
}

type updateProfileRequest struct {
	Timezone        *string `json:"timezone"`
	ThemePreference *string `json:"theme_preference"`
	Language        *string `json:"language"`
}

// @Summary      Atualiza preferências do perfil
// @Description  Grava fuso, tema e idioma em segundo plano
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        perfil  body      updateProfileRequest  true  "Campos a alterar"
// @Success      202     {object}  map[string]string
// @Failure      400     {object}  map[string]string
// @Failure      401     {object}  map[string]string
// @Router       /me/profile [patch]
func (h *MeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if req.Timezone != nil && *req.Timezone != "" {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			respondWithError(w, http.StatusBadRequest, "Fuso horário inválido")
			return
		}
	}

	patch := domain.ProfilePatch{
		Timezone:        req.Timezone,
		ThemePreference: req.ThemePreference,
		Language:        req.Language,
	}
	if patch.Empty() {
		respondWithError(w, http.StatusBadRequest, "Nenhum campo para atualizar")
		return
	}

	sess := service.SessionFromContext(r.Context())
	h.profiles.UpdateProfileAsync(sess.UserID, patch, nil)
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "agendado"})
}

// @Summary      Inicia o período de teste
// @Description  Libera o PREMIUM por 7 dias, uma única vez por perfil
// @Tags         assinaturas
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.TrialStatus
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /me/trial [post]
func (h *MeHandler) StartTrial(w http.ResponseWriter, r *http.Request) {
	sess := service.SessionFromContext(r.Context())
	status, err := h.subscriptions.StartTrial(r.Context(), sess.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPerfilNaoEncontrado):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssinaturaJaAtiva), errors.Is(err, service.ErrTrialJaUtilizado):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Erro ao iniciar o período de teste")
		}
		return
	}
	respondWithJSON(w, http.StatusCreated, status)
}

type checkoutRequest struct {
	Period pricing.Period `json:"period"`
}

// @Summary      Cria uma sessão de checkout na Stripe
// @Description  Gera a URL de pagamento no preço da região do usuário
// @Tags         assinaturas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        checkout  body      checkoutRequest  true  "Período de cobrança (monthly ou yearly)"
// @Success      200       {object}  service.CheckoutResult
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Failure      409       {object}  map[string]string
// @Failure      503       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /me/checkout [post]
func (h *MeHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	sess := service.SessionFromContext(r.Context())
	result, err := h.subscriptions.CreateCheckoutSession(r.Context(), sess.UserID, req.Period, r.Header.Get(TimezoneHeader))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPeriodoInvalido):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPerfilNaoEncontrado):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAssinaturaJaAtiva):
			respondWithError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrPagamentoIndisponivel):
			respondWithError(w, http.StatusServiceUnavailable, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Erro ao criar a sessão de pagamento")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
