package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/willjrcristo/moneyquest-api/internal/service"
)

// StripeWebhookHandler fica fora da autenticação: a Stripe assina o corpo.
type StripeWebhookHandler struct {
	service SubscriptionService
}

func NewStripeWebhookHandler(s SubscriptionService) *StripeWebhookHandler {
	return &StripeWebhookHandler{service: s}
}

// @Summary      Webhook da Stripe
// @Description  Sincroniza plano e vigência a partir dos eventos de assinatura
// @Tags         assinaturas
// @Accept       json
// @Param        Stripe-Signature  header  string  true  "Assinatura do evento"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /webhooks/stripe [post]
func (h *StripeWebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("Erro ao ler o corpo do webhook", "error", err)
		respondWithError(w, http.StatusServiceUnavailable, "Erro ao ler corpo da requisição")
		return
	}

	err = h.service.HandleStripeWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookStripe):
			respondWithError(w, http.StatusBadRequest, "Falha na verificação da assinatura do webhook")
		case errors.Is(err, service.ErrPagamentoIndisponivel):
			respondWithError(w, http.StatusServiceUnavailable, "Webhook da Stripe não configurado")
		default:
			respondWithError(w, http.StatusInternalServerError, "Erro interno ao processar webhook")
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}
