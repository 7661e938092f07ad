package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/willjrcristo/moneyquest-api/internal/ads"
	"github.com/willjrcristo/moneyquest-api/internal/domain"
	"github.com/willjrcristo/moneyquest-api/internal/pricing"
	"github.com/willjrcristo/moneyquest-api/internal/region"
	"github.com/willjrcristo/moneyquest-api/internal/service"
)

// Os handlers dependem destas interfaces, não das implementações concretas,
// para que possam ser testados com mocks.

type SessionLoader interface {
	Load(ctx context.Context, userID *uuid.UUID, timezoneHint string) *service.Session
	CurrentCampaign(ctx context.Context, s *service.Session) (*domain.Campaign, bool)
}

type SubscriptionService interface {
	StartTrial(ctx context.Context, userID uuid.UUID) (domain.TrialStatus, error)
	CreateCheckoutSession(ctx context.Context, userID uuid.UUID, period pricing.Period, timezoneHint string) (*service.CheckoutResult, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error
	Stats(ctx context.Context) (domain.SubscriptionStats, error)
	PriceTable(timezone string) (region.Currency, []pricing.PriceConfig)
}

type ProfileUpdater interface {
	UpdateProfileAsync(id uuid.UUID, patch domain.ProfilePatch, done chan<- struct{})
}

type CampaignAdmin interface {
	Create(ctx context.Context, c domain.Campaign) (uuid.UUID, error)
	List(ctx context.Context) ([]domain.Campaign, error)
}

type AdDecider interface {
	Decide(ctx context.Context, pathname string, isAuthenticated bool, slotName string) ads.Decision
}

// TimezoneHeader carrega o fuso detectado pelo navegador.
const TimezoneHeader = "X-Timezone"

// --- FUNÇÕES AUXILIARES ---

func respondWithError(w http.ResponseWriter, code int, message string) {
	slog.Error("API Error", "code", code, "message", message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
