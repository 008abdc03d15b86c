package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	tele "gopkg.in/telebot.v4"

	"github.com/Paveld-cloud/imgbb-bot/internal/middleware"
	"github.com/Paveld-cloud/imgbb-bot/pkg/utils"
)

// UpdateProcessor consumes decoded bot updates. The bot itself dispatches
// each update on its own goroutine, so handing one off is cheap.
type UpdateProcessor interface {
	ProcessUpdate(u tele.Update)
}

// NewRouter wires the webhook endpoint and the health check.
func NewRouter(token string, bot UpdateProcessor) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handleHealth)

	r.With(middleware.TokenAuth(token)).Post("/{token}", func(w http.ResponseWriter, r *http.Request) {
		var update tele.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			log.Printf("[webhook] failed to decode update: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "invalid update payload")
			return
		}

		bot.ProcessUpdate(update)
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "imgbb-bot",
	})
}
