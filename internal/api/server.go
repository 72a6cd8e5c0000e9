// Package api provides the HTTP server for HandleSwap. It exposes the
// escrow REST API the marketplace UI talks to.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/handleswap/handleswap/internal/app/escrow"
	"github.com/handleswap/handleswap/internal/domain"
	"github.com/handleswap/handleswap/internal/infra/observability"
)

// Version is the API version reported at /api/version.
const Version = "0.1.0"

// Server is the HandleSwap HTTP API server.
type Server struct {
	engine         *escrow.Engine
	metricsEnabled bool
}

// NewServer creates a new API server around the escrow engine.
func NewServer(engine *escrow.Engine) *Server {
	return &Server{engine: engine}
}

// EnableMetrics enables the /metrics Prometheus endpoint and HTTP timing.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)
	if s.metricsEnabled {
		r.Use(observability.HTTPMiddleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/listings", func(r chi.Router) {
			r.Post("/", s.handleCreateListing)
			r.Get("/", s.handleActiveListings)
			r.Get("/{id}", s.handleGetListing)
			r.Post("/{id}/offers", s.handleCreateOffer)
			r.Post("/{id}/buy-now", s.handleBuyNow)
			r.Post("/{id}/withdraw", s.handleWithdrawListing)
		})
		r.Post("/offers/{id}/accept", s.handleAcceptOffer)
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/{id}", s.handleGetTransaction)
			r.Post("/{id}/payment", s.handleConfirmPayment)
			r.Post("/{id}/credentials", s.handleSendCredentials)
			r.Post("/{id}/verification", s.handleBeginVerification)
			r.Patch("/{id}/verification/{itemId}", s.handleUpdateVerificationItem)
			r.Post("/{id}/verification/complete", s.handleCompleteVerification)
			r.Post("/{id}/dispute", s.handleRaiseDispute)
			r.Post("/{id}/dispute/resolve", s.handleResolveDispute)
			r.Post("/{id}/cancel", s.handleCancelTransaction)
		})
		r.Get("/buyers/{id}/transactions", s.handleBuyerTransactions)
		r.Get("/sellers/{id}/transactions", s.handleSellerTransactions)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps engine errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		validationErr   *domain.ValidationError
		transitionErr   *domain.InvalidTransitionError
		stateErr        *domain.InvalidStateError
		verificationErr *domain.IncompleteVerificationError
		paymentErr      *domain.PaymentError
	)
	switch {
	case errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrOfferNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrChecklistItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrInvalidReason),
		errors.Is(err, domain.ErrInvalidOutcome):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &transitionErr),
		errors.As(err, &stateErr),
		errors.Is(err, domain.ErrListingUnavailable),
		errors.Is(err, domain.ErrOfferExpired),
		errors.Is(err, domain.ErrOfferNotOpen),
		errors.Is(err, domain.ErrBuyNowDisabled),
		errors.Is(err, domain.ErrNotDisputed),
		errors.Is(err, domain.ErrAlreadyDisputed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &verificationErr):
		writeError(w, http.StatusPreconditionFailed, err.Error())
	case errors.As(err, &paymentErr):
		writeError(w, http.StatusPaymentRequired, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
