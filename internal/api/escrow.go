package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/handleswap/handleswap/internal/app/escrow"
	"github.com/handleswap/handleswap/internal/domain"
)

// ─── Escrow REST API ────────────────────────────────────────────────────────
// POST  /api/listings                                — create a listing
// GET   /api/listings                                — active listings
// GET   /api/listings/{id}                           — one listing
// POST  /api/listings/{id}/offers                    — make an offer
// POST  /api/listings/{id}/buy-now                   — buy at the buy-now price
// POST  /api/listings/{id}/withdraw                  — seller takes the listing down
// POST  /api/offers/{id}/accept                      — seller accepts an offer
// GET   /api/transactions/{id}                       — transaction (sweeps deadlines)
// POST  /api/transactions/{id}/payment               — buyer pays into escrow
// POST  /api/transactions/{id}/credentials           — seller hands over credentials
// POST  /api/transactions/{id}/verification          — buyer opens verification
// PATCH /api/transactions/{id}/verification/{itemId} — toggle a checklist item
// POST  /api/transactions/{id}/verification/complete — release funds
// POST  /api/transactions/{id}/dispute               — raise a dispute
// POST  /api/transactions/{id}/dispute/resolve       — mediator resolution
// POST  /api/transactions/{id}/cancel                — cancel the transaction
// GET   /api/buyers/{id}/transactions                — buyer's transactions
// GET   /api/sellers/{id}/transactions               — seller's transactions

type createListingRequest struct {
	SellerID      string                `json:"sellerId"`
	Platform      string                `json:"platform"`
	Handle        string                `json:"handle"`
	Metrics       domain.AccountMetrics `json:"metrics"`
	AskingPrice   int64                 `json:"askingPrice"`
	BuyNowPrice   int64                 `json:"buyNowPrice"`
	MinOfferBps   int64                 `json:"minOfferBps"`
	IncludesEmail bool                  `json:"includesEmail"`
	VerifiedBadge bool                  `json:"verifiedBadge"`
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	listing, err := s.engine.CreateListing(r.Context(), escrow.ListingParams{
		SellerID:      req.SellerID,
		Platform:      domain.Platform(req.Platform),
		Handle:        req.Handle,
		Metrics:       req.Metrics,
		AskingPrice:   req.AskingPrice,
		BuyNowPrice:   req.BuyNowPrice,
		MinOfferBps:   req.MinOfferBps,
		IncludesEmail: req.IncludesEmail,
		VerifiedBadge: req.VerifiedBadge,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (s *Server) handleActiveListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.engine.ActiveListings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if listings == nil {
		listings = []*domain.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := s.engine.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

type createOfferRequest struct {
	BuyerID string `json:"buyerId"`
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	offer, err := s.engine.CreateOffer(r.Context(), chi.URLParam(r, "id"), req.BuyerID, req.Amount, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

type actorRequest struct {
	Actor string `json:"actor"`
	Note  string `json:"note"`
}

func (s *Server) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.AcceptOffer(r.Context(), chi.URLParam(r, "id"), req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

type buyNowRequest struct {
	BuyerID string `json:"buyerId"`
}

func (s *Server) handleBuyNow(w http.ResponseWriter, r *http.Request) {
	var req buyNowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.BuyNow(r.Context(), chi.URLParam(r, "id"), req.BuyerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

type withdrawRequest struct {
	SellerID string `json:"sellerId"`
}

func (s *Server) handleWithdrawListing(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	listing, err := s.engine.WithdrawListing(r.Context(), chi.URLParam(r, "id"), req.SellerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.engine.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.ConfirmPayment(r.Context(), chi.URLParam(r, "id"), req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleSendCredentials(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.SendCredentials(r.Context(), chi.URLParam(r, "id"), req.Actor, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleBeginVerification(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.BeginVerification(r.Context(), chi.URLParam(r, "id"), req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type updateItemRequest struct {
	Checked bool   `json:"checked"`
	Actor   string `json:"actor"`
}

func (s *Server) handleUpdateVerificationItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.UpdateVerificationItem(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req.Checked, req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCompleteVerification(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.CompleteVerification(r.Context(), chi.URLParam(r, "id"), req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type disputeRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
	Actor       string `json:"actor"`
}

func (s *Server) handleRaiseDispute(w http.ResponseWriter, r *http.Request) {
	var req disputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.RaiseDispute(r.Context(), chi.URLParam(r, "id"),
		domain.DisputeReason(req.Reason), req.Description, req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type resolveRequest struct {
	Outcome string `json:"outcome"`
	Actor   string `json:"actor"`
}

func (s *Server) handleResolveDispute(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.ResolveDispute(r.Context(), chi.URLParam(r, "id"),
		domain.DisputeOutcome(req.Outcome), req.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCancelTransaction(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.engine.CancelTransaction(r.Context(), chi.URLParam(r, "id"), req.Actor, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleBuyerTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.engine.TransactionsByBuyer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleSellerTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.engine.TransactionsBySeller(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}
