package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/models"
)

const defaultTransactionLimit = 100

// AnalysisService is the part of the engine the HTTP surface consumes.
type AnalysisService interface {
	AnalyzeWallet(ctx context.Context, wallet *models.Wallet) (*models.WalletAnalysis, error)
	AnalyzeToken(ctx context.Context, token *models.Token) (*models.TokenAnalysis, error)
	PortfolioMetrics(ctx context.Context, wallet *models.Wallet) (*models.PortfolioMetrics, error)
}

// Store is the persistence the handlers read wallet/token records from.
type Store interface {
	GetWallet(ctx context.Context, id string) (*models.Wallet, error)
	GetWalletByAddress(ctx context.Context, address string) (*models.Wallet, error)
	GetToken(ctx context.Context, address string) (*models.Token, error)
	GetTransactions(ctx context.Context, walletID string, limit int) ([]models.Transaction, error)
}

type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Handlers implements the HTTP handlers over the engine and store.
type Handlers struct {
	service AnalysisService
	store   Store
	logger  Logger
}

func NewHandlers(service AnalysisService, store Store, logger Logger) *Handlers {
	return &Handlers{
		service: service,
		store:   store,
		logger:  logger,
	}
}

type analyzeRequest struct {
	Address string `json:"address"`
}

type walletAnalysisResponse struct {
	Wallet   *models.Wallet         `json:"wallet"`
	Analysis *models.WalletAnalysis `json:"analysis"`
}

type tokenAnalysisResponse struct {
	Token    *models.Token         `json:"token"`
	Analysis *models.TokenAnalysis `json:"analysis"`
}

// AnalyzeWallet handles POST /api/v1/wallets/analyze.
func (h *Handlers) AnalyzeWallet(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		h.writeError(w, r, analysis.ErrInvalidInput)
		return
	}

	wallet, err := h.store.GetWalletByAddress(r.Context(), req.Address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.AnalyzeWallet(r.Context(), wallet)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, walletAnalysisResponse{Wallet: wallet, Analysis: result})
}

// AnalyzeToken handles POST /api/v1/tokens/analyze.
func (h *Handlers) AnalyzeToken(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		h.writeError(w, r, analysis.ErrInvalidInput)
		return
	}

	token, err := h.store.GetToken(r.Context(), req.Address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.service.AnalyzeToken(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenAnalysisResponse{Token: token, Analysis: result})
}

// PortfolioMetrics handles GET /api/v1/wallets/{id}/metrics.
func (h *Handlers) PortfolioMetrics(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	wallet, err := h.store.GetWallet(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics, err := h.service.PortfolioMetrics(r.Context(), wallet)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, metrics)
}

// TransactionHistory handles GET /api/v1/wallets/{id}/transactions.
func (h *Handlers) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	limit := defaultTransactionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			h.writeError(w, r, analysis.ErrInvalidInput)
			return
		}
		limit = parsed
	}

	// 确认钱包存在，未知ID返回404
	if _, err := h.store.GetWallet(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	txs, err := h.store.GetTransactions(r.Context(), id, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, txs)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "err", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, analysis.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, analysis.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, analysis.ErrDataUnavailable), errors.Is(err, analysis.ErrUpstreamFailure):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
