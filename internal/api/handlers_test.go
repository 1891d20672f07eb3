package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/models"
)

type stubService struct {
	walletAnalysis *models.WalletAnalysis
	tokenAnalysis  *models.TokenAnalysis
	metrics        *models.PortfolioMetrics
	err            error
}

func (s *stubService) AnalyzeWallet(_ context.Context, _ *models.Wallet) (*models.WalletAnalysis, error) {
	return s.walletAnalysis, s.err
}

func (s *stubService) AnalyzeToken(_ context.Context, _ *models.Token) (*models.TokenAnalysis, error) {
	return s.tokenAnalysis, s.err
}

func (s *stubService) PortfolioMetrics(_ context.Context, _ *models.Wallet) (*models.PortfolioMetrics, error) {
	return s.metrics, s.err
}

type stubStore struct {
	wallet       *models.Wallet
	token        *models.Token
	transactions []models.Transaction
	err          error
}

func (s *stubStore) GetWallet(_ context.Context, _ string) (*models.Wallet, error) {
	return s.wallet, s.err
}

func (s *stubStore) GetWalletByAddress(_ context.Context, _ string) (*models.Wallet, error) {
	return s.wallet, s.err
}

func (s *stubStore) GetToken(_ context.Context, _ string) (*models.Token, error) {
	return s.token, s.err
}

func (s *stubStore) GetTransactions(_ context.Context, _ string, _ int) ([]models.Transaction, error) {
	return s.transactions, s.err
}

func newTestServer(service AnalysisService, store Store) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(DefaultServerConfig(), NewHandlers(service, store, logger))
}

func doRequest(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeWalletEndpoint(t *testing.T) {
	wallet := &models.Wallet{ID: "w1", Address: "wallet-addr"}

	t.Run("success", func(t *testing.T) {
		service := &stubService{walletAnalysis: &models.WalletAnalysis{
			RiskScore:      0.5,
			DiversityScore: 0.5,
		}}
		server := newTestServer(service, &stubStore{wallet: wallet})

		rec := doRequest(t, server, http.MethodPost, "/api/v1/wallets/analyze", `{"address":"wallet-addr"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp struct {
			Wallet   models.Wallet         `json:"wallet"`
			Analysis models.WalletAnalysis `json:"analysis"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "wallet-addr", resp.Wallet.Address)
		assert.Equal(t, 0.5, resp.Analysis.RiskScore)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := newTestServer(&stubService{}, &stubStore{wallet: wallet})
		rec := doRequest(t, server, http.MethodPost, "/api/v1/wallets/analyze", `{"address":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing address", func(t *testing.T) {
		server := newTestServer(&stubService{}, &stubStore{wallet: wallet})
		rec := doRequest(t, server, http.MethodPost, "/api/v1/wallets/analyze", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		store := &stubStore{err: fmt.Errorf("%w: wallet wallet-addr", analysis.ErrNotFound)}
		server := newTestServer(&stubService{}, store)
		rec := doRequest(t, server, http.MethodPost, "/api/v1/wallets/analyze", `{"address":"wallet-addr"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("market data unavailable", func(t *testing.T) {
		service := &stubService{err: fmt.Errorf("market data for aaa: %w", analysis.ErrDataUnavailable)}
		server := newTestServer(service, &stubStore{wallet: wallet})
		rec := doRequest(t, server, http.MethodPost, "/api/v1/wallets/analyze", `{"address":"wallet-addr"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestAnalyzeTokenEndpoint(t *testing.T) {
	token := &models.Token{Address: "token-addr", Symbol: "SOL"}

	t.Run("success", func(t *testing.T) {
		service := &stubService{tokenAnalysis: &models.TokenAnalysis{SentimentScore: 0.62}}
		server := newTestServer(service, &stubStore{token: token})

		rec := doRequest(t, server, http.MethodPost, "/api/v1/tokens/analyze", `{"address":"token-addr"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token    models.Token         `json:"token"`
			Analysis models.TokenAnalysis `json:"analysis"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "SOL", resp.Token.Symbol)
		assert.Equal(t, 0.62, resp.Analysis.SentimentScore)
	})

	t.Run("upstream failure", func(t *testing.T) {
		service := &stubService{err: fmt.Errorf("%w: all sources failed", analysis.ErrUpstreamFailure)}
		server := newTestServer(service, &stubStore{token: token})
		rec := doRequest(t, server, http.MethodPost, "/api/v1/tokens/analyze", `{"address":"token-addr"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestPortfolioMetricsEndpoint(t *testing.T) {
	wallet := &models.Wallet{ID: "w1", Address: "wallet-addr"}
	service := &stubService{metrics: &models.PortfolioMetrics{
		TotalValue:  1000,
		DailyChange: 0.1,
		RiskLevel:   0.5,
	}}
	server := newTestServer(service, &stubStore{wallet: wallet})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/wallets/w1/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var metrics models.PortfolioMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, 1000.0, metrics.TotalValue)
	assert.Equal(t, 0.1, metrics.DailyChange)
}

func TestTransactionHistoryEndpoint(t *testing.T) {
	wallet := &models.Wallet{ID: "w1", Address: "wallet-addr"}

	t.Run("success", func(t *testing.T) {
		store := &stubStore{wallet: wallet, transactions: []models.Transaction{
			{Signature: "sig1", Amount: 1.5},
			{Signature: "sig2", Amount: 0.5},
		}}
		server := newTestServer(&stubService{}, store)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/wallets/w1/transactions", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var txs []models.Transaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
		require.Len(t, txs, 2)
		assert.Equal(t, "sig1", txs[0].Signature)
	})

	t.Run("invalid limit", func(t *testing.T) {
		server := newTestServer(&stubService{}, &stubStore{wallet: wallet})
		rec := doRequest(t, server, http.MethodGet, "/api/v1/wallets/w1/transactions?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		store := &stubStore{err: fmt.Errorf("%w: wallet w1", analysis.ErrNotFound)}
		server := newTestServer(&stubService{}, store)
		rec := doRequest(t, server, http.MethodGet, "/api/v1/wallets/w1/transactions", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&stubService{}, &stubStore{})
	rec := doRequest(t, server, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
