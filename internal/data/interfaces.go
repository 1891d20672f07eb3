package data

import (
	"context"
	"time"

	"github.com/ethan-cdwll/insight/internal/models"
)

// MarketDataSource 负责从外部行情源拉取历史数据
type MarketDataSource interface {
	// Name identifies the source in logs.
	Name() string

	// FetchSeries retrieves the price/volume history for a token over the
	// lookback window, ordered by timestamp ASC.
	FetchSeries(ctx context.Context, tokenAddress string, lookback time.Duration) (models.TokenSeries, error)
}

// MetricsProvider 外部定性评分源（社交/新闻）
type MetricsProvider interface {
	// Name identifies the provider in logs.
	Name() string

	// Score returns a sentiment score in [0,1] for the token.
	Score(ctx context.Context, tokenAddress string) (float64, error)
}

// Storage 处理钱包/代币/交易记录的持久化
type Storage interface {
	// SaveWallet stores or updates a wallet snapshot.
	SaveWallet(ctx context.Context, wallet *models.Wallet) error

	// GetWallet retrieves a wallet by ID. Returns ErrNotFound if not exists.
	GetWallet(ctx context.Context, id string) (*models.Wallet, error)

	// GetWalletByAddress retrieves a wallet by chain address.
	GetWalletByAddress(ctx context.Context, address string) (*models.Wallet, error)

	// SaveToken stores or updates token metadata.
	SaveToken(ctx context.Context, token *models.Token) error

	// GetToken retrieves token metadata by address. Returns ErrNotFound if not exists.
	GetToken(ctx context.Context, address string) (*models.Token, error)

	// SaveTransactions stores transaction records for a wallet.
	SaveTransactions(ctx context.Context, walletID string, txs []models.Transaction) error

	// GetTransactions retrieves transactions for a wallet, newest first.
	GetTransactions(ctx context.Context, walletID string, limit int) ([]models.Transaction, error)
}
