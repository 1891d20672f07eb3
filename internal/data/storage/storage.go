package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ethan-cdwll/insight/internal/analysis"
	"github.com/ethan-cdwll/insight/internal/models"
)

// PostgresStorage persists wallets, token metadata and transactions.
// Analysis results are never stored; they are recomputed per request.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(connStr string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStorage{db: db}

	if err := s.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return s, nil
}

// SaveWallet implements data.Storage.
func (s *PostgresStorage) SaveWallet(ctx context.Context, wallet *models.Wallet) error {
	tokens, err := json.Marshal(wallet.Tokens)
	if err != nil {
		return fmt.Errorf("failed to encode wallet tokens: %w", err)
	}

	query := `
        INSERT INTO wallets (
            id, address, total_value_usd, tokens, risk_score, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7
        )
        ON CONFLICT (id) DO UPDATE SET
            total_value_usd = EXCLUDED.total_value_usd,
            tokens = EXCLUDED.tokens,
            risk_score = EXCLUDED.risk_score,
            updated_at = EXCLUDED.updated_at
    `

	_, err = s.db.ExecContext(ctx, query,
		wallet.ID,
		wallet.Address,
		wallet.TotalValueUSD,
		tokens,
		wallet.RiskScore,
		wallet.CreatedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}

	return nil
}

// GetWallet implements data.Storage.
func (s *PostgresStorage) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	return s.getWallet(ctx, "id", id)
}

// GetWalletByAddress implements data.Storage.
func (s *PostgresStorage) GetWalletByAddress(ctx context.Context, address string) (*models.Wallet, error) {
	return s.getWallet(ctx, "address", address)
}

func (s *PostgresStorage) getWallet(ctx context.Context, column, value string) (*models.Wallet, error) {
	query := fmt.Sprintf(`
        SELECT id, address, total_value_usd, tokens, risk_score, created_at, updated_at
        FROM wallets
        WHERE %s = $1
    `, column)

	var wallet models.Wallet
	var tokens []byte

	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&wallet.ID,
		&wallet.Address,
		&wallet.TotalValueUSD,
		&tokens,
		&wallet.RiskScore,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: wallet %s", analysis.ErrNotFound, value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if err := json.Unmarshal(tokens, &wallet.Tokens); err != nil {
		return nil, fmt.Errorf("failed to decode wallet tokens: %w", err)
	}

	return &wallet, nil
}

// SaveToken implements data.Storage.
func (s *PostgresStorage) SaveToken(ctx context.Context, token *models.Token) error {
	query := `
        INSERT INTO tokens (
            address, symbol, name, decimals, total_supply,
            price_usd, market_cap_usd, volume_24h, price_change_24h, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
        )
        ON CONFLICT (address) DO UPDATE SET
            symbol = EXCLUDED.symbol,
            name = EXCLUDED.name,
            decimals = EXCLUDED.decimals,
            total_supply = EXCLUDED.total_supply,
            price_usd = EXCLUDED.price_usd,
            market_cap_usd = EXCLUDED.market_cap_usd,
            volume_24h = EXCLUDED.volume_24h,
            price_change_24h = EXCLUDED.price_change_24h,
            updated_at = EXCLUDED.updated_at
    `

	_, err := s.db.ExecContext(ctx, query,
		token.Address,
		token.Symbol,
		token.Name,
		token.Decimals,
		token.TotalSupply,
		token.PriceUSD,
		token.MarketCapUSD,
		token.Volume24h,
		token.PriceChange24h,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// GetToken implements data.Storage.
func (s *PostgresStorage) GetToken(ctx context.Context, address string) (*models.Token, error) {
	query := `
        SELECT address, symbol, name, decimals, total_supply,
               price_usd, market_cap_usd, volume_24h, price_change_24h
        FROM tokens
        WHERE address = $1
    `

	var token models.Token
	err := s.db.QueryRowContext(ctx, query, address).Scan(
		&token.Address,
		&token.Symbol,
		&token.Name,
		&token.Decimals,
		&token.TotalSupply,
		&token.PriceUSD,
		&token.MarketCapUSD,
		&token.Volume24h,
		&token.PriceChange24h,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: token %s", analysis.ErrNotFound, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}

// SaveTransactions implements data.Storage.
func (s *PostgresStorage) SaveTransactions(ctx context.Context, walletID string, txs []models.Transaction) error {
	query := `
        INSERT INTO transactions (
            signature, wallet_id, block_time, success,
            from_address, to_address, amount, token_address, fee
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        )
        ON CONFLICT (signature) DO NOTHING
    `

	for _, tx := range txs {
		_, err := s.db.ExecContext(ctx, query,
			tx.Signature,
			walletID,
			tx.BlockTime,
			tx.Success,
			tx.FromAddress,
			tx.ToAddress,
			tx.Amount,
			tx.TokenAddress,
			tx.Fee,
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", tx.Signature, err)
		}
	}

	return nil
}

// GetTransactions implements data.Storage.
func (s *PostgresStorage) GetTransactions(ctx context.Context, walletID string, limit int) ([]models.Transaction, error) {
	query := `
        SELECT signature, block_time, success, from_address,
               to_address, amount, token_address, fee
        FROM transactions
        WHERE wallet_id = $1
        ORDER BY block_time DESC
        LIMIT $2
    `

	rows, err := s.db.QueryContext(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.Signature,
			&tx.BlockTime,
			&tx.Success,
			&tx.FromAddress,
			&tx.ToAddress,
			&tx.Amount,
			&tx.TokenAddress,
			&tx.Fee,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		result = append(result, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return result, nil
}

func (s *PostgresStorage) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS wallets (
			id VARCHAR(64) PRIMARY KEY,
			address VARCHAR(100) UNIQUE NOT NULL,
			total_value_usd NUMERIC(24, 8),
			tokens JSONB NOT NULL DEFAULT '[]',
			risk_score NUMERIC(10, 6),
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS tokens (
			address VARCHAR(100) PRIMARY KEY,
			symbol VARCHAR(50),
			name VARCHAR(100),
			decimals SMALLINT,
			total_supply NUMERIC(32, 0),
			price_usd NUMERIC(24, 12),
			market_cap_usd NUMERIC(24, 4),
			volume_24h NUMERIC(24, 4),
			price_change_24h NUMERIC(12, 6),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			signature VARCHAR(128) PRIMARY KEY,
			wallet_id VARCHAR(64) NOT NULL,
			block_time TIMESTAMP NOT NULL,
			success BOOLEAN NOT NULL,
			from_address VARCHAR(100),
			to_address VARCHAR(100),
			amount NUMERIC(32, 12),
			token_address VARCHAR(100),
			fee NUMERIC(20, 0)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}
