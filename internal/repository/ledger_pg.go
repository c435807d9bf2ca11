package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rentyield/yieldgate/internal/ledger"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/shopspring/decimal"
)

// PostgresLedgerStore is the durable backing of a ledger instance.
// asset_records is append-only by construction: nothing here updates
// or deletes a row once inserted.
type PostgresLedgerStore struct {
	db *sqlx.DB
}

func NewPostgresLedgerStore(db *sqlx.DB) *PostgresLedgerStore {
	store := &PostgresLedgerStore{db: db}
	_ = store.ensureSchema(context.Background())
	return store
}

func (s *PostgresLedgerStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			principal NUMERIC NOT NULL,
			accrued_yield NUMERIC NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS asset_records (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			seq BIGINT NOT NULL,
			kind TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			description TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (account_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS ledger_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS share_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			user_bps BIGINT NOT NULL,
			platform_bps BIGINT NOT NULL,
			reserve_bps BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_asset_records_account ON asset_records(account_id, seq)`)
	return nil
}

func (s *PostgresLedgerStore) Load(ctx context.Context) (*ledger.State, error) {
	state := &ledger.State{
		Dust: decimal.Zero,
		Seqs: make(map[string]int64),
	}

	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, principal, accrued_yield, created_at FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var acct model.Account
		var principal, accrued string
		if err := rows.Scan(&acct.ID, &principal, &accrued, &acct.CreatedAt); err != nil {
			return nil, err
		}
		if acct.Principal, err = decimal.NewFromString(principal); err != nil {
			return nil, err
		}
		if acct.AccruedYield, err = decimal.NewFromString(accrued); err != nil {
			return nil, err
		}
		state.Accounts = append(state.Accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seqRows, err := s.db.QueryxContext(ctx,
		`SELECT account_id, MAX(seq) FROM asset_records GROUP BY account_id`)
	if err != nil {
		return nil, err
	}
	defer seqRows.Close()
	for seqRows.Next() {
		var id string
		var seq int64
		if err := seqRows.Scan(&id, &seq); err != nil {
			return nil, err
		}
		state.Seqs[id] = seq
	}
	if err := seqRows.Err(); err != nil {
		return nil, err
	}

	var dustStr string
	err = s.db.GetContext(ctx, &dustStr, `SELECT value FROM ledger_meta WHERE key = 'dust'`)
	switch {
	case err == nil:
		if state.Dust, err = decimal.NewFromString(dustStr); err != nil {
			return nil, err
		}
	case errors.Is(err, sql.ErrNoRows):
		// First boot.
	default:
		return nil, err
	}

	var shares model.ShareConfig
	err = s.db.QueryRowxContext(ctx,
		`SELECT user_bps, platform_bps, reserve_bps FROM share_config WHERE id = 1`).
		Scan(&shares.UserBps, &shares.PlatformBps, &shares.ReserveBps)
	switch {
	case err == nil:
		state.Shares = &shares
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, err
	}

	return state, nil
}

func (s *PostgresLedgerStore) Apply(ctx context.Context, b ledger.Batch) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, acct := range b.Accounts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, principal, accrued_yield, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				principal = EXCLUDED.principal,
				accrued_yield = EXCLUDED.accrued_yield
		`, acct.ID, acct.Principal.String(), acct.AccruedYield.String(), acct.CreatedAt); err != nil {
			return err
		}
	}

	for _, rec := range b.Records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO asset_records (id, account_id, seq, kind, amount, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, rec.ID, rec.AccountID, rec.Seq, string(rec.Kind), rec.Amount.String(), rec.Description, rec.CreatedAt); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_meta (key, value) VALUES ('dust', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, b.Dust.String()); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *PostgresLedgerStore) SaveShares(ctx context.Context, cfg model.ShareConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO share_config (id, user_bps, platform_bps, reserve_bps, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			user_bps = EXCLUDED.user_bps,
			platform_bps = EXCLUDED.platform_bps,
			reserve_bps = EXCLUDED.reserve_bps,
			updated_at = EXCLUDED.updated_at
	`, cfg.UserBps, cfg.PlatformBps, cfg.ReserveBps, time.Now().UTC())
	return err
}

func (s *PostgresLedgerStore) History(ctx context.Context, accountID string, limit, offset int) ([]model.AssetRecord, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, account_id, seq, kind, amount, description, created_at
		FROM asset_records
		WHERE account_id = $1
		ORDER BY seq ASC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.AssetRecord, 0, limit)
	for rows.Next() {
		var rec model.AssetRecord
		var kind, amount string
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Seq, &kind, &amount, &rec.Description, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Kind = model.RecordKind(kind)
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
