package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"SettleReporting/internal/model"
)

// UpsertBatch overwrites the whole batch document keyed by id.
func (s *Store) UpsertBatch(ctx context.Context, batch *model.SettlementBatch) error {
	accountsJSON, err := json.Marshal(batch.Accounts)
	if err != nil {
		return fmt.Errorf("encode batch accounts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settlement_batches (
			id, ts, settlement_model, currency_code, batch_name,
			batch_sequence, state, accounts
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			ts               = EXCLUDED.ts,
			settlement_model = EXCLUDED.settlement_model,
			currency_code    = EXCLUDED.currency_code,
			batch_name       = EXCLUDED.batch_name,
			batch_sequence   = EXCLUDED.batch_sequence,
			state            = EXCLUDED.state,
			accounts         = EXCLUDED.accounts`,
		batch.ID, batch.Timestamp, batch.SettlementModel, batch.CurrencyCode,
		batch.BatchName, batch.BatchSequence, batch.State, accountsJSON,
	)
	if err != nil {
		return s.wrapErr("upsert_batch", err)
	}
	return nil
}

// UpsertMatrix overwrites the whole matrix document keyed by id.
func (s *Store) UpsertMatrix(ctx context.Context, matrix *model.SettlementMatrix) error {
	batchesJSON, err := json.Marshal(matrix.Batches)
	if err != nil {
		return fmt.Errorf("encode matrix batches: %w", err)
	}
	balancesJSON, err := json.Marshal(matrix.ParticipantBalances)
	if err != nil {
		return fmt.Errorf("encode matrix balances: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settlement_matrices (
			id, created_at, updated_at, date_from, date_to, currency_code,
			settlement_model, state, matrix_type, batches,
			participant_balances, total_debit_balance, total_credit_balance
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			updated_at           = EXCLUDED.updated_at,
			date_from            = EXCLUDED.date_from,
			date_to              = EXCLUDED.date_to,
			currency_code        = EXCLUDED.currency_code,
			settlement_model     = EXCLUDED.settlement_model,
			state                = EXCLUDED.state,
			matrix_type          = EXCLUDED.matrix_type,
			batches              = EXCLUDED.batches,
			participant_balances = EXCLUDED.participant_balances,
			total_debit_balance  = EXCLUDED.total_debit_balance,
			total_credit_balance = EXCLUDED.total_credit_balance`,
		matrix.ID, matrix.CreatedAt, matrix.UpdatedAt, matrix.DateFrom,
		matrix.DateTo, matrix.CurrencyCode, matrix.SettlementModel,
		matrix.State, matrix.Type, batchesJSON, balancesJSON,
		matrix.TotalDebitBalance.String(), matrix.TotalCreditBalance.String(),
	)
	if err != nil {
		return s.wrapErr("upsert_matrix", err)
	}
	return nil
}

// GetMatrixByID returns model.ErrNotFound when no matrix exists.
func (s *Store) GetMatrixByID(ctx context.Context, matrixID string) (*model.SettlementMatrix, error) {
	row := s.db.QueryRowContext(ctx, matrixSelect+` WHERE id = $1`, matrixID)
	m, err := scanMatrix(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("matrix %s: %w", matrixID, model.ErrNotFound)
	}
	if err != nil {
		return nil, s.wrapErr("get_matrix", err)
	}
	return m, nil
}

// ListMatrices returns matrices filtered by optional state, newest first.
func (s *Store) ListMatrices(ctx context.Context, state string, limit int) ([]model.SettlementMatrix, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, matrixSelect+`
		WHERE ($1 = '' OR state = $1)
		ORDER BY created_at DESC
		LIMIT $2`,
		state, limit,
	)
	if err != nil {
		return nil, s.wrapErr("list_matrices", err)
	}
	defer rows.Close()

	var out []model.SettlementMatrix
	for rows.Next() {
		m, err := scanMatrix(rows)
		if err != nil {
			return nil, s.wrapErr("list_matrices", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("list_matrices", err)
	}
	return out, nil
}

const matrixSelect = `
	SELECT id, created_at, updated_at, date_from, date_to, currency_code,
	       settlement_model, state, matrix_type, batches,
	       participant_balances, total_debit_balance, total_credit_balance
	FROM settlement_matrices`

func scanMatrix(row rowScanner) (*model.SettlementMatrix, error) {
	var (
		m            model.SettlementMatrix
		batchesJSON  []byte
		balancesJSON []byte
		totalDebit   string
		totalCredit  string
	)
	err := row.Scan(
		&m.ID, &m.CreatedAt, &m.UpdatedAt, &m.DateFrom, &m.DateTo,
		&m.CurrencyCode, &m.SettlementModel, &m.State, &m.Type,
		&batchesJSON, &balancesJSON, &totalDebit, &totalCredit,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(batchesJSON, &m.Batches); err != nil {
		return nil, fmt.Errorf("decode matrix batches: %w", err)
	}
	if err := json.Unmarshal(balancesJSON, &m.ParticipantBalances); err != nil {
		return nil, fmt.Errorf("decode matrix balances: %w", err)
	}
	if m.TotalDebitBalance, err = decimal.NewFromString(totalDebit); err != nil {
		return nil, fmt.Errorf("parse total debit %q: %w", totalDebit, err)
	}
	if m.TotalCreditBalance, err = decimal.NewFromString(totalCredit); err != nil {
		return nil, fmt.Errorf("parse total credit %q: %w", totalCredit, err)
	}
	return &m, nil
}
