package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"SettleReporting/internal/model"
)

// UpsertParticipant overwrites the participant row and replaces its funds
// movements in one transaction. The registry snapshot is authoritative, so
// replacement (not merge) keeps the read model from accumulating movements
// the registry no longer reports.
func (s *Store) UpsertParticipant(ctx context.Context, p *model.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrapErr("upsert_participant", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO participants (id, name, is_active, created_date)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET
			name         = EXCLUDED.name,
			is_active    = EXCLUDED.is_active,
			created_date = EXCLUDED.created_date`,
		p.ID, p.Name, p.IsActive, p.CreatedDate,
	)
	if err != nil {
		return s.wrapErr("upsert_participant", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM funds_movements WHERE participant_id = $1`, p.ID,
	); err != nil {
		return s.wrapErr("upsert_participant", err)
	}

	for _, fm := range p.FundsMovements {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO funds_movements (
				id, participant_id, movement_type, amount, currency_code,
				request_state, approved_date
			) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			fm.ID, p.ID, string(fm.Type), fm.Amount.String(),
			fm.CurrencyCode, string(fm.RequestState), fm.ApprovedDate,
		)
		if err != nil {
			return s.wrapErr("upsert_participant", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.wrapErr("upsert_participant", err)
	}
	return nil
}

// GetFundsMovements returns the participant's APPROVED movements approved
// strictly before asOf, optionally restricted to one currency. These are
// the opening-balance inputs of the reconciliation engine; the boundary is
// exclusive so a movement approved exactly at a statement's range start
// appears only as a statement line, never in the opening balance too.
func (s *Store) GetFundsMovements(ctx context.Context, participantID string, asOf time.Time, currencyCode string) ([]model.FundsMovement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, participant_id, movement_type, amount, currency_code,
		       request_state, approved_date
		FROM funds_movements
		WHERE participant_id = $1
		  AND request_state = 'APPROVED'
		  AND approved_date IS NOT NULL
		  AND approved_date < $2
		  AND ($3 = '' OR currency_code = $3)
		ORDER BY approved_date`,
		participantID, asOf, currencyCode,
	)
	if err != nil {
		return nil, s.wrapErr("get_funds_movements", err)
	}
	defer rows.Close()

	var out []model.FundsMovement
	for rows.Next() {
		var (
			fm     model.FundsMovement
			mtype  string
			amount string
			state  string
		)
		if err := rows.Scan(&fm.ID, &fm.ParticipantID, &mtype, &amount,
			&fm.CurrencyCode, &state, &fm.ApprovedDate); err != nil {
			return nil, s.wrapErr("get_funds_movements", err)
		}
		fm.Type = model.FundsMovementType(mtype)
		fm.RequestState = model.FundsMovementRequestState(state)
		if fm.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse movement amount %q: %w", amount, err)
		}
		out = append(out, fm)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("get_funds_movements", err)
	}
	return out, nil
}

// GetStatementLines assembles the raw statement lines for a participant in
// a date range: its approved funds movements plus the settled transfers it
// took part in. Ordered by currency code then transaction date, which the
// reconciliation engine requires.
func (s *Store) GetStatementLines(ctx context.Context, participantID string, startDate, endDate time.Time, currencyCode string) ([]model.SettlementStatementLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT movement_type AS process_description, amount, currency_code,
		       approved_date AS transaction_date
		FROM funds_movements
		WHERE participant_id = $1
		  AND request_state = 'APPROVED'
		  AND approved_date IS NOT NULL
		  AND approved_date >= $2 AND approved_date <= $3
		  AND ($4 = '' OR currency_code = $4)
		UNION ALL
		SELECT 'TRANSFER ' || batch_name AS process_description, amount,
		       currency_code, completed_at AS transaction_date
		FROM transfers
		WHERE (payer_fsp_id = $1 OR payee_fsp_id = $1)
		  AND transfer_state = 'COMMITTED'
		  AND matrix_id <> ''
		  AND completed_at IS NOT NULL
		  AND completed_at >= $2 AND completed_at <= $3
		  AND ($4 = '' OR currency_code = $4)
		ORDER BY currency_code, transaction_date`,
		participantID, startDate, endDate, currencyCode,
	)
	if err != nil {
		return nil, s.wrapErr("get_statement_lines", err)
	}
	defer rows.Close()

	var out []model.SettlementStatementLine
	for rows.Next() {
		var (
			line   model.SettlementStatementLine
			amount string
		)
		if err := rows.Scan(&line.ProcessDescription, &amount,
			&line.StatementCurrencyCode, &line.TransactionDate); err != nil {
			return nil, s.wrapErr("get_statement_lines", err)
		}
		if line.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse line amount %q: %w", amount, err)
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("get_statement_lines", err)
	}
	return out, nil
}
