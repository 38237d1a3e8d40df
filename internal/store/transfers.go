package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"SettleReporting/internal/model"
)

// AddTransfer inserts a new transfer record. The transfer id carries a
// unique index, so a redelivered prepare surfaces as ErrAlreadyExists and
// the first-written record wins.
func (s *Store) AddTransfer(ctx context.Context, rec *model.TransferRecord) error {
	extJSON, errJSON, err := marshalTransferDocs(rec)
	if err != nil {
		return fmt.Errorf("add transfer: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transfers (
			transfer_id, payer_fsp_id, payee_fsp_id, amount, currency_code,
			settlement_model, transfer_state, fulfilment, extension_list,
			error_info, created_at, updated_at, prepared_at, expiration_at,
			fulfiled_at, completed_at, batch_id, batch_name, journal_entry_id,
			matrix_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		rec.TransferID, rec.PayerFspID, rec.PayeeFspID, rec.Amount.String(),
		rec.CurrencyCode, rec.SettlementModel, string(rec.TransferState),
		rec.Fulfilment, extJSON, errJSON, rec.CreatedAt, rec.UpdatedAt,
		rec.PreparedAt, rec.ExpirationAt, rec.FulfiledAt, rec.CompletedAt,
		rec.BatchID, rec.BatchName, rec.JournalEntryID, rec.MatrixID,
	)
	if err != nil {
		return s.wrapErr("add_transfer", err)
	}
	return nil
}

// GetTransferByID returns model.ErrNotFound when no record exists.
func (s *Store) GetTransferByID(ctx context.Context, transferID string) (*model.TransferRecord, error) {
	row := s.db.QueryRowContext(ctx, transferSelect+` WHERE transfer_id = $1`, transferID)
	rec, err := scanTransfer(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transfer %s: %w", transferID, model.ErrNotFound)
	}
	if err != nil {
		return nil, s.wrapErr("get_transfer", err)
	}
	return rec, nil
}

// UpdateTransfer overwrites the mutable fields of an existing record.
// Immutable identity fields (payer, payee, amount, currency) are left as
// written by the prepare.
func (s *Store) UpdateTransfer(ctx context.Context, rec *model.TransferRecord) error {
	extJSON, errJSON, err := marshalTransferDocs(rec)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transfers SET
			transfer_state   = $2,
			fulfilment       = $3,
			extension_list   = $4,
			error_info       = $5,
			updated_at       = $6,
			fulfiled_at      = $7,
			completed_at     = $8,
			batch_id         = $9,
			batch_name       = $10,
			journal_entry_id = $11,
			matrix_id        = $12
		WHERE transfer_id = $1`,
		rec.TransferID, string(rec.TransferState), rec.Fulfilment, extJSON,
		errJSON, rec.UpdatedAt, rec.FulfiledAt, rec.CompletedAt,
		rec.BatchID, rec.BatchName, rec.JournalEntryID, rec.MatrixID,
	)
	if err != nil {
		return s.wrapErr("update_transfer", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.wrapErr("update_transfer", err)
	}
	if n == 0 {
		return fmt.Errorf("transfer %s: %w", rec.TransferID, model.ErrNotFound)
	}
	return nil
}

// ListTransfers returns records filtered by the optional payer and payee
// fsp ids, newest first.
func (s *Store) ListTransfers(ctx context.Context, payerFspID, payeeFspID string, limit int) ([]model.TransferRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, transferSelect+`
		WHERE ($1 = '' OR payer_fsp_id = $1)
		  AND ($2 = '' OR payee_fsp_id = $2)
		ORDER BY prepared_at DESC
		LIMIT $3`,
		payerFspID, payeeFspID, limit,
	)
	if err != nil {
		return nil, s.wrapErr("list_transfers", err)
	}
	defer rows.Close()

	var out []model.TransferRecord
	for rows.Next() {
		rec, err := scanTransfer(rows)
		if err != nil {
			return nil, s.wrapErr("list_transfers", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrapErr("list_transfers", err)
	}
	return out, nil
}

const transferSelect = `
	SELECT transfer_id, payer_fsp_id, payee_fsp_id, amount, currency_code,
	       settlement_model, transfer_state, fulfilment, extension_list,
	       error_info, created_at, updated_at, prepared_at, expiration_at,
	       fulfiled_at, completed_at, batch_id, batch_name, journal_entry_id,
	       matrix_id
	FROM transfers`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*model.TransferRecord, error) {
	var (
		rec       model.TransferRecord
		amount    string
		state     string
		extJSON   []byte
		errJSON   []byte
		fulfilRaw sql.NullString
	)
	err := row.Scan(
		&rec.TransferID, &rec.PayerFspID, &rec.PayeeFspID, &amount,
		&rec.CurrencyCode, &rec.SettlementModel, &state, &fulfilRaw,
		&extJSON, &errJSON, &rec.CreatedAt, &rec.UpdatedAt, &rec.PreparedAt,
		&rec.ExpirationAt, &rec.FulfiledAt, &rec.CompletedAt, &rec.BatchID,
		&rec.BatchName, &rec.JournalEntryID, &rec.MatrixID,
	)
	if err != nil {
		return nil, err
	}

	rec.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	rec.TransferState = model.TransferState(state)
	if fulfilRaw.Valid {
		rec.Fulfilment = &fulfilRaw.String
	}
	if len(extJSON) > 0 {
		rec.ExtensionList = &model.ExtensionList{}
		if err := json.Unmarshal(extJSON, rec.ExtensionList); err != nil {
			return nil, fmt.Errorf("decode extension list: %w", err)
		}
	}
	if len(errJSON) > 0 {
		rec.ErrorInfo = &model.ErrorInformation{}
		if err := json.Unmarshal(errJSON, rec.ErrorInfo); err != nil {
			return nil, fmt.Errorf("decode error information: %w", err)
		}
	}
	return &rec, nil
}

func marshalTransferDocs(rec *model.TransferRecord) (extJSON, errJSON []byte, err error) {
	if rec.ExtensionList != nil {
		extJSON, err = json.Marshal(rec.ExtensionList)
		if err != nil {
			return nil, nil, fmt.Errorf("encode extension list: %w", err)
		}
	}
	if rec.ErrorInfo != nil {
		errJSON, err = json.Marshal(rec.ErrorInfo)
		if err != nil {
			return nil, nil, fmt.Errorf("encode error information: %w", err)
		}
	}
	return extJSON, errJSON, nil
}
