package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"SettleReporting/internal/model"
	"SettleReporting/internal/query"
)

// handleSettlementStatement serves the reconciled DFSP statement, as JSON
// by default or CSV with format=csv.
func (s *Server) handleSettlementStatement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	participantID := q.Get("participantId")
	startDate, err := parseDate(q.Get("startDate"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: startDate: %v", model.ErrInvalidArgument, err))
		return
	}
	endDate, err := parseDate(q.Get("endDate"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: endDate: %v", model.ErrInvalidArgument, err))
		return
	}

	stmt, err := s.queries.GetSettlementStatement(r.Context(),
		participantID, startDate, endDate, q.Get("currencyCode"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if q.Get("format") == "csv" {
		s.writeStatementCSV(w, stmt)
		return
	}
	writeJSON(w, http.StatusOK, stmt)
}

func (s *Server) writeStatementCSV(w http.ResponseWriter, stmt *query.SettlementStatement) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="settlement-statement-%s.csv"`, stmt.ParticipantID))

	cw := csv.NewWriter(w)
	cw.Write([]string{
		"processDescription", "currencyCode", "transactionDate",
		"openingAmount", "amount", "fundsInAmount", "fundsOutAmount", "balance",
	})
	for _, line := range stmt.Lines {
		cw.Write([]string{
			line.ProcessDescription,
			line.StatementCurrencyCode,
			line.TransactionDate.UTC().Format(time.RFC3339),
			line.OpeningAmount.String(),
			line.Amount.String(),
			line.FundsInAmount.String(),
			line.FundsOutAmount.String(),
			line.Balance.String(),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.log.Error().Err(err).Msg("csv export failed")
	}
}

// parseDate accepts date-only or RFC3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
