// Package reconcile computes per-currency opening balances and running
// balances for DFSP settlement statements. Pure computation: no I/O, no
// persistence, a total function of its inputs.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"SettleReporting/internal/model"
)

// Reconcile fills the computed fields of every statement line in place:
// openingAmount, fundsInAmount, fundsOutAmount and balance.
//
// movements must be pre-filtered to APPROVED requests within the as-of
// cutoff; lines must be grouped contiguously by currency code. The
// grouping is verified up front and a violation returns
// model.ErrInvalidArgument rather than producing wrong balances.
//
// The returned balance is the negation of the internal running total:
// participant positions are expressed as the negative of the operator's
// ledger accumulation. Callers depend on that sign convention.
func Reconcile(movements []model.FundsMovement, lines []model.SettlementStatementLine) error {
	if err := checkCurrencyContiguity(lines); err != nil {
		return err
	}

	openings := openingBalances(movements)

	classify(lines)

	var balance decimal.Decimal
	previousCurrency := ""
	for i := range lines {
		line := &lines[i]
		line.OpeningAmount = openings[line.StatementCurrencyCode]

		if line.StatementCurrencyCode != previousCurrency {
			balance = line.OpeningAmount
			previousCurrency = line.StatementCurrencyCode
		}

		balance = balance.Add(line.FundsInAmount).Sub(line.FundsOutAmount)
		line.Balance = balance.Neg()
	}
	return nil
}

// openingBalances folds the movements into one signed sum per currency.
// Credits add, debits subtract. Movement order is irrelevant.
func openingBalances(movements []model.FundsMovement) map[string]decimal.Decimal {
	openings := make(map[string]decimal.Decimal)
	for _, m := range movements {
		sum := openings[m.CurrencyCode]
		switch {
		case m.Type.IsFundsIn():
			sum = sum.Add(m.Amount)
		case m.Type.IsFundsOut():
			sum = sum.Sub(m.Amount)
		}
		openings[m.CurrencyCode] = sum
	}
	return openings
}

// classify sets fundsInAmount/fundsOutAmount from the line's process
// description. Descriptions that name no funds-movement type (plain ledger
// entries) leave both amounts zero. The taxonomy is the same one the
// opening-balance fold uses, by construction.
func classify(lines []model.SettlementStatementLine) {
	for i := range lines {
		line := &lines[i]
		t := model.FundsMovementType(line.ProcessDescription)
		switch {
		case t.IsFundsIn():
			line.FundsInAmount = line.Amount
			line.FundsOutAmount = decimal.Zero
		case t.IsFundsOut():
			line.FundsInAmount = decimal.Zero
			line.FundsOutAmount = line.Amount
		}
	}
}

// checkCurrencyContiguity rejects inputs where a currency code reappears
// after a different one was seen. The boundary-reset logic in Reconcile is
// only correct on contiguously grouped input.
func checkCurrencyContiguity(lines []model.SettlementStatementLine) error {
	seen := make(map[string]bool)
	previous := ""
	for _, line := range lines {
		code := line.StatementCurrencyCode
		if code == previous {
			continue
		}
		if seen[code] {
			return fmt.Errorf("%w: statement lines not grouped by currency, %q reappears", model.ErrInvalidArgument, code)
		}
		seen[code] = true
		previous = code
	}
	return nil
}
