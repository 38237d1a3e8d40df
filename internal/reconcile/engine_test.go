package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"SettleReporting/internal/model"
)

func movement(t model.FundsMovementType, amount, currency string) model.FundsMovement {
	return model.FundsMovement{
		ID:           "fm-" + string(t),
		Type:         t,
		Amount:       decimal.RequireFromString(amount),
		CurrencyCode: currency,
		RequestState: model.FundsMovementApproved,
	}
}

func line(description, amount, currency string) model.SettlementStatementLine {
	return model.SettlementStatementLine{
		ProcessDescription:    description,
		Amount:                decimal.RequireFromString(amount),
		StatementCurrencyCode: currency,
		TransactionDate:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestOpeningBalanceSignedSum(t *testing.T) {
	movements := []model.FundsMovement{
		movement(model.OperatorFundsDeposit, "100", "USD"),
		movement(model.OperatorFundsWithdrawal, "30", "USD"),
	}
	lines := []model.SettlementStatementLine{
		line("TRANSFER", "10", "USD"),
	}

	if err := Reconcile(movements, lines); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got := lines[0].OpeningAmount; !got.Equal(decimal.RequireFromString("70")) {
		t.Errorf("opening amount = %s, want 70", got)
	}
}

func TestOpeningBalancePerCurrencyNotCumulative(t *testing.T) {
	movements := []model.FundsMovement{
		movement(model.OperatorLiquidityAdjustmentCredit, "40", "USD"),
		movement(model.MatrixSettledAutomaticAdjustmentDebit, "15", "EUR"),
	}
	lines := []model.SettlementStatementLine{
		line("TRANSFER", "1", "USD"),
		line("TRANSFER", "2", "USD"),
		line("TRANSFER", "3", "EUR"),
	}

	if err := Reconcile(movements, lines); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	for _, i := range []int{0, 1} {
		if !lines[i].OpeningAmount.Equal(decimal.RequireFromString("40")) {
			t.Errorf("USD line %d opening = %s, want 40", i, lines[i].OpeningAmount)
		}
	}
	if !lines[2].OpeningAmount.Equal(decimal.RequireFromString("-15")) {
		t.Errorf("EUR opening = %s, want -15", lines[2].OpeningAmount)
	}
}

func TestRunningBalanceSignConvention(t *testing.T) {
	lines := []model.SettlementStatementLine{
		line(string(model.OperatorFundsDeposit), "50", "USD"),
	}

	if err := Reconcile(nil, lines); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !lines[0].OpeningAmount.IsZero() {
		t.Errorf("opening = %s, want 0", lines[0].OpeningAmount)
	}
	if !lines[0].FundsInAmount.Equal(decimal.RequireFromString("50")) {
		t.Errorf("fundsIn = %s, want 50", lines[0].FundsInAmount)
	}
	if !lines[0].Balance.Equal(decimal.RequireFromString("-50")) {
		t.Errorf("balance = %s, want -50", lines[0].Balance)
	}
}

func TestCurrencyBoundaryReset(t *testing.T) {
	movements := []model.FundsMovement{
		movement(model.OperatorFundsDeposit, "10", "USD"),
		movement(model.OperatorFundsDeposit, "5", "EUR"),
	}
	lines := []model.SettlementStatementLine{
		line(string(model.OperatorFundsDeposit), "100", "USD"),
		line(string(model.OperatorFundsWithdrawal), "20", "USD"),
		line("TRANSFER", "999", "EUR"),
	}

	if err := Reconcile(movements, lines); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	// USD: 10 opening, +100, then -20.
	if !lines[0].Balance.Equal(decimal.RequireFromString("-110")) {
		t.Errorf("line1 balance = %s, want -110", lines[0].Balance)
	}
	if !lines[1].Balance.Equal(decimal.RequireFromString("-90")) {
		t.Errorf("line2 balance = %s, want -90", lines[1].Balance)
	}
	// EUR resets to its own opening of 5; the unclassified line adds nothing.
	if !lines[2].Balance.Equal(decimal.RequireFromString("-5")) {
		t.Errorf("line3 balance = %s, want -5", lines[2].Balance)
	}
}

func TestClassificationExclusivity(t *testing.T) {
	descriptions := []string{
		string(model.OperatorFundsDeposit),
		string(model.OperatorFundsWithdrawal),
		string(model.MatrixSettledAutomaticAdjustmentCredit),
		string(model.MatrixSettledAutomaticAdjustmentDebit),
		string(model.OperatorLiquidityAdjustmentCredit),
		string(model.OperatorLiquidityAdjustmentDebit),
		"TRANSFER",
	}

	var lines []model.SettlementStatementLine
	for _, d := range descriptions {
		lines = append(lines, line(d, "7", "USD"))
	}

	if err := Reconcile(nil, lines); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	for _, l := range lines {
		if !l.FundsInAmount.IsZero() && !l.FundsOutAmount.IsZero() {
			t.Errorf("line %q has both fundsIn %s and fundsOut %s", l.ProcessDescription, l.FundsInAmount, l.FundsOutAmount)
		}
	}
	// The unmatched description contributes to neither side.
	last := lines[len(lines)-1]
	if !last.FundsInAmount.IsZero() || !last.FundsOutAmount.IsZero() {
		t.Errorf("unclassified line got fundsIn %s fundsOut %s", last.FundsInAmount, last.FundsOutAmount)
	}
}

func TestNonContiguousCurrenciesRejected(t *testing.T) {
	lines := []model.SettlementStatementLine{
		line("TRANSFER", "1", "USD"),
		line("TRANSFER", "2", "EUR"),
		line("TRANSFER", "3", "USD"),
	}

	err := Reconcile(nil, lines)
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestEmptyInputs(t *testing.T) {
	if err := Reconcile(nil, nil); err != nil {
		t.Fatalf("Reconcile on empty input: %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	movements := []model.FundsMovement{
		movement(model.OperatorFundsDeposit, "33.33", "USD"),
		movement(model.OperatorLiquidityAdjustmentDebit, "3.33", "USD"),
	}
	build := func() []model.SettlementStatementLine {
		return []model.SettlementStatementLine{
			line(string(model.OperatorFundsDeposit), "10.01", "USD"),
			line(string(model.OperatorFundsWithdrawal), "0.01", "USD"),
		}
	}

	first := build()
	second := build()
	if err := Reconcile(movements, first); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if err := Reconcile(movements, second); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	for i := range first {
		if !first[i].Balance.Equal(second[i].Balance) {
			t.Errorf("line %d balances differ: %s vs %s", i, first[i].Balance, second[i].Balance)
		}
	}
}
