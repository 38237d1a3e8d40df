package model

// TransferState is the lifecycle state of a reporting transfer record.
//
// RESERVED is set on prepare; COMMITTED and ABORTED are terminal.
// EXPIRED exists for a timeout sweep owned by another service; no event
// consumed here ever produces it, but the value is kept for forward
// compatibility with that mechanism.
type TransferState string

const (
	TransferStateReserved  TransferState = "RESERVED"
	TransferStateCommitted TransferState = "COMMITTED"
	TransferStateAborted   TransferState = "ABORTED"
	TransferStateExpired   TransferState = "EXPIRED"
)

// FundsMovementType enumerates the six operator-ledger adjustment kinds.
// The credit/debit split below is the single taxonomy used both for
// opening-balance signs and for funds-in/funds-out classification of
// statement lines. The two must never diverge.
type FundsMovementType string

const (
	OperatorFundsDeposit                   FundsMovementType = "OPERATOR_FUNDS_DEPOSIT"
	OperatorFundsWithdrawal                FundsMovementType = "OPERATOR_FUNDS_WITHDRAWAL"
	MatrixSettledAutomaticAdjustmentCredit FundsMovementType = "MATRIX_SETTLED_AUTOMATIC_ADJUSTMENT_CREDIT"
	MatrixSettledAutomaticAdjustmentDebit  FundsMovementType = "MATRIX_SETTLED_AUTOMATIC_ADJUSTMENT_DEBIT"
	OperatorLiquidityAdjustmentCredit      FundsMovementType = "OPERATOR_LIQUIDITY_ADJUSTMENT_CREDIT"
	OperatorLiquidityAdjustmentDebit       FundsMovementType = "OPERATOR_LIQUIDITY_ADJUSTMENT_DEBIT"
)

// IsFundsIn reports whether the movement type credits the participant's
// settlement account.
func (t FundsMovementType) IsFundsIn() bool {
	switch t {
	case OperatorFundsDeposit, MatrixSettledAutomaticAdjustmentCredit, OperatorLiquidityAdjustmentCredit:
		return true
	}
	return false
}

// IsFundsOut reports whether the movement type debits the participant's
// settlement account.
func (t FundsMovementType) IsFundsOut() bool {
	switch t {
	case OperatorFundsWithdrawal, MatrixSettledAutomaticAdjustmentDebit, OperatorLiquidityAdjustmentDebit:
		return true
	}
	return false
}

// FundsMovementRequestState gates which movements count as reconciliation
// inputs. Only APPROVED movements contribute to balances.
type FundsMovementRequestState string

const (
	FundsMovementCreated  FundsMovementRequestState = "CREATED"
	FundsMovementApproved FundsMovementRequestState = "APPROVED"
	FundsMovementRejected FundsMovementRequestState = "REJECTED"
)
