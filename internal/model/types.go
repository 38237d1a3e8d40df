package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorInformation carries the scheme error attached to an aborted transfer.
type ErrorInformation struct {
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
}

// ExtensionList is the opaque key/value extension block forwarded from the
// fulfilment. Stored as-is, never interpreted.
type ExtensionList struct {
	Extension []ExtensionItem `json:"extension"`
}

type ExtensionItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TransferRecord is the denormalized reporting view of a transfer.
// transferId is the unique business key. The record is created on prepare,
// mutated on fulfil/reject and again when settlement linkage is learned,
// and never deleted; history lives in the state field.
type TransferRecord struct {
	TransferID      string            `json:"transferId"`
	PayerFspID      string            `json:"payerFspId"`
	PayeeFspID      string            `json:"payeeFspId"`
	Amount          decimal.Decimal   `json:"amount"`
	CurrencyCode    string            `json:"currencyCode"`
	SettlementModel string            `json:"settlementModel"`
	TransferState   TransferState     `json:"transferState"`
	Fulfilment      *string           `json:"fulfilment"`
	ExtensionList   *ExtensionList    `json:"extensionList"`
	ErrorInfo       *ErrorInformation `json:"errorInformation"`

	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	PreparedAt   time.Time  `json:"preparedAt"`
	ExpirationAt *time.Time `json:"expirationTimestamp"`
	FulfiledAt   *time.Time `json:"fulfiledAt"`
	CompletedAt  *time.Time `json:"completedTimestamp"`

	// Settlement linkage, empty until a matrix-settled event correlates
	// this transfer with its settlement batch.
	BatchID        string `json:"batchId"`
	BatchName      string `json:"batchName"`
	JournalEntryID string `json:"journalEntryId"`
	MatrixID       string `json:"matrixId"`
}

// SettlementBatchAccount is one participant ledger account inside a batch.
type SettlementBatchAccount struct {
	AccountExtID  string          `json:"accountExtId"`
	ParticipantID string          `json:"participantId"`
	CurrencyCode  string          `json:"currencyCode"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
}

// SettlementBatch is one currency/participant-group subdivision of a
// settlement matrix. The id is the unique business key; the whole document
// is overwritten on every upsert.
type SettlementBatch struct {
	ID              string                   `json:"id"`
	Timestamp       time.Time                `json:"timestamp"`
	SettlementModel string                   `json:"settlementModel"`
	CurrencyCode    string                   `json:"currencyCode"`
	BatchName       string                   `json:"batchName"`
	BatchSequence   int                      `json:"batchSequence"`
	State           string                   `json:"state"`
	Accounts        []SettlementBatchAccount `json:"accounts"`
}

// SettlementMatrixBatchRef is the per-batch summary row embedded in a matrix.
type SettlementMatrixBatchRef struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	BatchDebitBalance  decimal.Decimal `json:"batchDebitBalance"`
	BatchCreditBalance decimal.Decimal `json:"batchCreditBalance"`
	State              string          `json:"state"`
}

// SettlementMatrixParticipantBalance is a per-participant net position row.
type SettlementMatrixParticipantBalance struct {
	ParticipantID string          `json:"participantId"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// SettlementMatrix aggregates batches and per-participant balances for one
// settlement cycle. Upserted whole on every matrix-settled event; replays
// must converge to the same document.
type SettlementMatrix struct {
	ID                  string                               `json:"id"`
	CreatedAt           time.Time                            `json:"createdAt"`
	UpdatedAt           time.Time                            `json:"updatedAt"`
	DateFrom            *time.Time                           `json:"dateFrom"`
	DateTo              *time.Time                           `json:"dateTo"`
	CurrencyCode        string                               `json:"currencyCode"`
	SettlementModel     string                               `json:"settlementModel"`
	State               string                               `json:"state"`
	Type                string                               `json:"type"`
	Batches             []SettlementMatrixBatchRef           `json:"batches"`
	ParticipantBalances []SettlementMatrixParticipantBalance `json:"participantBalances"`
	TotalDebitBalance   decimal.Decimal                      `json:"totalDebitBalance"`
	TotalCreditBalance  decimal.Decimal                      `json:"totalCreditBalance"`
}

// BatchTransferCorrelation links a transfer to the settlement batch and
// journal entry that settled it.
type BatchTransferCorrelation struct {
	TransferID     string `json:"transferId"`
	BatchID        string `json:"batchId"`
	BatchName      string `json:"batchName"`
	JournalEntryID string `json:"journalEntryId"`
	MatrixID       string `json:"matrixId"`
}

// FundsMovement is an operator-initiated ledger adjustment for a participant.
// Only APPROVED movements are reconciliation inputs.
type FundsMovement struct {
	ID            string                    `json:"id"`
	ParticipantID string                    `json:"participantId"`
	Type          FundsMovementType         `json:"type"`
	Amount        decimal.Decimal           `json:"amount"`
	CurrencyCode  string                    `json:"currencyCode"`
	RequestState  FundsMovementRequestState `json:"requestState"`
	ApprovedDate  *time.Time                `json:"approvedDate"`
}

// Participant is the reporting snapshot of a DFSP, refreshed whenever the
// participant registry announces a change.
type Participant struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	IsActive       bool            `json:"isActive"`
	CreatedDate    time.Time       `json:"createdDate"`
	FundsMovements []FundsMovement `json:"fundsMovements"`
}

// SettlementStatementLine is one reconciled entry of a DFSP settlement
// statement. The first four fields come from the query layer; the last four
// are computed per request by the reconciliation engine. Never persisted.
type SettlementStatementLine struct {
	ProcessDescription    string          `json:"processDescription"`
	Amount                decimal.Decimal `json:"amount"`
	StatementCurrencyCode string          `json:"statementCurrencyCode"`
	TransactionDate       time.Time       `json:"transactionDate"`

	OpeningAmount  decimal.Decimal `json:"openingAmount"`
	FundsInAmount  decimal.Decimal `json:"fundsInAmount"`
	FundsOutAmount decimal.Decimal `json:"fundsOutAmount"`
	Balance        decimal.Decimal `json:"balance"`
}
