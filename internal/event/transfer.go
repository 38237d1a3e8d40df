package event

import (
	"time"

	"github.com/shopspring/decimal"

	"SettleReporting/internal/model"
)

// TransferPrepared announces that a transfer was reserved on the platform.
// Materializes into a new RESERVED TransferRecord.
type TransferPrepared struct {
	TransferID      string
	PayerFsp        string
	PayeeFsp        string
	Amount          decimal.Decimal
	CurrencyCode    string
	Expiration      *time.Time
	SettlementModel string
	PreparedAt      time.Time
}

func (e *TransferPrepared) Key() string          { return e.TransferID }
func (e *TransferPrepared) EventType() EventType { return EventTypeTransferPrepared }

// TransferFulfiled announces the payee side committed the transfer.
type TransferFulfiled struct {
	TransferID         string
	Fulfilment         *string
	CompletedTimestamp time.Time
	ExtensionList      *model.ExtensionList
	FulfiledAt         time.Time
}

func (e *TransferFulfiled) Key() string          { return e.TransferID }
func (e *TransferFulfiled) EventType() EventType { return EventTypeTransferFulfiled }

// TransferRejectRequestProcessed announces the transfer was aborted.
type TransferRejectRequestProcessed struct {
	TransferID string
	ErrorInfo  *model.ErrorInformation
}

func (e *TransferRejectRequestProcessed) Key() string { return e.TransferID }
func (e *TransferRejectRequestProcessed) EventType() EventType {
	return EventTypeTransferRejectRequestProcessed
}
