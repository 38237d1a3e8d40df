package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"SettleReporting/internal/event"
	"SettleReporting/internal/model"
)

// ErrUnknownEventType marks a message whose declared name matches no known
// domain event. Consumers skip these silently, so new upstream event types
// must not break ingestion.
var ErrUnknownEventType = errors.New("unknown event type")

// envelopeJSON is the outer message shape on every reporting topic: the
// declared event name plus the raw payload. Field names match the upstream
// platform producers.
type envelopeJSON struct {
	MsgName string          `json:"msgName"`
	MsgKey  string          `json:"msgKey"`
	Payload json.RawMessage `json:"payload"`
}

// ParseRawEvent decodes a broker message into a typed domain event.
// Unknown msgName values return ErrUnknownEventType so the caller can drop
// them without treating it as a failure.
func ParseRawEvent(raw RawEvent) (event.Event, error) {
	var env envelopeJSON
	if err := json.Unmarshal(raw.Data, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	switch env.MsgName {
	case "TransferPreparedEvt":
		return parseTransferPrepared(env.Payload)
	case "TransferFulfiledEvt":
		return parseTransferFulfiled(env.Payload)
	case "TransferRejectRequestProcessedEvt":
		return parseTransferRejectRequestProcessed(env.Payload)
	case "SettlementMatrixSettledEvt":
		return parseSettlementMatrixSettled(env.Payload)
	case "ParticipantChangedEvt":
		return parseParticipantChanged(env.Payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, env.MsgName)
	}
}

// --- JSON wire formats ---
// These structs represent the JSON payloads received from the platform.
// Timestamps are epoch milliseconds; amounts are decimal strings.

type transferPreparedJSON struct {
	TransferID      string `json:"transferId"`
	PayerFsp        string `json:"payerFsp"`
	PayeeFsp        string `json:"payeeFsp"`
	Amount          string `json:"amount"`
	CurrencyCode    string `json:"currencyCode"`
	Expiration      *int64 `json:"expiration"`
	SettlementModel string `json:"settlementModel"`
	PreparedAt      int64  `json:"preparedAt"`
}

func parseTransferPrepared(data []byte) (*event.TransferPrepared, error) {
	var j transferPreparedJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse TransferPreparedEvt: %w", err)
	}
	if j.TransferID == "" {
		return nil, fmt.Errorf("parse TransferPreparedEvt: missing transferId")
	}

	amount, err := decimal.NewFromString(j.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", j.Amount, err)
	}

	var expiration *time.Time
	if j.Expiration != nil {
		t := time.UnixMilli(*j.Expiration)
		expiration = &t
	}

	settlementModel := j.SettlementModel
	if settlementModel == "" {
		settlementModel = "DEFAULT"
	}

	return &event.TransferPrepared{
		TransferID:      j.TransferID,
		PayerFsp:        j.PayerFsp,
		PayeeFsp:        j.PayeeFsp,
		Amount:          amount,
		CurrencyCode:    j.CurrencyCode,
		Expiration:      expiration,
		SettlementModel: settlementModel,
		PreparedAt:      time.UnixMilli(j.PreparedAt),
	}, nil
}

type transferFulfiledJSON struct {
	TransferID         string               `json:"transferId"`
	Fulfilment         *string              `json:"fulfilment"`
	CompletedTimestamp int64                `json:"completedTimestamp"`
	ExtensionList      *model.ExtensionList `json:"extensionList"`
	FulfiledAt         int64                `json:"fulfiledAt"`
}

func parseTransferFulfiled(data []byte) (*event.TransferFulfiled, error) {
	var j transferFulfiledJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse TransferFulfiledEvt: %w", err)
	}
	if j.TransferID == "" {
		return nil, fmt.Errorf("parse TransferFulfiledEvt: missing transferId")
	}
	return &event.TransferFulfiled{
		TransferID:         j.TransferID,
		Fulfilment:         j.Fulfilment,
		CompletedTimestamp: time.UnixMilli(j.CompletedTimestamp),
		ExtensionList:      j.ExtensionList,
		FulfiledAt:         time.UnixMilli(j.FulfiledAt),
	}, nil
}

type transferRejectJSON struct {
	TransferID string                  `json:"transferId"`
	ErrorInfo  *model.ErrorInformation `json:"errorInformation"`
}

func parseTransferRejectRequestProcessed(data []byte) (*event.TransferRejectRequestProcessed, error) {
	var j transferRejectJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse TransferRejectRequestProcessedEvt: %w", err)
	}
	if j.TransferID == "" {
		return nil, fmt.Errorf("parse TransferRejectRequestProcessedEvt: missing transferId")
	}
	return &event.TransferRejectRequestProcessed{
		TransferID: j.TransferID,
		ErrorInfo:  j.ErrorInfo,
	}, nil
}

type matrixSettledJSON struct {
	SettlementMatrixID string `json:"settlementMatrixId"`
}

func parseSettlementMatrixSettled(data []byte) (*event.SettlementMatrixSettled, error) {
	var j matrixSettledJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse SettlementMatrixSettledEvt: %w", err)
	}
	// NOTE: an empty matrix id is NOT rejected here. The materializer owns
	// that validation and reports it as InvalidArgument.
	return &event.SettlementMatrixSettled{SettlementMatrixID: j.SettlementMatrixID}, nil
}

type participantChangedJSON struct {
	ParticipantID string `json:"participantId"`
	ChangeType    string `json:"actionName"`
}

func parseParticipantChanged(data []byte) (*event.ParticipantChanged, error) {
	var j participantChangedJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse ParticipantChangedEvt: %w", err)
	}
	if j.ParticipantID == "" {
		return nil, fmt.Errorf("parse ParticipantChangedEvt: missing participantId")
	}
	return &event.ParticipantChanged{
		ParticipantID: j.ParticipantID,
		ChangeType:    j.ChangeType,
	}, nil
}
