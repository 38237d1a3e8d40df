package ingestion

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"SettleReporting/internal/event"
)

func rawEvent(data string) RawEvent {
	return RawEvent{
		Subject:   "payments.transfers.events.test",
		Data:      []byte(data),
		Timestamp: time.Now(),
	}
}

func TestParseTransferPrepared(t *testing.T) {
	raw := rawEvent(`{
		"msgName": "TransferPreparedEvt",
		"msgKey": "tr-1",
		"payload": {
			"transferId": "tr-1",
			"payerFsp": "dfsp-a",
			"payeeFsp": "dfsp-b",
			"amount": "125.50",
			"currencyCode": "USD",
			"expiration": 1748800000000,
			"preparedAt": 1748790000000
		}
	}`)

	evt, err := ParseRawEvent(raw)
	if err != nil {
		t.Fatalf("ParseRawEvent: %v", err)
	}

	prepared, ok := evt.(*event.TransferPrepared)
	if !ok {
		t.Fatalf("event type = %T", evt)
	}
	if prepared.TransferID != "tr-1" || prepared.PayerFsp != "dfsp-a" {
		t.Errorf("fields = %+v", prepared)
	}
	if !prepared.Amount.Equal(decimal.RequireFromString("125.50")) {
		t.Errorf("amount = %s", prepared.Amount)
	}
	if prepared.SettlementModel != "DEFAULT" {
		t.Errorf("settlementModel = %s, want defaulted DEFAULT", prepared.SettlementModel)
	}
	if prepared.Expiration == nil || prepared.Expiration.UnixMilli() != 1748800000000 {
		t.Errorf("expiration = %v", prepared.Expiration)
	}
	if prepared.PreparedAt.UnixMilli() != 1748790000000 {
		t.Errorf("preparedAt = %v", prepared.PreparedAt)
	}
}

func TestParseTransferPreparedMissingID(t *testing.T) {
	raw := rawEvent(`{
		"msgName": "TransferPreparedEvt",
		"payload": {"amount": "1", "currencyCode": "USD"}
	}`)

	if _, err := ParseRawEvent(raw); err == nil {
		t.Error("missing transferId accepted")
	}
}

func TestParseTransferPreparedBadAmount(t *testing.T) {
	raw := rawEvent(`{
		"msgName": "TransferPreparedEvt",
		"payload": {"transferId": "tr-1", "amount": "not-a-number"}
	}`)

	if _, err := ParseRawEvent(raw); err == nil {
		t.Error("unparseable amount accepted")
	}
}

func TestParseTransferFulfiled(t *testing.T) {
	raw := rawEvent(`{
		"msgName": "TransferFulfiledEvt",
		"payload": {
			"transferId": "tr-1",
			"fulfilment": "proof",
			"completedTimestamp": 1748795000000,
			"extensionList": {"extension": [{"key": "k", "value": "v"}]},
			"fulfiledAt": 1748795000500
		}
	}`)

	evt, err := ParseRawEvent(raw)
	if err != nil {
		t.Fatalf("ParseRawEvent: %v", err)
	}
	fulfiled, ok := evt.(*event.TransferFulfiled)
	if !ok {
		t.Fatalf("event type = %T", evt)
	}
	if fulfiled.Fulfilment == nil || *fulfiled.Fulfilment != "proof" {
		t.Errorf("fulfilment = %v", fulfiled.Fulfilment)
	}
	if fulfiled.ExtensionList == nil || len(fulfiled.ExtensionList.Extension) != 1 {
		t.Errorf("extensionList = %v", fulfiled.ExtensionList)
	}
	if fulfiled.CompletedTimestamp.UnixMilli() != 1748795000000 {
		t.Errorf("completedTimestamp = %v", fulfiled.CompletedTimestamp)
	}
}

func TestParseTransferReject(t *testing.T) {
	raw := rawEvent(`{
		"msgName": "TransferRejectRequestProcessedEvt",
		"payload": {
			"transferId": "tr-1",
			"errorInformation": {"errorCode": "5104", "errorDescription": "rejected"}
		}
	}`)

	evt, err := ParseRawEvent(raw)
	if err != nil {
		t.Fatalf("ParseRawEvent: %v", err)
	}
	reject, ok := evt.(*event.TransferRejectRequestProcessed)
	if !ok {
		t.Fatalf("event type = %T", evt)
	}
	if reject.ErrorInfo == nil || reject.ErrorInfo.ErrorCode != "5104" {
		t.Errorf("errorInfo = %v", reject.ErrorInfo)
	}
}

func TestParseMatrixSettledAllowsEmptyID(t *testing.T) {
	// Validation of the matrix id belongs to the handler, which reports it
	// as an invalid-argument failure with the event context attached.
	raw := rawEvent(`{"msgName": "SettlementMatrixSettledEvt", "payload": {}}`)

	evt, err := ParseRawEvent(raw)
	if err != nil {
		t.Fatalf("ParseRawEvent: %v", err)
	}
	settled, ok := evt.(*event.SettlementMatrixSettled)
	if !ok {
		t.Fatalf("event type = %T", evt)
	}
	if settled.SettlementMatrixID != "" {
		t.Errorf("matrix id = %q", settled.SettlementMatrixID)
	}
}

func TestParseParticipantChanged(t *testing.T) {
	raw := rawEvent(`{
		"msgName": "ParticipantChangedEvt",
		"payload": {"participantId": "dfsp-a", "actionName": "FUNDS_MOVEMENT_APPROVED"}
	}`)

	evt, err := ParseRawEvent(raw)
	if err != nil {
		t.Fatalf("ParseRawEvent: %v", err)
	}
	changed, ok := evt.(*event.ParticipantChanged)
	if !ok {
		t.Fatalf("event type = %T", evt)
	}
	if changed.ParticipantID != "dfsp-a" || changed.ChangeType != "FUNDS_MOVEMENT_APPROVED" {
		t.Errorf("fields = %+v", changed)
	}
}

func TestParseUnknownEventType(t *testing.T) {
	raw := rawEvent(`{"msgName": "SomeFutureEvt", "payload": {}}`)

	_, err := ParseRawEvent(raw)
	if !errors.Is(err, ErrUnknownEventType) {
		t.Errorf("err = %v, want ErrUnknownEventType", err)
	}
}

func TestParseMalformedEnvelope(t *testing.T) {
	_, err := ParseRawEvent(rawEvent(`not json`))
	if err == nil {
		t.Error("malformed envelope accepted")
	}
	if errors.Is(err, ErrUnknownEventType) {
		t.Error("malformed envelope classified as unknown type")
	}
}
