package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mjarreta/parkd/core/model"
)

var secret = []byte("test-secret")

func sampleTicket() model.Ticket {
	entry := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	return model.Ticket{
		ID:           "TKT-1",
		LicensePlate: "CAR-1",
		SpotID:       "A-1",
		ZoneID:       "A",
		EntryTime:    entry,
		ExitTime:     entry.Add(90 * time.Minute),
		Fee:          7.5,
	}
}

func TestQRPayloadVerification(t *testing.T) {
	payload := QRPayload(sampleTicket(), secret)
	if !strings.HasPrefix(payload, "TKT-1|CAR-1|A-1|") {
		t.Fatalf("unexpected payload %q", payload)
	}
	if !VerifyQRPayload(payload, secret) {
		t.Fatal("valid payload rejected")
	}
	if VerifyQRPayload(payload, []byte("wrong-secret")) {
		t.Fatal("payload accepted with wrong secret")
	}
	tampered := strings.Replace(payload, "CAR-1", "CAR-2", 1)
	if VerifyQRPayload(tampered, secret) {
		t.Fatal("tampered payload accepted")
	}
	if VerifyQRPayload("no-signature", secret) {
		t.Fatal("malformed payload accepted")
	}
}

func TestWriteReceiptPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReceiptPDF(&buf, sampleTicket(), secret); err != nil {
		t.Fatalf("write receipt: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
}

func TestWriteTicketsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTicketsCSV(&buf, []model.Ticket{sampleTicket()}); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "TKT-1,CAR-1,A-1,A,") {
		t.Fatalf("unexpected row %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], "7.50") {
		t.Fatalf("fee not formatted: %q", lines[1])
	}
}

func TestWriteTicketsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTicketsJSON(&buf, []model.Ticket{sampleTicket()}); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if !strings.Contains(buf.String(), `"id":"TKT-1"`) {
		t.Fatalf("unexpected json %s", buf.String())
	}
}
