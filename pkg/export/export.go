// Package export renders tickets and reports for external consumption.
package export

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/mjarreta/parkd/core/model"
)

// QRPayload returns a signed payload string for ticket verification:
// ticketID|plate|spotID|exitUnix|signature.
func QRPayload(t model.Ticket, secret []byte) string {
	data := fmt.Sprintf("%s|%s|%s|%d", t.ID, t.LicensePlate, t.SpotID, t.ExitTime.Unix())
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyQRPayload checks the payload signature.
func VerifyQRPayload(payload string, secret []byte) bool {
	idx := lastPipe(payload)
	if idx < 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(want))
}

func lastPipe(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '|' {
			return i
		}
	}
	return -1
}

// WriteReceiptPDF renders an A4 receipt for the settled ticket to w,
// with a verification QR code in the top right corner.
func WriteReceiptPDF(w io.Writer, t model.Ticket, secret []byte) error {
	qrPNG, err := qrcode.Encode(QRPayload(t, secret), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Parking Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Ticket: %s", t.ID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("License plate: %s", t.LicensePlate))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Spot: %s (zone %s)", t.SpotID, t.ZoneID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Entry: %s", t.EntryTime.Format(time.RFC3339)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Exit: %s", t.ExitTime.Format(time.RFC3339)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Duration: %s", t.Duration().Round(time.Minute)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Fee: %.2f", t.Fee))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// WriteTicketsJSON writes the tickets to w in JSON format.
func WriteTicketsJSON(w io.Writer, tickets []model.Ticket) error {
	enc := json.NewEncoder(w)
	return enc.Encode(tickets)
}

// WriteTicketsCSV writes the tickets to w in CSV format.
func WriteTicketsCSV(w io.Writer, tickets []model.Ticket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ticket_id", "license_plate", "spot_id", "zone_id", "entry_time", "exit_time", "fee"}); err != nil {
		return err
	}
	for _, t := range tickets {
		rec := []string{
			t.ID,
			t.LicensePlate,
			t.SpotID,
			t.ZoneID,
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			strconv.FormatFloat(t.Fee, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
