// Package lotapi exposes the facility state over HTTP.
package lotapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/mjarreta/parkd/core/billing"
	"github.com/mjarreta/parkd/core/lot"
	"github.com/mjarreta/parkd/core/model"
	"github.com/mjarreta/parkd/infra/logger"
	"github.com/mjarreta/parkd/pkg/export"
)

// PaymentProcessor settles the fee of a released ticket.
type PaymentProcessor interface {
	ProcessPayment(amount float64) error
}

// Handler serves the facility API.
type Handler struct {
	alloc    *lot.Allocator
	payments PaymentProcessor
	qrSecret []byte
	log      logger.Logger
}

// NewHandler builds the API router for the allocator. The secret signs
// receipt QR payloads. A nil payments leaves release fees uncollected
// at the gate.
func NewHandler(alloc *lot.Allocator, payments PaymentProcessor, qrSecret []byte) http.Handler {
	h := &Handler{alloc: alloc, payments: payments, qrSecret: qrSecret, log: logger.New("api")}

	router := httprouter.New()
	router.GET("/api/report", h.report)
	router.GET("/api/zones/:id/availability", h.availability)
	router.GET("/api/violations", h.violations)
	router.GET("/api/tickets/:id/receipt", h.receipt)
	router.POST("/api/vehicles/:plate/assign", h.assign)
	router.POST("/api/vehicles/:plate/release", h.release)
	return router
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("encode response: %v", err)
	}
}

// report serves the aggregated facility report.
func (h *Handler) report(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.writeJSON(w, lot.BuildReport(h.alloc.Snapshot()))
}

type availabilityResponse struct {
	ZoneID    string `json:"zone_id"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	// Compatible is present when the vehicle query parameter is given.
	Compatible *int `json:"compatible,omitempty"`
}

// availability serves spot counts for one zone. An optional vehicle
// query parameter (e.g. ?vehicle=CAR) adds the compatible spot count.
func (h *Handler) availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	zone, ok := h.alloc.Zone(ps.ByName("id"))
	if !ok {
		http.Error(w, "unknown zone", http.StatusNotFound)
		return
	}
	total, _, _, available := zone.Counts()
	resp := availabilityResponse{ZoneID: zone.ID(), Total: total, Available: available}

	if raw := r.URL.Query().Get("vehicle"); raw != "" {
		kind, err := model.ParseVehicleKind(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n := zone.AvailableCompatibleCount(kind)
		resp.Compatible = &n
	}
	h.writeJSON(w, resp)
}

// violations serves all recorded violations.
func (h *Handler) violations(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.writeJSON(w, h.alloc.Violations())
}

// receipt serves a PDF receipt for a settled ticket.
func (h *Handler) receipt(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	ticket, ok := h.alloc.Ticket(id)
	if !ok {
		http.Error(w, "unknown ticket", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+id+".pdf")
	if err := export.WriteReceiptPDF(w, ticket, h.qrSecret); err != nil {
		h.log.Errorf("render receipt %s: %v", id, err)
	}
}

type assignRequest struct {
	Kind    string `json:"kind"`
	OwnerID string `json:"owner_id"`
	ZoneID  string `json:"zone_id"`
}

type assignResponse struct {
	SpotID string `json:"spot_id"`
}

// assign parks a vehicle, optionally preferring a zone.
func (h *Handler) assign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)
		return
	}
	kind, err := model.ParseVehicleKind(req.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v := model.Vehicle{LicensePlate: ps.ByName("plate"), Kind: kind, OwnerID: req.OwnerID}

	var spot *model.Spot
	if req.ZoneID != "" {
		spot, err = h.alloc.AssignSpotInZone(v, req.ZoneID)
	} else {
		spot, err = h.alloc.AssignSpot(v)
	}
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, assignResponse{SpotID: spot.ID()})
}

// release ends the parking session, charges the fee through the
// configured processor and returns the settled ticket.
func (h *Handler) release(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	ticket, err := h.alloc.ReleaseSpot(ps.ByName("plate"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if h.payments != nil {
		if err := h.payments.ProcessPayment(ticket.Fee); err != nil {
			h.log.Warnf("payment for ticket %s: %v", ticket.ID, err)
			http.Error(w, err.Error(), statusFor(err))
			return
		}
	}
	h.writeJSON(w, ticket)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lot.ErrInvalidZone), errors.Is(err, lot.ErrNotParked):
		return http.StatusNotFound
	case errors.Is(err, lot.ErrInvalidVehicle):
		return http.StatusBadRequest
	case errors.Is(err, lot.ErrSlotUnavailable):
		return http.StatusConflict
	case errors.Is(err, billing.ErrPayment):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
