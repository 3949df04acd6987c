// Package web is the HTTP side of the server: health check, printable
// reports and the grpc-web mount.
package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"health-companion-api/internal/api"
	"health-companion-api/internal/auth"
	"health-companion-api/internal/clock"
	"health-companion-api/internal/model"
	"health-companion-api/internal/report"
	"health-companion-api/internal/store"
)

type Deps struct {
	Store  store.Store
	Issuer *auth.Issuer
	Clock  clock.Clock
	Loc    *time.Location
	Logger *log.Logger
	// GRPCWeb, when set, serves /health.v1.HealthService/*.
	GRPCWeb http.Handler
}

type Router struct {
	Deps
}

func NewRouter(d Deps) http.Handler {
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Loc == nil {
		d.Loc = time.UTC
	}
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}
	r := &Router{Deps: d}
	mux := chi.NewRouter()

	mux.Get("/healthz", r.handleHealth)
	mux.Group(func(pr chi.Router) {
		pr.Use(r.authMiddleware)
		pr.Get("/reports/{kind}", r.handleReport)
	})
	if d.GRPCWeb != nil {
		mux.Handle("/"+api.ServiceName+"/*", d.GRPCWeb)
	}
	return mux
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) {
	uid := getUserID(req.Context())
	now := r.Clock.Now()

	// render into a buffer so a half-written page never goes out with 200
	var buf bytes.Buffer
	var err error
	switch chi.URLParam(req, "kind") {
	case "medications":
		var meds []model.MedicationReminder
		if meds, err = r.Store.ListMedications(req.Context(), uid); err == nil {
			err = report.MedicationsHTML(&buf, meds, now, r.Loc)
		}
	case "appointments":
		var appts []model.Appointment
		if appts, err = r.Store.ListAppointments(req.Context(), uid); err == nil {
			err = report.AppointmentsHTML(&buf, appts, now, r.Loc)
		}
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown report"})
		return
	}
	if err != nil {
		r.Logger.Printf("report %s: %v", req.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
