package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"

	"github.com/penwyp/go-dose-monitor/internal/application/monitor"
	"github.com/penwyp/go-dose-monitor/internal/core/model"
	"github.com/penwyp/go-dose-monitor/internal/data/aggregator"
	"github.com/penwyp/go-dose-monitor/internal/data/repository"
	"github.com/penwyp/go-dose-monitor/internal/data/store"
	"github.com/penwyp/go-dose-monitor/internal/presentation/interaction"
	"github.com/penwyp/go-dose-monitor/internal/util"
)

const healthMessage = "Dose monitor backend is running!"

// intakeRequest is the body of POST and PATCH. Absent fields stay nil.
type intakeRequest struct {
	SubjectID    *string    `json:"subjectId"`
	DosageAmount *float64   `json:"dosageAmount"`
	DosageUnit   *string    `json:"dosageUnit"`
	Subtype      *string    `json:"subtype"`
	Timestamp    *time.Time `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(healthMessage))
}

func (s *Server) listIntakes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, err := interaction.ParseSortField(q.Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order, err := interaction.ParseSortOrder(q.Get("order"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	interaction.NewIntakeSorter().WithField(field, order).Sort(events)
	writeJSON(w, http.StatusOK, model.ToRecords(events))
}

func (s *Server) listSubjectIntakes(w http.ResponseWriter, r *http.Request) {
	subject, err := model.ParseSubject(mux.Vars(r)["subjectId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := store.ListBySubject(r.Context(), s.store, subject)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ToRecords(events))
}

func (s *Server) createIntake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.SubjectID == nil || strings.TrimSpace(*req.SubjectID) == "" || req.DosageAmount == nil {
		http.Error(w, "Missing required fields: subjectId and dosageAmount", http.StatusBadRequest)
		return
	}

	event, err := newEvent(req, s.clock())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.store.Insert(r.Context(), event)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	created, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	logger.Info("Intake recorded",
		util.F("id", created.ID),
		util.F("subject", created.Subject.String()),
		util.F("amount", created.DosageAmount))
	writeJSON(w, http.StatusCreated, created.ToRecord())
}

func newEvent(req intakeRequest, now time.Time) (model.IntakeEvent, error) {
	subject, err := model.ParseSubject(*req.SubjectID)
	if err != nil {
		return model.IntakeEvent{}, err
	}
	unit := model.UnitMass
	if req.DosageUnit != nil {
		if unit, err = model.ParseDosageUnit(*req.DosageUnit); err != nil {
			return model.IntakeEvent{}, err
		}
	}
	subtype := subject.DefaultSubtype()
	if req.Subtype != nil {
		if subtype, err = model.ParseSubtype(*req.Subtype); err != nil {
			return model.IntakeEvent{}, err
		}
	}
	var at time.Time
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	event := model.NewIntakeEvent(subject, *req.DosageAmount, unit, subtype, at, now)
	if err := event.ValidateEntry(); err != nil {
		return model.IntakeEvent{}, err
	}
	return event, nil
}

func (s *Server) updateIntake(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req intakeRequest
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	patch, err := newPatch(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.Update(r.Context(), id, patch); err != nil {
		writeStoreError(w, err)
		return
	}
	updated, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := updated.ValidateEntry(); err != nil {
		logger.Warn("Updated intake exceeds entry bounds", util.F("id", id), util.F("error", err))
	}
	writeJSON(w, http.StatusOK, updated.ToRecord())
}

func newPatch(req intakeRequest) (model.IntakePatch, error) {
	var patch model.IntakePatch
	if req.SubjectID != nil {
		subject, err := model.ParseSubject(*req.SubjectID)
		if err != nil {
			return patch, err
		}
		patch.Subject = &subject
	}
	if req.DosageAmount != nil {
		amount := *req.DosageAmount
		patch.DosageAmount = &amount
	}
	if req.DosageUnit != nil {
		unit, err := model.ParseDosageUnit(*req.DosageUnit)
		if err != nil {
			return patch, err
		}
		patch.DosageUnit = &unit
	}
	if req.Subtype != nil {
		subtype, err := model.ParseSubtype(*req.Subtype)
		if err != nil {
			return patch, err
		}
		patch.Subtype = &subtype
	}
	if req.Timestamp != nil {
		at := *req.Timestamp
		patch.Timestamp = &at
	}
	return patch, nil
}

func (s *Server) deleteIntake(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	logger.Info("Intake deleted", util.F("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	window := s.config.Window
	if value := r.URL.Query().Get("window"); value != "" {
		parsed, err := aggregator.ParseWindow(value)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		window = parsed
	}

	view, ok := s.computeView(w, r, window, s.config.Days)
	if !ok {
		return
	}
	if view.Report.NoData {
		http.Error(w, model.ErrNoData.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view.Report)
}

func (s *Server) timeline(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r, s.config.Days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, ok := s.computeView(w, r, s.config.Window, days)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newTimelineResponse(view))
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	y, err := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err != nil {
		http.Error(w, "query parameter y must be a number", http.StatusBadRequest)
		return
	}
	days, err := daysParam(r, s.config.Days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	view, ok := s.computeView(w, r, s.config.Window, days)
	if !ok {
		return
	}

	at, err := view.Layout.ResolveInLayout(y, view.Buckets)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dayIndex := view.Layout.DayIndexAt(y)
	writeJSON(w, http.StatusOK, resolveResponse{
		Y:        y,
		DayIndex: dayIndex,
		DayKey:   view.Buckets[dayIndex].Key,
		Minutes:  util.MinutesSinceMidnight(at),
		Time:     at,
	})
}

// computeView reads the store and builds a view. It writes the error
// response itself and reports whether the caller may continue.
func (s *Server) computeView(w http.ResponseWriter, r *http.Request, window aggregator.Window, days int) (*monitor.View, bool) {
	events, err := s.store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}

	config := s.config
	config.Days = days
	controller, err := monitor.NewRefreshController(&config, s.location)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	view, err := controller.Compute(repository.Snapshot{Events: events}, window, s.clock())
	if err != nil {
		if model.IsValidationError(err) {
			// stored data the engine rejects
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return nil, false
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return view, true
}

func daysParam(r *http.Request, fallback int) (int, error) {
	value := r.URL.Query().Get("days")
	if value == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("query parameter days must be a non-negative integer, got %q", value)
	}
	return days, nil
}

// writeStoreError maps store failures to status codes. The body is the
// plain error message.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case model.IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error("Store request failed", util.F("error", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Warn("Failed to encode response", util.F("error", err))
	}
}
