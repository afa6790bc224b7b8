package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"centerview/internal/db"
	"centerview/internal/metrics"
	"centerview/internal/record"
)

// trendOptions builds metrics.TrendOptions from query parameters.
// When neither bound is given, the configured default window (last N
// days, inclusive of today) applies.
func (s *Server) trendOptions(r *http.Request) metrics.TrendOptions {
	q := r.URL.Query()
	opts := metrics.TrendOptions{
		From:      q.Get("start_date"),
		To:        q.Get("end_date"),
		GroupBy:   metrics.GroupBy(q.Get("group_by")),
		SegmentBy: metrics.SegmentBy(q.Get("segment_by")),
	}
	if opts.From == "" && opts.To == "" {
		cfg := s.snapshotCfg()
		now := s.now()
		opts.To = now.Format("2006-01-02")
		opts.From = now.AddDate(0, 0, -(cfg.TrendWindowDays - 1)).
			Format("2006-01-02")
	}
	return opts
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	checkins, err := s.db.ListCheckins(r.Context())
	if err != nil {
		s.storeError(w, "listing check-ins", err)
		return
	}
	subjects, err := s.db.ListSubjects(r.Context())
	if err != nil {
		s.storeError(w, "listing subjects", err)
		return
	}

	resp, err := metrics.BuildTrend(checkins, subjects, s.trendOptions(r))
	if err != nil {
		s.metricsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := s.snapshotCfg().LeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	checkins, err := s.db.ListCheckins(r.Context())
	if err != nil {
		s.storeError(w, "listing check-ins", err)
		return
	}
	subjects, err := s.db.ListSubjects(r.Context())
	if err != nil {
		s.storeError(w, "listing subjects", err)
		return
	}

	resp, err := metrics.BuildLeaderboard(checkins, subjects, limit)
	if err != nil {
		s.metricsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMachines(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.machineSummaries(r)
	if err != nil {
		s.storeError(w, "summarizing machines", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"machines": summaries})
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	baselineID := r.URL.Query().Get("baseline_id")
	if baselineID == "" {
		writeError(w, http.StatusBadRequest, "baseline_id is required")
		return
	}

	summaries, err := s.machineSummaries(r)
	if err != nil {
		s.storeError(w, "summarizing machines", err)
		return
	}

	resp, err := metrics.Compare(summaries, baselineID)
	if errors.Is(err, metrics.ErrBaselineNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.metricsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) machineSummaries(
	r *http.Request,
) ([]metrics.MachineSummary, error) {
	checkins, err := s.db.ListCheckins(r.Context())
	if err != nil {
		return nil, err
	}
	machines, err := s.db.ListMachines(r.Context())
	if err != nil {
		return nil, err
	}
	return metrics.SummarizeMachines(checkins, machines), nil
}

func (s *Server) handleListCheckins(w http.ResponseWriter, r *http.Request) {
	var checkins []record.Checkin
	var err error
	if r.URL.Query().Get("active") == "true" {
		checkins, err = s.db.ListActiveCheckins(r.Context())
	} else {
		checkins, err = s.db.ListCheckins(r.Context())
	}
	if err != nil {
		s.storeError(w, "listing check-ins", err)
		return
	}
	if checkins == nil {
		checkins = []record.Checkin{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"checkins": checkins})
}

type dismissRequest struct {
	Outcome record.Outcome `json:"outcome"`
}

func (s *Server) handleDismissCheckin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !req.Outcome.Valid() {
		writeError(w, http.StatusBadRequest,
			"outcome must be successful or failed")
		return
	}

	if err := s.db.DismissCheckin(id, req.Outcome, s.now()); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, db.ErrAlreadyCompleted):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	c, err := s.db.GetCheckin(r.Context(), id)
	if err != nil {
		s.storeError(w, "fetching dismissed check-in", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats(r.Context())
	if err != nil {
		s.storeError(w, "fetching stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// metricsError maps a metrics-layer error to an HTTP response.
func (s *Server) metricsError(w http.ResponseWriter, err error) {
	if metrics.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Printf("Error computing metrics: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// storeError maps a db-layer error to an HTTP response.
func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if handleContextError(w, err) {
		return
	}
	log.Printf("Error %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
