package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/martinsuchenak/lanwatch/internal/fetch"
	"github.com/martinsuchenak/lanwatch/internal/log"
	"github.com/martinsuchenak/lanwatch/internal/model"
	"github.com/martinsuchenak/lanwatch/internal/pipeline"
	"github.com/martinsuchenak/lanwatch/internal/report"
	"github.com/martinsuchenak/lanwatch/internal/sink"
)

// Handler handles HTTP requests
type Handler struct {
	pipeline  *pipeline.Pipeline
	links     []model.Link
	snapshots *sink.FileSink
}

// NewHandler creates a new API handler. snapshots may be nil when no
// snapshot directory is configured.
func NewHandler(p *pipeline.Pipeline, links []model.Link, snapshots *sink.FileSink) *Handler {
	return &Handler{pipeline: p, links: links, snapshots: snapshots}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /api/links", h.listLinks)
	mux.HandleFunc("GET /api/leases", h.listLeases)

	// Per-link views
	mux.HandleFunc("GET /api/{link}/all_devices", h.allDevices)
	mux.HandleFunc("GET /api/{link}/top_in", h.topDevices(model.MetricIn))
	mux.HandleFunc("GET /api/{link}/top_out", h.topDevices(model.MetricOut))
	mux.HandleFunc("GET /api/{link}/top_total", h.topDevices(model.MetricTotal))
	mux.HandleFunc("GET /api/{link}/details", h.details)

	// Time series
	mux.HandleFunc("GET /api/{link}/minutes", h.series(model.SeriesMinutes))
	mux.HandleFunc("GET /api/{link}/hours", h.series(model.SeriesHours))
	mux.HandleFunc("GET /api/{link}/days", h.series(model.SeriesDays))

	mux.HandleFunc("GET /api/{link}/snapshots/latest", h.latestSnapshot)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listLinks handles GET /api/links
func (h *Handler) listLinks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.links)
}

// listLeases handles GET /api/leases
func (h *Handler) listLeases(w http.ResponseWriter, r *http.Request) {
	leases := h.pipeline.Leases()
	log.Debug("Listed leases", "count", len(leases))
	h.writeJSON(w, http.StatusOK, leases)
}

// allDevices handles GET /api/{link}/all_devices
func (h *Handler) allDevices(w http.ResponseWriter, r *http.Request) {
	link, ok := h.link(w, r)
	if !ok {
		return
	}

	res, err := h.pipeline.Devices(r.Context(), link)
	if err != nil {
		h.pipelineError(w, link, err)
		return
	}
	if res.Unavailable {
		h.unavailable(w)
		return
	}

	log.Info("Listed devices", "link", link.Name, "count", len(res.Data))
	h.writeJSON(w, http.StatusOK, report.Devices(res.Data))
}

// topDevices handles GET /api/{link}/top_in, top_out and top_total
func (h *Handler) topDevices(metric model.Metric) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, ok := h.link(w, r)
		if !ok {
			return
		}

		res, err := h.pipeline.Top(r.Context(), link, metric, report.TopSummary)
		if err != nil {
			h.pipelineError(w, link, err)
			return
		}
		if res.Unavailable {
			h.unavailable(w)
			return
		}

		log.Debug("Ranked devices", "link", link.Name, "metric", string(metric), "count", len(res.Data))
		h.writeJSON(w, http.StatusOK, report.Devices(res.Data))
	}
}

// details handles GET /api/{link}/details?metric=total&limit=50
func (h *Handler) details(w http.ResponseWriter, r *http.Request) {
	link, ok := h.link(w, r)
	if !ok {
		return
	}

	metric := model.MetricTotal
	if m := r.URL.Query().Get("metric"); m != "" {
		parsed, err := model.ParseMetric(m)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		metric = parsed
	}

	limit := report.TopDetailed
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	res, err := h.pipeline.TopDetails(r.Context(), link, metric, limit)
	if err != nil {
		h.pipelineError(w, link, err)
		return
	}
	if res.Unavailable {
		h.unavailable(w)
		return
	}

	log.Info("Collected device details", "link", link.Name, "devices", len(res.Data.Devices), "failures", len(res.Data.Failures))
	h.writeJSON(w, http.StatusOK, res.Data)
}

// series handles GET /api/{link}/minutes, hours and days
func (h *Handler) series(kind model.SeriesKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link, ok := h.link(w, r)
		if !ok {
			return
		}

		res, err := h.pipeline.Series(r.Context(), link, kind)
		if err != nil {
			h.pipelineError(w, link, err)
			return
		}
		if res.Unavailable {
			h.unavailable(w)
			return
		}
		if len(res.Data) == 0 {
			h.writeError(w, http.StatusNotFound, "no data found")
			return
		}

		h.writeJSON(w, http.StatusOK, report.Buckets(res.Data))
	}
}

// latestSnapshot handles GET /api/{link}/snapshots/latest
func (h *Handler) latestSnapshot(w http.ResponseWriter, r *http.Request) {
	link, ok := h.link(w, r)
	if !ok {
		return
	}
	if h.snapshots == nil {
		h.writeError(w, http.StatusNotFound, "no data found")
		return
	}

	snap, err := h.snapshots.Latest(link.Name)
	if err != nil {
		if errors.Is(err, sink.ErrNoSnapshot) {
			h.writeError(w, http.StatusNotFound, "no data found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

// link resolves the {link} path value, writing a 404 when it is unknown
func (h *Handler) link(w http.ResponseWriter, r *http.Request) (model.Link, bool) {
	name := r.PathValue("link")
	link, ok := model.FindLink(h.links, name)
	if !ok {
		log.Warn("Unknown link", "link", name)
		h.writeError(w, http.StatusNotFound, "unknown link")
		return model.Link{}, false
	}
	return link, true
}

// pipelineError maps pipeline failures to status codes
func (h *Handler) pipelineError(w http.ResponseWriter, link model.Link, err error) {
	// a cancelled fetch also matches ErrFetchFailed, so check cancellation first
	switch {
	case errors.Is(err, context.Canceled):
		log.Debug("Request cancelled", "link", link.Name)
	case errors.Is(err, fetch.ErrFetchFailed):
		log.Warn("Monitor unreachable", "link", link.Name, "error", err)
		h.writeError(w, http.StatusBadGateway, "monitor unreachable")
	default:
		h.internalError(w, err)
	}
}

func (h *Handler) unavailable(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status": "unavailable",
		"error":  model.InterfaceDownMessage,
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// internalError logs the error and writes a generic 500 response
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("Internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
