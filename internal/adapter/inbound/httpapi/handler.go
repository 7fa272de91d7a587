// Package httpapi serves the prediction pipeline over HTTP/JSON.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jonny/pdm-service/internal/adapter/inbound/httpapi/middleware"
	"github.com/jonny/pdm-service/internal/domain/model"
	"github.com/jonny/pdm-service/internal/domain/port/inbound"
	"github.com/jonny/pdm-service/internal/domain/port/outbound"
	"github.com/jonny/pdm-service/pkg/apierror"
)

// TotalCountHeader carries the unpaginated match count of a history page.
const TotalCountHeader = "X-Total-Count"

// ModelDescriber reports which classifier is serving predictions.
type ModelDescriber interface {
	Info(ctx context.Context) (outbound.ModelInfo, error)
}

// Handler holds the HTTP handlers for every API route.
type Handler struct {
	predictions inbound.PredictionPort
	history     inbound.HistoryPort
	reports     inbound.ReportPort
	describer   ModelDescriber
	logger      *slog.Logger
}

// NewHandler wires the inbound ports into HTTP handlers. describer may be nil.
func NewHandler(
	predictions inbound.PredictionPort,
	history inbound.HistoryPort,
	reports inbound.ReportPort,
	describer ModelDescriber,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		predictions: predictions,
		history:     history,
		reports:     reports,
		describer:   describer,
		logger:      logger,
	}
}

// Predict handles POST /predict.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var raw model.RawReading
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil || raw == nil {
		apierror.Write(w, apierror.BadRequest(string(model.ReasonInvalid)))
		return
	}

	res, err := h.predictions.Predict(r.Context(), raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// History handles GET /history. With export set it streams a file attachment
// of every matching record instead of a JSON page.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	filter := model.HistoryFilter{
		Machine: params.Get("machine"),
		Risk:    params.Get("risk"),
		Date:    params.Get("date"),
	}
	order := model.ParseSortOrder(params.Get("order"))

	if params.Get("export") != "" {
		var buf bytes.Buffer
		if _, err := h.history.Export(r.Context(), filter, order, &buf); err != nil {
			h.writeError(w, r, err)
			return
		}
		writeAttachment(w, h.history.ContentType(), h.history.FileName(), buf.Bytes())
		return
	}

	page, err := intParam(params.Get("page"), "page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := intParam(params.Get("limit"), "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.history.List(r.Context(), model.HistoryQuery{
		Filter: filter,
		Order:  order,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set(TotalCountHeader, strconv.FormatInt(res.TotalCount, 10))
	writeJSON(w, http.StatusOK, res.Items)
}

// DownloadReport handles POST /download-report.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	var req model.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("invalid report payload"))
		return
	}

	var buf bytes.Buffer
	if err := h.reports.RenderReport(r.Context(), req, &buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeAttachment(w, h.reports.ContentType(), h.reports.FileName(), buf.Bytes())
}

// ModelInfo handles GET /model.
func (h *Handler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	if h.describer == nil {
		apierror.Write(w, apierror.NotFound("model info"))
		return
	}
	info, err := h.describer.Info(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": info.Provider,
		"version":  info.Version,
		"trees":    info.Trees,
		"features": info.Features,
	})
}

// HealthHandler returns an http.HandlerFunc for the /health endpoint.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// writeError maps domain errors onto status codes. Validation problems are the
// caller's to fix; everything else is logged and reported without internals.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		details := make([]string, 0, len(ve.Violations))
		for _, v := range ve.Violations {
			details = append(details, v.String())
		}
		msg := fmt.Sprintf("%s: %s", ve.Reason, ve.Field)
		apierror.Write(w, apierror.WithDetails(http.StatusBadRequest, msg, details...))
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"error", err,
	)
	switch {
	case errors.Is(err, model.ErrPersistence):
		apierror.Write(w, apierror.Internal("failed to store or read predictions"))
	case errors.Is(err, model.ErrModelUnavailable):
		apierror.Write(w, apierror.New(http.StatusServiceUnavailable, "model unavailable"))
	default:
		apierror.Write(w, apierror.Internal("internal error"))
	}
}

// intParam parses an optional integer query parameter. Absent means 0.
func intParam(s, field string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, model.NewValidationError([]model.Violation{{Field: field, Reason: model.ReasonInvalid}})
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAttachment(w http.ResponseWriter, contentType, fileName string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
