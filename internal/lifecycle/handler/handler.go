// Package handler exposes the lifecycle API: request erasure, poll job
// status, and assemble data exports.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scoutpost/internal/lifecycle/models"
	dErrors "scoutpost/pkg/domain-errors"
	"scoutpost/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// ErasureService arbitrates and reports erasure jobs.
type ErasureService interface {
	Prepare(ctx context.Context, subjectID string, role models.Role) (*models.ErasureJob, bool, error)
	JobByID(ctx context.Context, jobID string) (*models.ErasureJob, error)
	JobBySubject(ctx context.Context, subjectID string) (*models.ErasureJob, error)
}

// ExportService assembles data export bundles.
type ExportService interface {
	Assemble(ctx context.Context, subjectID string, role models.Role) (*models.ExportBundle, error)
}

// Enqueuer hands accepted erasure jobs to the background pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, subjectID string) error
}

// Handler handles lifecycle endpoints.
type Handler struct {
	logger  *slog.Logger
	erasure ErasureService
	export  ExportService
	queue   Enqueuer
}

// New creates a lifecycle Handler.
func New(erasure ErasureService, export ExportService, queue Enqueuer, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		erasure: erasure,
		export:  export,
		queue:   queue,
	}
}

// Register registers the lifecycle routes with the chi router. Authentication
// and request metadata middleware are applied by the caller; every route here
// assumes an authorized service actor.
func (h *Handler) Register(r chi.Router) {
	r.Route("/lifecycle", func(r chi.Router) {
		r.Post("/subjects/{subjectID}/erasure", h.handleRequestErasure)
		r.Get("/subjects/{subjectID}/erasure", h.handleGetSubjectJob)
		r.Get("/subjects/{subjectID}/export", h.handleExport)
		r.Get("/erasure/jobs/{jobID}", h.handleGetJob)
	})
}

type erasureRequest struct {
	Role string `json:"role"`
}

// handleRequestErasure accepts an erasure request and enqueues the cascade.
// Answers 202 with the job snapshot while the cascade is queued or resuming,
// and 200 when a previous cascade already completed.
func (h *Handler) handleRequestErasure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")

	req, ok := httputil.Decode[erasureRequest](w, r, h.logger)
	if !ok {
		return
	}

	job, enqueue, err := h.erasure.Prepare(ctx, subjectID, models.Role(req.Role))
	if err != nil {
		h.logger.WarnContext(ctx, "erasure request rejected",
			"subject_id", subjectID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	if !enqueue {
		httputil.WriteJSON(w, http.StatusOK, job)
		return
	}

	if err := h.queue.Enqueue(ctx, job.SubjectID); err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue erasure job",
			"subject_id", subjectID, "job_id", job.ID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, job)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.erasure.JobByID(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}

func (h *Handler) handleGetSubjectJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.erasure.JobBySubject(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, job)
}

// handleExport assembles and returns the subject's export bundle. The bundle
// is generated per request and never persisted.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID := chi.URLParam(r, "subjectID")

	role := r.URL.Query().Get("role")
	if role == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "role query parameter is required"))
		return
	}

	bundle, err := h.export.Assemble(ctx, subjectID, models.Role(role))
	if err != nil {
		h.logger.WarnContext(ctx, "export request rejected",
			"subject_id", subjectID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bundle)
}
