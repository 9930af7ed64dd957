// Package export assembles the portable copy of a subject's data. The bundle
// is built fresh from the same relation catalog the erasure cascade walks, so
// export and erasure can never disagree about which collections hold a
// subject's data.
package export

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"scoutpost/internal/lifecycle/audit"
	"scoutpost/internal/lifecycle/catalog"
	"scoutpost/internal/lifecycle/metrics"
	"scoutpost/internal/lifecycle/models"
	"scoutpost/internal/lifecycle/ports"
	dErrors "scoutpost/pkg/domain-errors"
	"scoutpost/pkg/requestcontext"
)

const defaultConcurrency = 8

// Service assembles export bundles.
type Service struct {
	catalog *catalog.Catalog
	docs    ports.DocumentStore

	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	concurrency    int
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithConcurrency bounds how many collections are queried in parallel.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(cat *catalog.Catalog, docs ports.DocumentStore, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, errors.New("relation catalog is required")
	}
	if docs == nil {
		return nil, errors.New("document store is required")
	}
	s := &Service{
		catalog:     cat,
		docs:        docs,
		logger:      slog.Default(),
		tracer:      otel.Tracer("scoutpost/lifecycle/export"),
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Assemble builds the subject's export bundle. Sections are keyed by entity
// type and hold verbatim record copies; an applicable entity type with no
// records still appears as an empty section so the recipient can tell
// "nothing stored" from "not covered".
func (s *Service) Assemble(ctx context.Context, subjectID string, role models.Role) (*models.ExportBundle, error) {
	if subjectID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject id must not be empty")
	}
	if !role.Valid() {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", role)
	}

	ctx, span := s.tracer.Start(ctx, "export.Assemble",
		trace.WithAttributes(attribute.String("subject_id", subjectID)))
	defer span.End()

	start := s.now()
	entries := s.catalog.EntriesApplicableTo(role)

	bundle := &models.ExportBundle{
		SubjectID:   subjectID,
		GeneratedAt: start.UTC(),
		Sections:    make(map[string][]models.RawRecord, len(entries)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, entry := range entries {
		g.Go(func() error {
			records, err := s.docs.Query(gctx, entry.CollectionName(), entry.QueryField, subjectID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeTransientStore, "query "+entry.CollectionName())
			}
			section := make([]models.RawRecord, 0, len(records))
			for _, r := range records {
				section = append(section, r.Clone())
			}
			mu.Lock()
			bundle.Sections[entry.EntityType] = section
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	event := audit.Event{
		Action:    audit.ActionExportGenerated,
		SubjectID: subjectID,
	}
	if actor := requestcontext.ActorID(ctx); actor != "" {
		event.ActorID = actor
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, event,
		"subject_id", subjectID, "sections", len(bundle.Sections))
	if s.metrics != nil {
		s.metrics.ObserveExport(s.now().Sub(start))
	}
	return bundle, nil
}
