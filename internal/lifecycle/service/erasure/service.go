// Package erasure implements the cascade orchestrator: it walks the relation
// catalog in order, applies each entry's policy to the subject's records, and
// revokes the subject's credentials last.
//
// Execution is at-least-once with effectively-once outcomes: every completed
// step is recorded in the durable ledger before the cascade moves on, and a
// resumed cascade skips ledgered steps. All record mutations are idempotent,
// so a crash between a mutation and its ledger write costs one harmless
// re-execution.
package erasure

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"scoutpost/internal/lifecycle/audit"
	"scoutpost/internal/lifecycle/catalog"
	"scoutpost/internal/lifecycle/metrics"
	"scoutpost/internal/lifecycle/models"
	"scoutpost/internal/lifecycle/ports"
	dErrors "scoutpost/pkg/domain-errors"
	"scoutpost/pkg/platform/sentinel"
	"scoutpost/pkg/requestcontext"
)

// EntityIdentityCredentials is the step key under which credential revocation
// is reported. It is not a catalog entry: revocation always runs last and is
// idempotent at the provider, so it needs no ledger record.
const EntityIdentityCredentials = "identityCredentials"

const (
	defaultStepTimeout       = 30 * time.Second
	defaultRetryMaxAttempts  = 3
	defaultRetryInitialDelay = 250 * time.Millisecond
)

// Service runs erasure cascades. One instance is shared by the worker pool;
// per-subject exclusion comes from the SubjectLocker, not from the service.
type Service struct {
	catalog *catalog.Catalog
	docs    ports.DocumentStore
	blobs   ports.BlobStore
	ledger  ports.LedgerStore
	jobs    ports.JobStore
	revoker ports.IdentityRevoker
	locker  ports.SubjectLocker

	logger         *slog.Logger
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	stepTimeout       time.Duration
	retryMaxAttempts  int
	retryInitialDelay time.Duration
	now               func() time.Time
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

// WithStepTimeout bounds each execution attempt of a single cascade step.
func WithStepTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.stepTimeout = d
	}
}

// WithRetry configures the per-step retry budget for transient store
// failures. maxAttempts counts the first attempt and is clamped to at least
// one so a zero from configuration never unbounds the budget.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(s *Service) {
		if maxAttempts < 1 {
			maxAttempts = 1
		}
		s.retryMaxAttempts = maxAttempts
		s.retryInitialDelay = initialDelay
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs the orchestrator. All stores, the revoker and the locker are
// required; the blob store may be nil only when no catalog entry owns blobs.
func New(
	cat *catalog.Catalog,
	docs ports.DocumentStore,
	blobs ports.BlobStore,
	ledger ports.LedgerStore,
	jobs ports.JobStore,
	revoker ports.IdentityRevoker,
	locker ports.SubjectLocker,
	opts ...Option,
) (*Service, error) {
	if cat == nil {
		return nil, errors.New("relation catalog is required")
	}
	if docs == nil || ledger == nil || jobs == nil {
		return nil, errors.New("document, ledger and job stores are required")
	}
	if revoker == nil {
		return nil, errors.New("identity revoker is required")
	}
	if locker == nil {
		return nil, errors.New("subject locker is required")
	}
	if blobs == nil {
		for _, e := range cat.Entries() {
			if e.BlobPrefix != "" {
				return nil, errors.New("catalog owns blobs but no blob store is configured")
			}
		}
	}

	s := &Service{
		catalog:           cat,
		docs:              docs,
		blobs:             blobs,
		ledger:            ledger,
		jobs:              jobs,
		revoker:           revoker,
		locker:            locker,
		logger:            slog.Default(),
		tracer:            otel.Tracer("scoutpost/lifecycle/erasure"),
		stepTimeout:       defaultStepTimeout,
		retryMaxAttempts:  defaultRetryMaxAttempts,
		retryInitialDelay: defaultRetryInitialDelay,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Prepare validates an erasure request and returns the subject's job plus
// whether the caller should enqueue it for execution.
//
// Repeat requests are resolved from the existing job: COMPLETE returns the
// finished job without enqueueing, PENDING and PARTIAL return the job for
// (re-)enqueueing, IN_PROGRESS fails with job_already_running, and FAILED
// fails with policy_violation because a failed cascade needs operator
// intervention before it may run again.
func (s *Service) Prepare(ctx context.Context, subjectID string, role models.Role) (*models.ErasureJob, bool, error) {
	if subjectID == "" {
		return nil, false, dErrors.New(dErrors.CodeBadRequest, "subject id must not be empty")
	}
	if !role.Valid() {
		return nil, false, dErrors.Newf(dErrors.CodeBadRequest, "unknown role %q", role)
	}

	existing, err := s.jobs.GetBySubject(ctx, subjectID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeTransientStore, "load erasure job")
	}
	if existing != nil {
		return s.arbitrate(existing)
	}

	job := &models.ErasureJob{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Role:      role,
		Status:    models.JobStatusPending,
		StartedAt: s.now().UTC(),
	}
	err = s.jobs.Create(ctx, job)
	if errors.Is(err, sentinel.ErrConflict) {
		// Lost a first-request race; the job the other writer inserted is the
		// subject's job.
		winner, loadErr := s.jobs.GetBySubject(ctx, subjectID)
		if loadErr != nil {
			return nil, false, dErrors.Wrap(loadErr, dErrors.CodeTransientStore, "load erasure job")
		}
		return s.arbitrate(winner)
	}
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeTransientStore, "create erasure job")
	}
	return job, true, nil
}

// arbitrate resolves a repeat request against the subject's existing job.
func (s *Service) arbitrate(existing *models.ErasureJob) (*models.ErasureJob, bool, error) {
	switch existing.Status {
	case models.JobStatusComplete:
		return existing, false, nil
	case models.JobStatusFailed:
		return existing, false, dErrors.Newf(dErrors.CodePolicyViolation,
			"erasure job %s failed on a policy violation and requires operator intervention", existing.ID)
	case models.JobStatusInProgress:
		return existing, false, dErrors.Newf(dErrors.CodeJobAlreadyRunning,
			"erasure job %s is already running for this subject", existing.ID)
	default:
		// PENDING or PARTIAL: hand the same job back for execution.
		return existing, true, nil
	}
}

// JobByID returns the job snapshot for status polling.
func (s *Service) JobByID(ctx context.Context, jobID string) (*models.ErasureJob, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "erasure job %s not found", jobID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransientStore, "load erasure job")
	}
	return job, nil
}

// JobBySubject returns the subject's job snapshot.
func (s *Service) JobBySubject(ctx context.Context, subjectID string) (*models.ErasureJob, error) {
	job, err := s.jobs.GetBySubject(ctx, subjectID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no erasure job for subject %s", subjectID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransientStore, "load erasure job")
	}
	return job, nil
}

// Execute runs the subject's cascade to a terminal or resumable state under
// the subject lock. The returned job reflects the final snapshot even when an
// error is returned; callers get partial_cascade, policy_violation or
// auth_revocation errors depending on where the run stopped.
func (s *Service) Execute(ctx context.Context, subjectID string) (*models.ErasureJob, error) {
	ctx, span := s.tracer.Start(ctx, "erasure.Execute",
		trace.WithAttributes(attribute.String("subject_id", subjectID)))
	defer span.End()

	unlock, err := s.locker.Acquire(ctx, subjectID)
	if errors.Is(err, sentinel.ErrConflict) {
		return nil, dErrors.New(dErrors.CodeJobAlreadyRunning, "another erasure job holds the subject lock")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransientStore, "acquire subject lock")
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to release subject lock", "subject_id", subjectID, "error", err)
		}
	}()

	job, err := s.jobs.GetBySubject(ctx, subjectID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no erasure job for subject %s", subjectID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTransientStore, "load erasure job")
	}

	switch job.Status {
	case models.JobStatusComplete:
		return job, nil
	case models.JobStatusFailed:
		return job, dErrors.Newf(dErrors.CodePolicyViolation,
			"erasure job %s failed on a policy violation and requires operator intervention", job.ID)
	}

	// A stored IN_PROGRESS job under a freshly acquired lock means a previous
	// run died mid-cascade; the ledger makes re-running it safe.
	resumed := job.Status == models.JobStatusPartial ||
		job.Status == models.JobStatusInProgress

	return s.run(ctx, job, resumed)
}

func (s *Service) run(ctx context.Context, job *models.ErasureJob, resumed bool) (*models.ErasureJob, error) {
	start := s.now()

	job.Status = models.JobStatusInProgress
	if err := s.jobs.Save(ctx, job); err != nil {
		return job, dErrors.Wrap(err, dErrors.CodeTransientStore, "save erasure job")
	}
	if s.metrics != nil {
		s.metrics.JobsStarted.Inc()
	}
	action := audit.ActionJobStarted
	if resumed {
		action = audit.ActionJobResumed
	}
	s.audit(ctx, audit.Event{
		Action:    action,
		SubjectID: job.SubjectID,
		JobID:     job.ID,
	}, "subject_id", job.SubjectID, "job_id", job.ID, "role", job.Role)

	for _, entry := range s.catalog.EntriesApplicableTo(job.Role) {
		// Cancellation is honored only between steps so a step is never left
		// half-applied by our own doing.
		if err := ctx.Err(); err != nil {
			return s.halt(ctx, job, start, dErrors.Wrap(err, dErrors.CodePartialCascade, "cascade cancelled"))
		}

		done, err := s.ledger.HasCompleted(ctx, job.SubjectID, entry.EntityType)
		if err != nil {
			return s.haltOnStep(ctx, job, start, entry.EntityType,
				dErrors.Wrap(err, dErrors.CodeTransientStore, "read erasure ledger"))
		}
		if done {
			s.recordStep(job, models.StepResult{
				EntityType:  entry.EntityType,
				Outcome:     models.StepOutcomeSkipped,
				CompletedAt: s.now().UTC(),
			})
			s.audit(ctx, audit.Event{
				Action:     audit.ActionStepSkipped,
				SubjectID:  job.SubjectID,
				JobID:      job.ID,
				EntityType: entry.EntityType,
				Outcome:    string(models.StepOutcomeSkipped),
			}, "subject_id", job.SubjectID, "entity_type", entry.EntityType)
			if s.metrics != nil {
				s.metrics.ObserveStep(entry.EntityType, string(models.StepOutcomeSkipped), 0)
			}
			continue
		}

		affected, err := s.executeStep(ctx, job, entry)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodePolicyViolation) {
				return s.fail(ctx, job, start, entry.EntityType, err)
			}
			return s.haltOnStep(ctx, job, start, entry.EntityType, err)
		}

		if err := s.ledger.MarkCompleted(ctx, models.LedgerEntry{
			SubjectID:   job.SubjectID,
			EntityType:  entry.EntityType,
			CompletedAt: s.now().UTC(),
		}); err != nil {
			return s.haltOnStep(ctx, job, start, entry.EntityType,
				dErrors.Wrap(err, dErrors.CodeTransientStore, "write erasure ledger"))
		}

		s.recordStep(job, models.StepResult{
			EntityType:      entry.EntityType,
			RecordsAffected: affected,
			Outcome:         models.StepOutcomeOK,
			CompletedAt:     s.now().UTC(),
		})
		if err := s.jobs.Save(ctx, job); err != nil {
			return s.haltOnStep(ctx, job, start, entry.EntityType,
				dErrors.Wrap(err, dErrors.CodeTransientStore, "save erasure job"))
		}
		s.audit(ctx, audit.Event{
			Action:          audit.ActionStepCompleted,
			SubjectID:       job.SubjectID,
			JobID:           job.ID,
			EntityType:      entry.EntityType,
			Outcome:         string(models.StepOutcomeOK),
			RecordsAffected: affected,
		}, "subject_id", job.SubjectID, "entity_type", entry.EntityType, "records_affected", affected)
		if s.metrics != nil {
			s.metrics.ObserveStep(entry.EntityType, string(models.StepOutcomeOK), affected)
		}
	}

	// Credential revocation runs strictly last: a subject who can still log
	// in sees an emptied account, a subject who cannot log in but still has
	// data is a compliance failure.
	if err := s.revokeIdentity(ctx, job); err != nil {
		s.recordStep(job, models.StepResult{
			EntityType:  EntityIdentityCredentials,
			Outcome:     models.StepOutcomeError,
			ErrorKind:   string(dErrors.CodeAuthRevocation),
			CompletedAt: s.now().UTC(),
		})
		job.Status = models.JobStatusPartial
		if saveErr := s.jobs.Save(ctx, job); saveErr != nil {
			s.logger.ErrorContext(ctx, "failed to save partial erasure job", "job_id", job.ID, "error", saveErr)
		}
		s.audit(ctx, audit.Event{
			Action:     audit.ActionJobPartial,
			SubjectID:  job.SubjectID,
			JobID:      job.ID,
			EntityType: EntityIdentityCredentials,
			Detail:     err.Error(),
		}, "subject_id", job.SubjectID, "job_id", job.ID, "error", err)
		if s.metrics != nil {
			s.metrics.ObserveCascade(string(models.JobStatusPartial), s.now().Sub(start))
		}
		return job, dErrors.Wrap(err, dErrors.CodeAuthRevocation,
			"subject data erased but credential revocation failed; escalate to the identity provider")
	}
	s.recordStep(job, models.StepResult{
		EntityType:  EntityIdentityCredentials,
		Outcome:     models.StepOutcomeOK,
		CompletedAt: s.now().UTC(),
	})
	s.audit(ctx, audit.Event{
		Action:    audit.ActionIdentityRevoked,
		SubjectID: job.SubjectID,
		JobID:     job.ID,
	}, "subject_id", job.SubjectID, "job_id", job.ID)

	now := s.now().UTC()
	job.Status = models.JobStatusComplete
	job.CompletedAt = &now
	if err := s.jobs.Save(ctx, job); err != nil {
		// The cascade itself finished; losing the final snapshot only costs
		// one no-op resume.
		return job, dErrors.Wrap(err, dErrors.CodeTransientStore, "save erasure job")
	}
	s.audit(ctx, audit.Event{
		Action:    audit.ActionJobCompleted,
		SubjectID: job.SubjectID,
		JobID:     job.ID,
	}, "subject_id", job.SubjectID, "job_id", job.ID)
	if s.metrics != nil {
		s.metrics.ObserveCascade(string(models.JobStatusComplete), s.now().Sub(start))
	}
	return job, nil
}

// executeStep applies one catalog entry with the retry budget. Only transient
// failures are retried; policy violations surface immediately.
func (s *Service) executeStep(ctx context.Context, job *models.ErasureJob, entry catalog.RelationEntry) (int, error) {
	ctx, span := s.tracer.Start(ctx, "erasure.step",
		trace.WithAttributes(
			attribute.String("entity_type", entry.EntityType),
			attribute.String("policy", string(entry.Policy)),
		))
	defer span.End()

	var affected int
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()

		n, err := s.applyEntry(attemptCtx, job.SubjectID, entry)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodePolicyViolation) {
				return backoff.Permanent(err)
			}
			return err
		}
		affected = n
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInitialDelay

	err := backoff.RetryNotify(operation,
		backoff.WithMaxRetries(backoff.WithContext(policy, ctx), uint64(s.retryMaxAttempts-1)),
		func(err error, next time.Duration) {
			s.logger.WarnContext(ctx, "cascade step failed, retrying",
				"subject_id", job.SubjectID,
				"entity_type", entry.EntityType,
				"retry_in", next,
				"error", err)
			if s.metrics != nil {
				s.metrics.StepRetries.WithLabelValues(entry.EntityType).Inc()
			}
		})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// applyEntry performs one attempt of one step: query matching records, delete
// owned blobs first for blob-owning entries, then apply the policy's writes.
func (s *Service) applyEntry(ctx context.Context, subjectID string, entry catalog.RelationEntry) (int, error) {
	records, err := s.docs.Query(ctx, entry.CollectionName(), entry.QueryField, subjectID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeTransientStore, "query "+entry.CollectionName())
	}

	// Blobs go before documents. Once the document is gone nothing references
	// the blob keys, and an orphaned blob is an erasure failure that no
	// resume could find again.
	if prefix := entry.BlobPrefixFor(subjectID); prefix != "" {
		deleted, err := s.blobs.ListAndDelete(ctx, prefix)
		if err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeTransientStore, "delete blobs under "+prefix)
		}
		if deleted > 0 {
			s.logger.InfoContext(ctx, "deleted subject blobs",
				"subject_id", subjectID, "entity_type", entry.EntityType, "blobs", deleted)
		}
	}

	if len(records) == 0 {
		return 0, nil
	}

	ops := make([]models.Op, 0, len(records))
	for _, record := range records {
		switch entry.Policy {
		case models.PolicyHardDelete:
			ops = append(ops, models.DeleteOp(record.ID))
		case models.PolicyAnonymize:
			ops = append(ops, models.UpdateOp(record.ID, entry.AnonymizeFields))
		case models.PolicyDetach:
			fields := make(map[string]any, len(entry.DetachFields))
			for _, f := range entry.DetachFields {
				fields[f] = nil
			}
			ops = append(ops, models.UpdateOp(record.ID, fields))
		default:
			return 0, dErrors.Newf(dErrors.CodePolicyViolation,
				"entry %q has unknown policy %q", entry.EntityType, entry.Policy)
		}
	}
	if err := s.docs.BatchApply(ctx, entry.CollectionName(), ops); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeTransientStore, "apply "+entry.CollectionName())
	}
	return len(records), nil
}

func (s *Service) revokeIdentity(ctx context.Context, job *models.ErasureJob) error {
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
		defer cancel()
		return s.revoker.RevokeIdentity(attemptCtx, job.SubjectID)
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInitialDelay

	return backoff.RetryNotify(operation,
		backoff.WithMaxRetries(backoff.WithContext(policy, ctx), uint64(s.retryMaxAttempts-1)),
		func(err error, next time.Duration) {
			s.logger.WarnContext(ctx, "credential revocation failed, retrying",
				"subject_id", job.SubjectID, "retry_in", next, "error", err)
			if s.metrics != nil {
				s.metrics.StepRetries.WithLabelValues(EntityIdentityCredentials).Inc()
			}
		})
}

// haltOnStep records the failed step and parks the job as PARTIAL.
func (s *Service) haltOnStep(ctx context.Context, job *models.ErasureJob, start time.Time, entityType string, cause error) (*models.ErasureJob, error) {
	s.recordStep(job, models.StepResult{
		EntityType:  entityType,
		Outcome:     models.StepOutcomeError,
		ErrorKind:   string(dErrors.CodeOf(cause)),
		CompletedAt: s.now().UTC(),
	})
	s.audit(ctx, audit.Event{
		Action:     audit.ActionStepFailed,
		SubjectID:  job.SubjectID,
		JobID:      job.ID,
		EntityType: entityType,
		Outcome:    string(models.StepOutcomeError),
		Detail:     cause.Error(),
	}, "subject_id", job.SubjectID, "entity_type", entityType, "error", cause)
	if s.metrics != nil {
		s.metrics.ObserveStep(entityType, string(models.StepOutcomeError), 0)
	}
	return s.halt(ctx, job, start, dErrors.Wrap(cause, dErrors.CodePartialCascade,
		"cascade halted at "+entityType))
}

// halt parks the job as PARTIAL so the next request resumes it.
func (s *Service) halt(ctx context.Context, job *models.ErasureJob, start time.Time, cause error) (*models.ErasureJob, error) {
	job.Status = models.JobStatusPartial
	if err := s.jobs.Save(context.WithoutCancel(ctx), job); err != nil {
		s.logger.ErrorContext(ctx, "failed to save partial erasure job", "job_id", job.ID, "error", err)
	}
	s.audit(ctx, audit.Event{
		Action:    audit.ActionJobPartial,
		SubjectID: job.SubjectID,
		JobID:     job.ID,
		Detail:    cause.Error(),
	}, "subject_id", job.SubjectID, "job_id", job.ID, "error", cause)
	if s.metrics != nil {
		s.metrics.ObserveCascade(string(models.JobStatusPartial), s.now().Sub(start))
	}
	return job, cause
}

// fail marks the job FAILED. Policy violations are configuration bugs;
// re-running cannot fix them, so the job does not resume.
func (s *Service) fail(ctx context.Context, job *models.ErasureJob, start time.Time, entityType string, cause error) (*models.ErasureJob, error) {
	s.recordStep(job, models.StepResult{
		EntityType:  entityType,
		Outcome:     models.StepOutcomeError,
		ErrorKind:   string(dErrors.CodePolicyViolation),
		CompletedAt: s.now().UTC(),
	})
	now := s.now().UTC()
	job.Status = models.JobStatusFailed
	job.CompletedAt = &now
	if err := s.jobs.Save(context.WithoutCancel(ctx), job); err != nil {
		s.logger.ErrorContext(ctx, "failed to save failed erasure job", "job_id", job.ID, "error", err)
	}
	s.audit(ctx, audit.Event{
		Action:     audit.ActionJobFailed,
		SubjectID:  job.SubjectID,
		JobID:      job.ID,
		EntityType: entityType,
		Detail:     cause.Error(),
	}, "subject_id", job.SubjectID, "job_id", job.ID, "entity_type", entityType, "error", cause)
	if s.metrics != nil {
		s.metrics.ObserveCascade(string(models.JobStatusFailed), s.now().Sub(start))
	}
	return job, cause
}

// recordStep upserts a step result into the job snapshot. A step that already
// completed successfully is never overwritten; it anchors idempotent resume
// reporting.
func (s *Service) recordStep(job *models.ErasureJob, result models.StepResult) {
	for i, existing := range job.Steps {
		if existing.EntityType != result.EntityType {
			continue
		}
		if existing.Outcome == models.StepOutcomeOK {
			return
		}
		job.Steps[i] = result
		return
	}
	job.Steps = append(job.Steps, result)
}

func (s *Service) audit(ctx context.Context, event audit.Event, kv ...any) {
	if actor := requestcontext.ActorID(ctx); actor != "" {
		event.ActorID = actor
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, event, kv...)
}
