package erasure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"scoutpost/internal/lifecycle/audit"
	"scoutpost/internal/lifecycle/catalog"
	"scoutpost/internal/lifecycle/lock"
	"scoutpost/internal/lifecycle/models"
	blobStore "scoutpost/internal/lifecycle/store/blob"
	documentStore "scoutpost/internal/lifecycle/store/document"
	jobStore "scoutpost/internal/lifecycle/store/job"
	ledgerStore "scoutpost/internal/lifecycle/store/ledger"
	dErrors "scoutpost/pkg/domain-errors"
	"scoutpost/pkg/platform/sentinel"
)

// =============================================================================
// Test Doubles
// =============================================================================

// flakyDocs wraps the in-memory document store and fails Query for one
// collection a configurable number of times, counting queries per collection
// so tests can prove a step was not re-executed on resume.
type flakyDocs struct {
	*documentStore.InMemoryStore

	mu             sync.Mutex
	failCollection string
	failuresLeft   int
	queryCount     map[string]int
}

func newFlakyDocs(inner *documentStore.InMemoryStore) *flakyDocs {
	return &flakyDocs{InMemoryStore: inner, queryCount: make(map[string]int)}
}

func (f *flakyDocs) failOn(collection string, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failCollection = collection
	f.failuresLeft = times
}

func (f *flakyDocs) queries(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCount[collection]
}

func (f *flakyDocs) Query(ctx context.Context, collection, field, value string) ([]models.RawRecord, error) {
	f.mu.Lock()
	f.queryCount[collection]++
	shouldFail := collection == f.failCollection && f.failuresLeft > 0
	if shouldFail {
		f.failuresLeft--
	}
	f.mu.Unlock()

	if shouldFail {
		return nil, dErrors.New(dErrors.CodeTransientStore, "simulated store outage")
	}
	return f.InMemoryStore.Query(ctx, collection, field, value)
}

// fakeRevoker counts revocations and fails the first failuresLeft calls.
type fakeRevoker struct {
	mu           sync.Mutex
	calls        int
	failuresLeft int
}

func (f *fakeRevoker) failTimes(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failuresLeft = n
}

func (f *fakeRevoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRevoker) RevokeIdentity(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return dErrors.New(dErrors.CodeTransientStore, "identity provider unavailable")
	}
	return nil
}

// callSequence collects store calls in invocation order so ordering tests can
// assert blob deletion happens before the owning document batch.
type callSequence struct {
	mu    sync.Mutex
	calls []string
}

func (c *callSequence) record(call string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
}

func (c *callSequence) indexOf(call string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, got := range c.calls {
		if got == call {
			return i
		}
	}
	return -1
}

type sequencedBlobs struct {
	*blobStore.InMemoryStore
	seq *callSequence
}

func (b *sequencedBlobs) ListAndDelete(ctx context.Context, prefix string) (int, error) {
	b.seq.record("blobs " + prefix)
	return b.InMemoryStore.ListAndDelete(ctx, prefix)
}

type sequencedDocs struct {
	*flakyDocs
	seq *callSequence
}

func (d *sequencedDocs) BatchApply(ctx context.Context, collection string, ops []models.Op) error {
	d.seq.record("docs " + collection)
	return d.flakyDocs.BatchApply(ctx, collection, ops)
}

// racingJobs misses the first n subject lookups even when a job exists,
// staging the window where two first requests both believe no job is stored.
type racingJobs struct {
	*jobStore.InMemoryStore
	mu         sync.Mutex
	missesLeft int
}

func (r *racingJobs) missLookups(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missesLeft = n
}

func (r *racingJobs) GetBySubject(ctx context.Context, subjectID string) (*models.ErasureJob, error) {
	r.mu.Lock()
	miss := r.missesLeft > 0
	if miss {
		r.missesLeft--
	}
	r.mu.Unlock()

	if miss {
		return nil, sentinel.ErrNotFound
	}
	return r.InMemoryStore.GetBySubject(ctx, subjectID)
}

// =============================================================================
// Erasure Service Test Suite
// =============================================================================
// Justification for unit tests: the cascade state machine (ordering, ledger
// skip on resume, retry budgets, terminal transitions) is the compliance core
// and must be exercised against precise failure injections that E2E tests
// cannot stage.

type ErasureServiceSuite struct {
	suite.Suite

	docs       *flakyDocs
	blobs      *blobStore.InMemoryStore
	ledger     *ledgerStore.InMemoryStore
	jobs       *jobStore.InMemoryStore
	revoker    *fakeRevoker
	auditStore *audit.InMemoryStore
	service    *Service
}

func TestErasureServiceSuite(t *testing.T) {
	suite.Run(t, new(ErasureServiceSuite))
}

func (s *ErasureServiceSuite) SetupTest() {
	s.docs = newFlakyDocs(documentStore.NewInMemoryStore())
	s.blobs = blobStore.NewInMemoryStore()
	s.ledger = ledgerStore.NewInMemoryStore()
	s.jobs = jobStore.NewInMemoryStore()
	s.revoker = &fakeRevoker{}
	s.auditStore = audit.NewInMemoryStore()

	var err error
	s.service, err = New(
		catalog.Default(),
		s.docs,
		s.blobs,
		s.ledger,
		s.jobs,
		s.revoker,
		lock.NewInMemoryLocker(),
		WithAuditPublisher(audit.NewPublisher(s.auditStore)),
		WithRetry(3, time.Millisecond),
	)
	s.Require().NoError(err)

	s.seedScenario()
}

// seedScenario loads a small unit: scout s1 (the erasure subject), scout s2,
// and guardian g9 linked to s1.
func (s *ErasureServiceSuite) seedScenario() {
	s.docs.Seed("profiles",
		models.RawRecord{ID: "p1", Fields: map[string]any{"subjectId": "s1", "displayName": "Alex", "email": "alex@example.org"}},
		models.RawRecord{ID: "p2", Fields: map[string]any{"subjectId": "s2", "displayName": "Sam"}},
		models.RawRecord{ID: "p3", Fields: map[string]any{"subjectId": "g9", "displayName": "Robin"}},
	)
	s.docs.Seed("unitRosters",
		models.RawRecord{ID: "r1", Fields: map[string]any{"memberId": "s1", "unit": "Foxes"}},
		models.RawRecord{ID: "r2", Fields: map[string]any{"memberId": "s2", "unit": "Foxes"}},
	)
	s.docs.Seed("guardianLinks",
		models.RawRecord{ID: "g1", Fields: map[string]any{"scoutId": "s1", "guardianId": "g9"}},
		models.RawRecord{ID: "g2", Fields: map[string]any{"scoutId": "s2", "guardianId": "g9"}},
	)
	s.docs.Seed("channelMessages",
		models.RawRecord{ID: "m1", Fields: map[string]any{"authorId": "s1", "authorName": "Alex", "body": "see you at camp"}},
		models.RawRecord{ID: "m2", Fields: map[string]any{"authorId": "s2", "authorName": "Sam", "body": "bring a torch"}},
	)
	s.docs.Seed("activityComments",
		models.RawRecord{ID: "c1", Fields: map[string]any{"authorId": "s1", "authorName": "Alex", "text": "great hike"}},
	)
	s.docs.Seed("challengeSubmissions",
		models.RawRecord{ID: "sub1", Fields: map[string]any{"subjectId": "s1", "challenge": "knots"}},
	)
	s.docs.Seed("challengeLeaderboard",
		models.RawRecord{ID: "lb1", Fields: map[string]any{"subjectId": "s1", "displayName": "Alex", "score": 42}},
	)
	s.docs.Seed("healthRecords",
		models.RawRecord{ID: "h1", Fields: map[string]any{"subjectId": "s1", "allergies": "pollen"}},
	)
	s.docs.Seed("deviceTokens",
		models.RawRecord{ID: "d1", Fields: map[string]any{"subjectId": "s1", "token": "tok-1"}},
	)

	s.blobs.Put("avatars/s1/avatar.png", []byte{1})
	s.blobs.Put("avatars/s2/avatar.png", []byte{2})
	s.blobs.Put("generated/s1/badge.png", []byte{3})
}

func (s *ErasureServiceSuite) executeFor(subjectID string, role models.Role) (*models.ErasureJob, error) {
	ctx := context.Background()
	job, enqueue, err := s.service.Prepare(ctx, subjectID, role)
	s.Require().NoError(err)
	s.Require().True(enqueue)
	s.Require().Equal(models.JobStatusPending, job.Status)
	return s.service.Execute(ctx, subjectID)
}

func (s *ErasureServiceSuite) stepOutcome(job *models.ErasureJob, entityType string) (models.StepResult, bool) {
	for _, step := range job.Steps {
		if step.EntityType == entityType {
			return step, true
		}
	}
	return models.StepResult{}, false
}

func (s *ErasureServiceSuite) auditActions() []audit.Action {
	var out []audit.Action
	for _, e := range s.auditStore.All() {
		out = append(out, e.Action)
	}
	return out
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ErasureServiceSuite) TestNew() {
	s.Run("nil catalog returns error", func() {
		_, err := New(nil, s.docs, s.blobs, s.ledger, s.jobs, s.revoker, lock.NewInMemoryLocker())
		s.Error(err)
	})

	s.Run("nil blob store with blob-owning catalog returns error", func() {
		_, err := New(catalog.Default(), s.docs, nil, s.ledger, s.jobs, s.revoker, lock.NewInMemoryLocker())
		s.Error(err)
		s.Contains(err.Error(), "blob store")
	})
}

// =============================================================================
// Full Cascade Tests
// =============================================================================

func (s *ErasureServiceSuite) TestScoutCascadeCompletes() {
	ctx := context.Background()

	job, err := s.executeFor("s1", models.RoleScout)
	s.Require().NoError(err)
	s.Equal(models.JobStatusComplete, job.Status)
	s.Require().NotNil(job.CompletedAt)

	s.Run("hard-deleted collections keep only other subjects", func() {
		_, ok := s.docs.Get("profiles", "p1")
		s.False(ok)
		_, ok = s.docs.Get("profiles", "p2")
		s.True(ok)
		s.Equal(0, s.docs.Count("healthRecords"))
		s.Equal(0, s.docs.Count("challengeSubmissions"))
		s.Equal(0, s.docs.Count("deviceTokens"))

		_, ok = s.docs.Get("guardianLinks", "g1")
		s.False(ok)
		_, ok = s.docs.Get("guardianLinks", "g2")
		s.True(ok)
	})

	s.Run("anonymized records keep content fields", func() {
		m1, ok := s.docs.Get("channelMessages", "m1")
		s.Require().True(ok)
		s.Equal(models.SentinelSubjectID, m1.Fields["authorId"])
		s.Equal(models.SentinelDisplayName, m1.Fields["authorName"])
		s.Equal("see you at camp", m1.Fields["body"])

		m2, ok := s.docs.Get("channelMessages", "m2")
		s.Require().True(ok)
		s.Equal("s2", m2.Fields["authorId"])
	})

	s.Run("detached records survive without the reference", func() {
		r1, ok := s.docs.Get("unitRosters", "r1")
		s.Require().True(ok)
		s.Nil(r1.Fields["memberId"])
		s.Equal("Foxes", r1.Fields["unit"])

		lb1, ok := s.docs.Get("challengeLeaderboard", "lb1")
		s.Require().True(ok)
		s.Nil(lb1.Fields["subjectId"])
		s.Nil(lb1.Fields["displayName"])
		s.Equal(42, lb1.Fields["score"])
	})

	s.Run("subject blobs are gone, other subjects' remain", func() {
		s.Equal(0, s.blobs.CountWithPrefix("avatars/s1/"))
		s.Equal(0, s.blobs.CountWithPrefix("generated/s1/"))
		s.Equal(1, s.blobs.CountWithPrefix("avatars/s2/"))
	})

	s.Run("credentials revoked once, reported as the last step", func() {
		s.Equal(1, s.revoker.callCount())
		last := job.Steps[len(job.Steps)-1]
		s.Equal(EntityIdentityCredentials, last.EntityType)
		s.Equal(models.StepOutcomeOK, last.Outcome)
	})

	s.Run("ledger holds every applicable step", func() {
		entries, err := s.ledger.StepsFor(ctx, "s1")
		s.Require().NoError(err)
		s.Len(entries, len(catalog.Default().EntriesApplicableTo(models.RoleScout)))
	})

	s.Run("repeat request is idempotent", func() {
		again, enqueue, err := s.service.Prepare(ctx, "s1", models.RoleScout)
		s.Require().NoError(err)
		s.False(enqueue)
		s.Equal(job.ID, again.ID)

		done, err := s.service.Execute(ctx, "s1")
		s.Require().NoError(err)
		s.Equal(models.JobStatusComplete, done.Status)
		s.Equal(1, s.revoker.callCount())
	})

	s.Run("audit trail frames the run", func() {
		actions := s.auditActions()
		s.Equal(audit.ActionJobStarted, actions[0])
		s.Equal(audit.ActionJobCompleted, actions[len(actions)-1])
		s.Contains(actions, audit.ActionIdentityRevoked)
	})
}

func (s *ErasureServiceSuite) TestGuardianCascadeSkipsScoutOnlyEntries() {
	job, err := s.executeFor("g9", models.RoleGuardian)
	s.Require().NoError(err)
	s.Equal(models.JobStatusComplete, job.Status)

	// Both links held by the guardian are gone; scout-only entries never ran.
	s.Equal(0, s.docs.Count("guardianLinks"))
	_, ok := s.stepOutcome(job, "healthRecords")
	s.False(ok)
	_, ok = s.stepOutcome(job, "challengeSubmissions")
	s.False(ok)
	_, ok = s.stepOutcome(job, "guardianLinksHeld")
	s.True(ok)

	// The guardian's profile is erased; the scouts keep theirs.
	_, ok = s.docs.Get("profiles", "p3")
	s.False(ok)
	_, ok = s.docs.Get("profiles", "p1")
	s.True(ok)
}

func (s *ErasureServiceSuite) TestBlobsAreDeletedBeforeTheirDocuments() {
	seq := &callSequence{}
	docs := &sequencedDocs{flakyDocs: s.docs, seq: seq}
	blobs := &sequencedBlobs{InMemoryStore: s.blobs, seq: seq}

	svc, err := New(catalog.Default(), docs, blobs, s.ledger, s.jobs, s.revoker,
		lock.NewInMemoryLocker(), WithRetry(3, time.Millisecond))
	s.Require().NoError(err)

	ctx := context.Background()
	_, enqueue, err := svc.Prepare(ctx, "s1", models.RoleScout)
	s.Require().NoError(err)
	s.Require().True(enqueue)

	job, err := svc.Execute(ctx, "s1")
	s.Require().NoError(err)
	s.Require().Equal(models.JobStatusComplete, job.Status)

	// A crash between the document delete and the blob delete would orphan
	// blobs that no record references and no resume could find, so each
	// blob-owning step must empty its prefix before touching the documents.
	for prefix, collection := range map[string]string{
		"avatars/s1/":   "profiles",
		"generated/s1/": "challengeSubmissions",
	} {
		blobCall := seq.indexOf("blobs " + prefix)
		docCall := seq.indexOf("docs " + collection)
		s.Require().GreaterOrEqual(blobCall, 0, "blob deletion for %s never ran", prefix)
		s.Require().GreaterOrEqual(docCall, 0, "document batch for %s never ran", collection)
		s.Less(blobCall, docCall, "blobs under %s must be deleted before the %s batch", prefix, collection)
	}
}

// =============================================================================
// Retry and Resume Tests
// =============================================================================

func (s *ErasureServiceSuite) TestTransientFailureIsRetriedWithinBudget() {
	s.docs.failOn("healthRecords", 2)

	job, err := s.executeFor("s1", models.RoleScout)
	s.Require().NoError(err)
	s.Equal(models.JobStatusComplete, job.Status)

	step, ok := s.stepOutcome(job, "healthRecords")
	s.Require().True(ok)
	s.Equal(models.StepOutcomeOK, step.Outcome)
	s.Equal(1, step.RecordsAffected)
	s.Equal(3, s.docs.queries("healthRecords"))
}

func (s *ErasureServiceSuite) TestZeroRetryBudgetMeansOneAttempt() {
	svc, err := New(catalog.Default(), s.docs, s.blobs, s.ledger, s.jobs, s.revoker,
		lock.NewInMemoryLocker(), WithRetry(0, time.Millisecond))
	s.Require().NoError(err)

	ctx := context.Background()
	s.docs.failOn("healthRecords", 1)

	_, enqueue, err := svc.Prepare(ctx, "s1", models.RoleScout)
	s.Require().NoError(err)
	s.Require().True(enqueue)

	// A single transient failure parks the job: the budget is one attempt,
	// never an underflowed unbounded one that would mask the outage.
	job, err := svc.Execute(ctx, "s1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePartialCascade))
	s.Equal(models.JobStatusPartial, job.Status)
	s.Equal(1, s.docs.queries("healthRecords"))
}

func (s *ErasureServiceSuite) TestExhaustedRetriesParkThePartialJob() {
	ctx := context.Background()
	s.docs.failOn("healthRecords", 100)

	job, err := s.executeFor("s1", models.RoleScout)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePartialCascade))
	s.Equal(models.JobStatusPartial, job.Status)

	s.Run("earlier steps completed, later steps never ran", func() {
		step, ok := s.stepOutcome(job, "challengeSubmissions")
		s.Require().True(ok)
		s.Equal(models.StepOutcomeOK, step.Outcome)

		failed, ok := s.stepOutcome(job, "healthRecords")
		s.Require().True(ok)
		s.Equal(models.StepOutcomeError, failed.Outcome)
		s.Equal(string(dErrors.CodeTransientStore), failed.ErrorKind)

		_, ok = s.docs.Get("profiles", "p1")
		s.True(ok)
		s.Equal(1, s.docs.Count("deviceTokens"))
		s.Equal(0, s.revoker.callCount())
	})

	s.Run("resume finishes under the same job without re-running done steps", func() {
		s.docs.failOn("healthRecords", 0)
		rosterQueries := s.docs.queries("unitRosters")

		resumed, enqueue, err := s.service.Prepare(ctx, "s1", models.RoleScout)
		s.Require().NoError(err)
		s.True(enqueue)
		s.Equal(job.ID, resumed.ID)

		done, err := s.service.Execute(ctx, "s1")
		s.Require().NoError(err)
		s.Equal(models.JobStatusComplete, done.Status)
		s.Equal(job.ID, done.ID)

		// Ledgered steps were skipped, not re-queried.
		s.Equal(rosterQueries, s.docs.queries("unitRosters"))

		step, ok := s.stepOutcome(done, "healthRecords")
		s.Require().True(ok)
		s.Equal(models.StepOutcomeOK, step.Outcome)
		s.Equal(0, s.docs.Count("healthRecords"))
		s.Equal(1, s.revoker.callCount())
		s.Contains(s.auditActions(), audit.ActionJobResumed)
	})
}

func (s *ErasureServiceSuite) TestRevocationFailureLeavesResumablePartial() {
	ctx := context.Background()
	s.revoker.failTimes(100)

	job, err := s.executeFor("s1", models.RoleScout)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAuthRevocation))
	s.Equal(models.JobStatusPartial, job.Status)

	// Data is gone even though the login is still live.
	_, ok := s.docs.Get("profiles", "p1")
	s.False(ok)
	step, ok := s.stepOutcome(job, EntityIdentityCredentials)
	s.Require().True(ok)
	s.Equal(models.StepOutcomeError, step.Outcome)
	s.Equal(string(dErrors.CodeAuthRevocation), step.ErrorKind)

	s.Run("resume only retries the revocation", func() {
		s.revoker.failTimes(0)
		profileQueries := s.docs.queries("profiles")

		done, err := s.service.Execute(ctx, "s1")
		s.Require().NoError(err)
		s.Equal(models.JobStatusComplete, done.Status)
		s.Equal(profileQueries, s.docs.queries("profiles"))

		step, ok := s.stepOutcome(done, EntityIdentityCredentials)
		s.Require().True(ok)
		s.Equal(models.StepOutcomeOK, step.Outcome)
	})
}

// =============================================================================
// Request Arbitration Tests
// =============================================================================

func (s *ErasureServiceSuite) TestPrepareValidation() {
	ctx := context.Background()

	_, _, err := s.service.Prepare(ctx, "", models.RoleScout)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, _, err = s.service.Prepare(ctx, "s1", models.Role("MASCOT"))
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ErasureServiceSuite) TestRacingFirstRequestsShareTheWinnersJob() {
	ctx := context.Background()
	jobs := &racingJobs{InMemoryStore: jobStore.NewInMemoryStore()}

	svc, err := New(catalog.Default(), s.docs, s.blobs, s.ledger, jobs, s.revoker,
		lock.NewInMemoryLocker(), WithRetry(3, time.Millisecond))
	s.Require().NoError(err)

	winner, enqueue, err := svc.Prepare(ctx, "s1", models.RoleScout)
	s.Require().NoError(err)
	s.Require().True(enqueue)

	// The second request checked for an existing job before the first one
	// saved; its insert loses and it must come back with the winner's job,
	// never a second id pointing at someone else's snapshot.
	jobs.missLookups(1)
	loser, enqueue, err := svc.Prepare(ctx, "s1", models.RoleScout)
	s.Require().NoError(err)
	s.True(enqueue)
	s.Equal(winner.ID, loser.ID)

	stored, err := jobs.GetBySubject(ctx, "s1")
	s.Require().NoError(err)
	s.Equal(winner.ID, stored.ID)
}

func (s *ErasureServiceSuite) TestInProgressJobRejectsSecondRequest() {
	ctx := context.Background()
	s.Require().NoError(s.jobs.Save(ctx, &models.ErasureJob{
		ID:        "job-1",
		SubjectID: "s1",
		Role:      models.RoleScout,
		Status:    models.JobStatusInProgress,
		StartedAt: time.Now().UTC(),
	}))

	_, _, err := s.service.Prepare(ctx, "s1", models.RoleScout)
	s.True(dErrors.HasCode(err, dErrors.CodeJobAlreadyRunning))
}

func (s *ErasureServiceSuite) TestHeldSubjectLockRejectsExecution() {
	ctx := context.Background()
	locker := lock.NewInMemoryLocker()

	svc, err := New(catalog.Default(), s.docs, s.blobs, s.ledger, s.jobs, s.revoker, locker,
		WithRetry(3, time.Millisecond))
	s.Require().NoError(err)

	_, enqueue, err := svc.Prepare(ctx, "s1", models.RoleScout)
	s.Require().NoError(err)
	s.Require().True(enqueue)

	unlock, err := locker.Acquire(ctx, "s1")
	s.Require().NoError(err)
	defer unlock(ctx)

	_, err = svc.Execute(ctx, "s1")
	s.True(dErrors.HasCode(err, dErrors.CodeJobAlreadyRunning))
}

func (s *ErasureServiceSuite) TestFailedJobRequiresOperatorIntervention() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.jobs.Save(ctx, &models.ErasureJob{
		ID:          "job-1",
		SubjectID:   "s1",
		Role:        models.RoleScout,
		Status:      models.JobStatusFailed,
		StartedAt:   now,
		CompletedAt: &now,
	}))

	_, _, err := s.service.Prepare(ctx, "s1", models.RoleScout)
	s.True(dErrors.HasCode(err, dErrors.CodePolicyViolation))
}

func (s *ErasureServiceSuite) TestCancellationParksBetweenSteps() {
	ctx := context.Background()
	_, enqueue, err := s.service.Prepare(ctx, "s1", models.RoleScout)
	s.Require().NoError(err)
	s.Require().True(enqueue)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	job, err := s.service.Execute(cancelled, "s1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePartialCascade))
	s.Equal(models.JobStatusPartial, job.Status)

	// Nothing was touched; the whole cascade remains for the resume.
	_, ok := s.docs.Get("profiles", "p1")
	s.True(ok)
	s.Equal(1, s.docs.Count("healthRecords"))
}

// =============================================================================
// Status Tests
// =============================================================================

func (s *ErasureServiceSuite) TestJobLookups() {
	ctx := context.Background()

	_, err := s.service.JobByID(ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.JobBySubject(ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	job, err := s.executeFor("s1", models.RoleScout)
	s.Require().NoError(err)

	byID, err := s.service.JobByID(ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(job.ID, byID.ID)

	bySubject, err := s.service.JobBySubject(ctx, "s1")
	s.Require().NoError(err)
	s.Equal(job.ID, bySubject.ID)
}
