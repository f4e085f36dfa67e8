package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/lead-import/api/internal/entity"
	"github.com/octobees/lead-import/api/internal/service/assign"
)

var (
	// ErrJobNotFound is returned when no job matches the given id.
	ErrJobNotFound = errors.New("import job not found")
	// ErrInvalidTransition signals a stage advance the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid stage transition")
	// ErrJobDiscarded is returned when a job was discarded while a transition ran.
	ErrJobDiscarded = errors.New("import job was discarded")
	// ErrTransitionInFlight signals a concurrent transition on the same job.
	ErrTransitionInFlight = errors.New("another transition is in progress")
)

// CRMStore is the downstream collaborator that receives committed batches.
type CRMStore interface {
	CommitBatch(ctx context.Context, job *entity.ImportJob) error
}

// AgentDirectory supplies the roster snapshot used for assignment.
type AgentDirectory interface {
	ListAgents(ctx context.Context) ([]entity.Agent, error)
}

// AdvancePayload carries the stage-specific input for a transition.
type AdvancePayload struct {
	Strategy      entity.AssignmentStrategy
	TargetAgentID uuid.UUID
}

// ImportService owns every ImportJob and serializes its stage transitions.
// Locks protect only in-memory state: no lock is held across a provider or
// store call.
type ImportService struct {
	cleanser *Cleanser
	enricher *Enricher
	crm      CRMStore
	agents   AgentDirectory

	mu   sync.RWMutex
	jobs map[uuid.UUID]*jobState
}

type jobState struct {
	mu       sync.Mutex
	inFlight bool
	job      *entity.ImportJob
	raw      []entity.RawRecord
	cancel   context.CancelFunc
	ctx      context.Context
}

// NewImportService wires the pipeline controller.
func NewImportService(cleanser *Cleanser, enricher *Enricher, crm CRMStore, agents AgentDirectory) *ImportService {
	return &ImportService{
		cleanser: cleanser,
		enricher: enricher,
		crm:      crm,
		agents:   agents,
		jobs:     make(map[uuid.UUID]*jobState),
	}
}

// SubmitFile parses the uploaded file and creates a job in the uploaded stage.
func (s *ImportService) SubmitFile(ctx context.Context, r io.Reader, filename string, size int64, createdBy string) (*entity.ImportJob, error) {
	records, err := ParseRecords(r)
	if err != nil {
		return nil, err
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	job := &entity.ImportJob{
		ID:        uuid.New(),
		Filename:  filename,
		FileSize:  size,
		Stage:     entity.StageUploaded,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = &jobState{job: job, raw: records, cancel: cancel, ctx: jobCtx}
	s.mu.Unlock()

	log.Printf("import job_id=%s file=%q rows=%d created_by=%s", job.ID, filename, len(records), createdBy)
	return snapshot(job), nil
}

// GetJob returns a snapshot of the job.
func (s *ImportService) GetJob(jobID uuid.UUID) (*entity.ImportJob, error) {
	state, err := s.state(jobID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return snapshot(state.job), nil
}

// Advance moves the job to the requested stage, running the stage's work.
func (s *ImportService) Advance(ctx context.Context, jobID uuid.UUID, target entity.Stage, payload AdvancePayload) (*entity.ImportJob, error) {
	state, err := s.state(jobID)
	if err != nil {
		return nil, err
	}

	switch target {
	case entity.StageCleansed:
		return s.advanceCleansed(state)
	case entity.StagePreviewApproved:
		return s.advancePreview(state)
	case entity.StageAssigned:
		return s.advanceAssigned(ctx, state, payload)
	case entity.StageCompleted:
		return s.advanceCompleted(ctx, state)
	default:
		return nil, fmt.Errorf("%w: cannot advance to %q", ErrInvalidTransition, target)
	}
}

// Discard terminates the job from any non-completed stage. In-flight stage
// work is cancelled; its results are dropped when it finishes.
func (s *ImportService) Discard(jobID uuid.UUID) (*entity.ImportJob, error) {
	state, err := s.state(jobID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.job.Stage == entity.StageCompleted {
		return nil, fmt.Errorf("%w: completed jobs cannot be discarded", ErrInvalidTransition)
	}
	if state.job.Stage != entity.StageDiscarded {
		state.job.Stage = entity.StageDiscarded
		state.cancel()
		log.Printf("import job_id=%s discarded", state.job.ID)
	}
	return snapshot(state.job), nil
}

// advanceCleansed runs cleansing, enrichment and aggregation. The heavy work
// runs without holding the job lock; results are dropped if the job was
// discarded meanwhile.
func (s *ImportService) advanceCleansed(state *jobState) (*entity.ImportJob, error) {
	if err := state.begin(entity.StageUploaded); err != nil {
		return nil, err
	}
	defer state.finish()

	cleansed, stats, err := s.cleanser.Cleanse(state.ctx, state.raw)
	if err != nil {
		if state.discarded() {
			return nil, ErrJobDiscarded
		}
		return nil, err
	}

	enriched := s.enricher.Enrich(state.ctx, cleansed)
	batch := Aggregate(enriched, stats.DuplicatesRemoved)

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.job.Stage != entity.StageUploaded {
		return nil, ErrJobDiscarded
	}
	state.job.Batch = &batch
	state.job.Stage = entity.StageCleansed
	log.Printf("import job_id=%s stage=cleansed total=%d corrected=%d enriched=%d failed=%d duplicates=%d",
		state.job.ID, batch.Total, batch.CorrectedCount, batch.EnrichedCount, batch.FailedCount, batch.DuplicatesRemoved)
	return snapshot(state.job), nil
}

// advancePreview acknowledges the preview. Re-entering from assigned drops
// the plan so a different strategy can be chosen; the batch stays frozen.
func (s *ImportService) advancePreview(state *jobState) (*entity.ImportJob, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	switch state.job.Stage {
	case entity.StageCleansed, entity.StageAssigned:
		state.job.Plan = nil
		state.job.Stage = entity.StagePreviewApproved
		return snapshot(state.job), nil
	default:
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, state.job.Stage, entity.StagePreviewApproved)
	}
}

// advanceAssigned invokes the assignment engine against the frozen batch.
// On a strategy error the job stays in preview_approved.
func (s *ImportService) advanceAssigned(ctx context.Context, state *jobState, payload AdvancePayload) (*entity.ImportJob, error) {
	if err := state.begin(entity.StagePreviewApproved, entity.StageAssigned); err != nil {
		return nil, err
	}
	defer state.finish()

	state.mu.Lock()
	batch := state.job.Batch
	state.mu.Unlock()

	agents, err := s.agents.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load agent directory: %w", err)
	}

	plan, err := assign.Plan(batch, agents, payload.Strategy, payload.TargetAgentID)
	if err != nil {
		log.Printf("import job_id=%s assignment rejected: %v", state.job.ID, err)
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.job.Stage != entity.StagePreviewApproved && state.job.Stage != entity.StageAssigned {
		return nil, ErrJobDiscarded
	}
	state.job.Plan = plan
	state.job.Stage = entity.StageAssigned
	log.Printf("import job_id=%s stage=assigned strategy=%s entries=%d", state.job.ID, plan.Strategy, len(plan.Entries))
	return snapshot(state.job), nil
}

// advanceCompleted commits the batch and plan to the CRM store. A failed
// commit leaves the job in assigned; the commit is retryable.
func (s *ImportService) advanceCompleted(ctx context.Context, state *jobState) (*entity.ImportJob, error) {
	if err := state.begin(entity.StageAssigned); err != nil {
		return nil, err
	}
	defer state.finish()

	state.mu.Lock()
	committed := snapshot(state.job)
	state.mu.Unlock()

	if err := s.crm.CommitBatch(ctx, committed); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.job.Stage != entity.StageAssigned {
		return nil, ErrJobDiscarded
	}
	now := time.Now().UTC()
	state.job.CompletedAt = &now
	state.job.Stage = entity.StageCompleted
	log.Printf("import job_id=%s stage=completed records=%d assigned=%d",
		state.job.ID, state.job.Batch.Total, len(state.job.Plan.Entries))
	return snapshot(state.job), nil
}

func (s *ImportService) state(jobID uuid.UUID) (*jobState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return state, nil
}

// begin marks a transition in flight after verifying the current stage.
func (st *jobState) begin(allowed ...entity.Stage) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.inFlight {
		return ErrTransitionInFlight
	}
	for _, stage := range allowed {
		if st.job.Stage == stage {
			st.inFlight = true
			return nil
		}
	}
	if st.job.Stage == entity.StageDiscarded {
		return ErrJobDiscarded
	}
	return fmt.Errorf("%w: job is in stage %s", ErrInvalidTransition, st.job.Stage)
}

func (st *jobState) finish() {
	st.mu.Lock()
	st.inFlight = false
	st.mu.Unlock()
}

func (st *jobState) discarded() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.job.Stage == entity.StageDiscarded
}

// snapshot copies the job header. Batch and plan are frozen once computed, so
// sharing them is safe for readers.
func snapshot(job *entity.ImportJob) *entity.ImportJob {
	copied := *job
	return &copied
}
