package entity

import (
	"time"

	"github.com/google/uuid"
)

// Stage identifies where an ImportJob sits in the pipeline.
type Stage string

const (
	StageUploaded        Stage = "uploaded"
	StageCleansed        Stage = "cleansed"
	StagePreviewApproved Stage = "preview_approved"
	StageAssigned        Stage = "assigned"
	StageCompleted       Stage = "completed"
	StageDiscarded       Stage = "discarded"
)

// Terminal reports whether no further transitions are possible from s.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageDiscarded
}

// AssignmentStrategy selects the policy mapping records to agents.
type AssignmentStrategy string

const (
	StrategyRoundRobin  AssignmentStrategy = "round_robin"
	StrategyManual      AssignmentStrategy = "manual"
	StrategyAISuggested AssignmentStrategy = "ai_suggested"
)

// AssignmentPlan maps non-failed record ids to the agent that owns them.
type AssignmentPlan struct {
	Strategy AssignmentStrategy      `json:"strategy"`
	Entries  map[uuid.UUID]uuid.UUID `json:"entries"`
}

// ImportJob is the root aggregate tracking one uploaded batch end to end.
type ImportJob struct {
	ID          uuid.UUID       `json:"id"`
	Filename    string          `json:"filename"`
	FileSize    int64           `json:"file_size"`
	Stage       Stage           `json:"stage"`
	Batch       *ProcessedBatch `json:"batch,omitempty"`
	Plan        *AssignmentPlan `json:"plan,omitempty"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
