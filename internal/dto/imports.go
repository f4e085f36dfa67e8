package dto

// AdvanceRequest carries a stage-advance command for an import job.
// Strategy and TargetAgentID are only read for the assignment transition.
type AdvanceRequest struct {
	Stage         string `json:"stage"`
	Strategy      string `json:"strategy,omitempty"`
	TargetAgentID string `json:"target_agent_id,omitempty"`
}
