package assign

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/lead-import/api/internal/entity"
)

var (
	// ErrNoAgentsAvailable signals an empty agent directory.
	ErrNoAgentsAvailable = errors.New("no agents available")
	// ErrInvalidTarget signals that the requested agent is not in the directory.
	ErrInvalidTarget = errors.New("target agent not in directory")
)

const (
	scoreExactSegment   = 2
	scoreRelatedSegment = 1
)

// segmentGroups relates segments considered adjacent for specialty scoring.
var segmentGroups = [][]string{
	{"retail", "ecommerce", "marketplace"},
	{"saas", "software", "technology"},
	{"food", "restaurant", "hospitality"},
	{"health", "pharmacy", "clinic"},
	{"finance", "insurance", "banking"},
	{"education", "training", "edtech"},
	{"construction", "real estate", "engineering"},
	{"logistics", "transport", "warehousing"},
}

var segmentGroupIndex = buildSegmentGroupIndex()

func buildSegmentGroupIndex() map[string]int {
	index := make(map[string]int)
	for i, group := range segmentGroups {
		for _, segment := range group {
			index[segment] = i
		}
	}
	return index
}

// Plan maps every non-failed record in the batch to exactly one agent using
// the selected strategy. Failed records are never assigned. All strategies
// are pure functions of the batch and the directory snapshot.
func Plan(batch *entity.ProcessedBatch, agents []entity.Agent, strategy entity.AssignmentStrategy, target uuid.UUID) (*entity.AssignmentPlan, error) {
	records := batch.AssignableRecords()

	plan := &entity.AssignmentPlan{
		Strategy: strategy,
		Entries:  make(map[uuid.UUID]uuid.UUID, len(records)),
	}
	if len(records) == 0 {
		return plan, nil
	}
	if len(agents) == 0 {
		return nil, ErrNoAgentsAvailable
	}

	switch strategy {
	case entity.StrategyRoundRobin:
		roundRobin(plan, records, agents)
	case entity.StrategyManual:
		if err := manualSingleTarget(plan, records, agents, target); err != nil {
			return nil, err
		}
	case entity.StrategyAISuggested:
		suggested(plan, records, agents)
	default:
		return nil, fmt.Errorf("unknown assignment strategy: %q", strategy)
	}
	return plan, nil
}

// roundRobin hands each record to the agent with the fewest leads counting
// both the directory's open-lead snapshot and assignments made so far. Ties
// break by stable agent-id order.
func roundRobin(plan *entity.AssignmentPlan, records []entity.CleansedRecord, agents []entity.Agent) {
	ordered := sortedByID(agents)
	loads := make(map[uuid.UUID]int, len(ordered))
	for _, agent := range ordered {
		loads[agent.ID] = agent.OpenLeads
	}

	for _, record := range records {
		chosen := ordered[0]
		for _, agent := range ordered[1:] {
			if loads[agent.ID] < loads[chosen.ID] {
				chosen = agent
			}
		}
		plan.Entries[record.ID] = chosen.ID
		loads[chosen.ID]++
	}
}

func manualSingleTarget(plan *entity.AssignmentPlan, records []entity.CleansedRecord, agents []entity.Agent, target uuid.UUID) error {
	found := false
	for _, agent := range agents {
		if agent.ID == target {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}

	for _, record := range records {
		plan.Entries[record.ID] = target
	}
	return nil
}

// suggested scores every agent per record: specialty match (exact 2, related
// 1, none 0) weighted by the agent's conversion weight. Ties break by lowest
// open-lead count, then agent-id order.
func suggested(plan *entity.AssignmentPlan, records []entity.CleansedRecord, agents []entity.Agent) {
	ordered := sortedByID(agents)

	for _, record := range records {
		best := ordered[0]
		bestScore := agentScore(ordered[0], record.Segment)
		for _, agent := range ordered[1:] {
			score := agentScore(agent, record.Segment)
			if score > bestScore || (score == bestScore && agent.OpenLeads < best.OpenLeads) {
				best = agent
				bestScore = score
			}
		}
		plan.Entries[record.ID] = best.ID
	}
}

func agentScore(agent entity.Agent, segment string) float64 {
	return float64(segmentMatch(agent.Specialty, segment)) * agent.ConversionWeight
}

func segmentMatch(specialty, segment string) int {
	specialty = strings.ToLower(strings.TrimSpace(specialty))
	segment = strings.ToLower(strings.TrimSpace(segment))
	if specialty == "" || segment == "" {
		return 0
	}
	if specialty == segment {
		return scoreExactSegment
	}

	sg, ok := segmentGroupIndex[specialty]
	if !ok {
		return 0
	}
	rg, ok := segmentGroupIndex[segment]
	if !ok || sg != rg {
		return 0
	}
	return scoreRelatedSegment
}

func sortedByID(agents []entity.Agent) []entity.Agent {
	ordered := make([]entity.Agent, len(agents))
	copy(ordered, agents)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID.String() < ordered[j].ID.String()
	})
	return ordered
}
