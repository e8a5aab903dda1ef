package populator

import (
	"context"
	"fmt"
	"strings"

	"matter_pipeline_backend/internal/casemgmt"
	"matter_pipeline_backend/internal/pipeline/domain"
)

// The nature-of-property data field is located in the step graph by this
// fixed group and label pair.
const (
	natureFieldGroup = "Conveyancing Details"
	natureFieldLabel = "Nature of Property"
)

// StepChange advances the matter to the manifest's target workflow node and
// returns the node id. The step, its node, and the inbound transition record
// must all exist: a miss is a workflow configuration problem and aborts the
// stage. An empty target step means no step change applies and is a no-op.
func (p *Populator) StepChange(ctx context.Context, matterID int64, change domain.StepChange) (int64, error) {
	if change.TargetStep == "" {
		p.log.Info("no step change applies", "matter_id", matterID)
		return 0, nil
	}

	graph, err := p.client.GetActionChangeStep(ctx, matterID)
	if err != nil {
		return 0, err
	}

	nodeID, ok := findStepNode(graph, change.TargetStep)
	if !ok {
		return 0, fmt.Errorf("step %q not found in the workflow of matter %d", change.TargetStep, matterID)
	}

	transition, ok := findTransition(graph, nodeID)
	if !ok {
		return 0, fmt.Errorf("no transition into node %d (step %q) of matter %d", nodeID, change.TargetStep, matterID)
	}

	update := casemgmt.StepNodeUpdate{
		NodeID:   nodeID,
		Messages: p.carryMessages(transition.Messages),
		TaskIDs:  p.resolveTaskIDs(matterID, graph, transition.TaskIDs),
	}

	if change.NatureOfProperty != "" {
		if field, ok := findDataField(graph, natureFieldGroup, natureFieldLabel); ok {
			update.FieldValues = map[int64]string{field.ID: change.NatureOfProperty}
		} else {
			p.log.Warn("nature of property field not present in step graph", "matter_id", matterID)
		}
	}

	if err := p.client.UpdateActionChangeStepNode(ctx, matterID, update); err != nil {
		return 0, err
	}
	return nodeID, nil
}

func findStepNode(graph *casemgmt.ActionChangeStep, name string) (int64, bool) {
	for _, step := range graph.Steps {
		if strings.EqualFold(step.Name, name) {
			return step.NodeID, true
		}
	}
	return 0, false
}

func findTransition(graph *casemgmt.ActionChangeStep, nodeID int64) (casemgmt.Transition, bool) {
	for _, t := range graph.Transitions {
		if t.ToNodeID == nodeID {
			return t, true
		}
	}
	return casemgmt.Transition{}, false
}

// carryMessages copies the transition's permitted messages forward. Message
// text moves only in production so non-production runs never trigger real
// correspondence.
func (p *Populator) carryMessages(messages []casemgmt.Message) []casemgmt.Message {
	out := make([]casemgmt.Message, 0, len(messages))
	for _, m := range messages {
		if !p.production {
			m.Text = ""
		}
		out = append(out, m)
	}
	return out
}

// resolveTaskIDs keeps only the transition task ids the step graph actually
// knows. Unresolved ids are dropped with a warning, not an error.
func (p *Populator) resolveTaskIDs(matterID int64, graph *casemgmt.ActionChangeStep, ids []int64) []int64 {
	known := make(map[int64]bool, len(graph.Tasks))
	for _, t := range graph.Tasks {
		known[t.ID] = true
	}

	var out []int64
	for _, id := range ids {
		if !known[id] {
			p.log.Warn("transition references unknown task, dropped",
				"matter_id", matterID, "task_id", id)
			continue
		}
		out = append(out, id)
	}
	return out
}

func findDataField(graph *casemgmt.ActionChangeStep, group, label string) (casemgmt.DataField, bool) {
	for _, f := range graph.DataFields {
		if strings.EqualFold(f.Group, group) && strings.EqualFold(f.Label, label) {
			return f, true
		}
	}
	return casemgmt.DataField{}, false
}
