// Package queue moves the pipeline between stages over asynq. One task type
// per stage; delivery is at-least-once, so stage handlers must tolerate
// replays.
package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskIntake          = "pipeline.intake"
	TaskCreateMatter    = "pipeline.create_matter"
	TaskParticipants    = "pipeline.participants"
	TaskDataCollections = "pipeline.data_collections"
	TaskFilenotes       = "pipeline.filenotes"
	TaskFiles           = "pipeline.files"
	TaskStepChange      = "pipeline.stepchange"
	TaskComplete        = "pipeline.complete"
)

// Message is the payload every stage task carries.
type Message struct {
	FileID string `json:"fileId"`
	JobID  string `json:"jobId"`
	Tenant string `json:"tenant"`
}

// NewStageTask builds the asynq task for a stage route.
func NewStageTask(route string, msg Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(route, data), nil
}

// ParseMessage decodes a stage task payload.
func ParseMessage(task *asynq.Task) (Message, error) {
	var msg Message
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
