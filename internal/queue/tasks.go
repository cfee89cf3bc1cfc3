package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeModelRetrain = "model:retrain"

	QueueDefault = "default"
)

type ModelRetrainPayload struct {
	Environment string    `json:"environment"`
	ModelPath   string    `json:"model_path"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewModelRetrainTask(payload ModelRetrainPayload) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model retrain payload: %w", err)
	}
	return asynq.NewTask(TypeModelRetrain, payloadBytes), nil
}

func ParseModelRetrainPayload(task *asynq.Task) (*ModelRetrainPayload, error) {
	var payload ModelRetrainPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model retrain payload: %w", err)
	}
	return &payload, nil
}
