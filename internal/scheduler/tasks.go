package scheduler

import (
	json "github.com/goccy/go-json"

	"github.com/hibiken/asynq"
)

const TaskCatalogRefresh = "catalog.refresh"

const TaskSnapshotPurge = "offers.snapshots.purge"

type CatalogRefreshPayload struct {
	Reason string `json:"reason"`
}

type SnapshotPurgePayload struct {
	// RetentionHours overrides the configured retention when positive.
	RetentionHours int `json:"retentionHours,omitempty"`
}

func NewCatalogRefreshTask(payload CatalogRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogRefresh, data), nil
}

func ParseCatalogRefreshPayload(task *asynq.Task) (CatalogRefreshPayload, error) {
	var payload CatalogRefreshPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CatalogRefreshPayload{}, err
	}
	return payload, nil
}

func NewSnapshotPurgeTask(payload SnapshotPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSnapshotPurge, data), nil
}

func ParseSnapshotPurgePayload(task *asynq.Task) (SnapshotPurgePayload, error) {
	var payload SnapshotPurgePayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SnapshotPurgePayload{}, err
	}
	return payload, nil
}
