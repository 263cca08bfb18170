package queue

import (
	"encoding/json"
	"fmt"
)

// Queue names. Each maps to its own Redis stream.
const (
	QueueDownloads = "downloads"
	QueueScans     = "scans"
)

// TaskType identifies the kind of work a task carries.
type TaskType string

const (
	TaskDownload TaskType = "download"
	TaskScan     TaskType = "scan"
)

// Task is the unit of work submitted to a queue, keyed by the job id it
// drives. The job record itself is the source of truth; the task only
// references it.
type Task struct {
	Type  TaskType `json:"type"`
	JobID string   `json:"job_id"`
}

// QueueFor returns the queue a task type is delivered on.
func (t TaskType) QueueFor() (string, error) {
	switch t {
	case TaskDownload:
		return QueueDownloads, nil
	case TaskScan:
		return QueueScans, nil
	default:
		return "", fmt.Errorf("unknown task type %q", t)
	}
}

// Encode serializes the task for a stream message.
func (t *Task) Encode() ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode task: %w", err)
	}
	return data, nil
}

// DecodeTask deserializes a task from a stream message.
func DecodeTask(data []byte) (*Task, error) {
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	if task.JobID == "" {
		return nil, fmt.Errorf("decode task: missing job id")
	}
	return &task, nil
}
