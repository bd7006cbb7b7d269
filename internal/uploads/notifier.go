package uploads

import "portfolio-backend/internal/shared/telemetry"

// Notifier surfaces per-task failures to whoever is watching the batch.
type Notifier interface {
	UploadFailed(projectID string, task Task)
}

// LogNotifier writes failures to the structured log.
type LogNotifier struct{}

func (LogNotifier) UploadFailed(projectID string, task Task) {
	telemetry.Error("uploads.task.failed", map[string]any{
		"task_id":    task.ID,
		"project_id": projectID,
		"file_name":  task.File.Name,
		"size":       task.File.Size,
		"error":      task.Error,
	})
}
