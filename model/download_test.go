package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDownloadTask_Result(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	task := &DownloadTask{
		ID:         "task",
		URL:        "https://example.com/a.jpg",
		Status:     TaskStatusCompleted,
		FileID:     3,
		OutputPath: "/tmp/3.jpeg",
		Bytes:      42,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}

	result := task.Result()

	assert.Equal(t, "task", result.TaskID)
	assert.Equal(t, int64(3), result.FileID)
	assert.Equal(t, 1500*time.Millisecond, result.Duration)
	assert.True(t, result.Succeeded())

	task.Status = TaskStatusFailed
	assert.False(t, task.Result().Succeeded())
}
