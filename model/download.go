package model

import "time"

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusFetching  TaskStatus = "Fetching"
	TaskStatusCompleted TaskStatus = "Completed"
	// TaskStatusFailed is terminal and never reported to the caller of DownloadAll.
	TaskStatusFailed TaskStatus = "Failed"
)

func (ts TaskStatus) String() string {
	return string(ts)
}

type (
	DownloadLedger interface {
		Record(result DownloadResult) error
	}

	// DownloadTask lives only while its transfer is in flight.
	DownloadTask struct {
		ID         string
		URL        string
		Status     TaskStatus
		FileID     int64
		OutputPath string
		Bytes      int64
		LastError  string
		StartedAt  time.Time
		FinishedAt time.Time
	}

	DownloadResult struct {
		TaskID     string
		URL        string
		Status     TaskStatus
		FileID     int64
		OutputPath string
		Bytes      int64
		Error      string
		Duration   time.Duration
	}
)

func (dt *DownloadTask) Result() DownloadResult {
	return DownloadResult{
		TaskID:     dt.ID,
		URL:        dt.URL,
		Status:     dt.Status,
		FileID:     dt.FileID,
		OutputPath: dt.OutputPath,
		Bytes:      dt.Bytes,
		Error:      dt.LastError,
		Duration:   dt.FinishedAt.Sub(dt.StartedAt),
	}
}

func (r DownloadResult) Succeeded() bool {
	return r.Status == TaskStatusCompleted
}
