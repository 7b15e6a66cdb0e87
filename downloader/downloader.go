// Package downloader fetches image URLs concurrently and stores every finished
// download as <id>.jpeg, where id comes from a per-Manager counter starting at 1.
//
// Failures after a task has been launched are never reported to the caller of
// DownloadAll. They only show up as a missing file, a Failed result passed to
// the completion callback and a debug log line.
package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Brawl345/imgscraper/logger"
	"github.com/Brawl345/imgscraper/model"
	"github.com/Brawl345/imgscraper/utils"
	"github.com/Brawl345/imgscraper/utils/httpUtils"
	"github.com/rs/xid"
	"golang.org/x/exp/slices"
)

const FileExtension = "jpeg"

var log = logger.New("downloader")

type Manager struct {
	outputDir  string
	client     *http.Client
	ledger     model.DownloadLedger
	onComplete func(model.DownloadResult)

	lastFileID atomic.Int64
	wg         sync.WaitGroup

	resultsMutex sync.Mutex
	results      []model.DownloadResult
}

func NewManager(outputDir string, client *http.Client) *Manager {
	if client == nil {
		client = httpUtils.DefaultHttpClient
	}
	return &Manager{
		outputDir: outputDir,
		client:    client,
	}
}

// SetCompletionCallback registers a function that runs on the task's own
// goroutine once per launched task. Calls arrive in completion order, which
// is unrelated to the order of the URLs.
// Must be called before DownloadAll.
func (m *Manager) SetCompletionCallback(callback func(model.DownloadResult)) {
	m.onComplete = callback
}

// SetLedger attaches an optional history sink. Ledger errors are logged and dropped.
// Must be called before DownloadAll.
func (m *Manager) SetLedger(ledger model.DownloadLedger) {
	m.ledger = ledger
}

// DownloadAll launches one goroutine per URL and returns immediately.
// URLs that do not parse are skipped without any trace.
func (m *Manager) DownloadAll(urls []string) {
	for _, rawURL := range urls {
		if !isValidURL(rawURL) {
			continue
		}

		task := &model.DownloadTask{
			ID:     xid.New().String(),
			URL:    rawURL,
			Status: model.TaskStatusPending,
		}

		m.wg.Add(1)
		go m.run(task)
	}
}

// Wait blocks until every launched task has finished or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results returns the finished tasks so far ordered by file ID. Tasks that
// failed before getting an ID come first.
func (m *Manager) Results() []model.DownloadResult {
	m.resultsMutex.Lock()
	results := slices.Clone(m.results)
	m.resultsMutex.Unlock()

	slices.SortFunc(results, func(a, b model.DownloadResult) int {
		switch {
		case a.FileID < b.FileID:
			return -1
		case a.FileID > b.FileID:
			return 1
		default:
			return 0
		}
	})
	return results
}

// nextFileID is the only way to read or advance the counter.
func (m *Manager) nextFileID() int64 {
	return m.lastFileID.Add(1)
}

func (m *Manager) destination(fileID int64) string {
	return filepath.Join(m.outputDir, fmt.Sprintf("%d.%s", fileID, FileExtension))
}

func (m *Manager) run(task *model.DownloadTask) {
	defer m.wg.Done()

	task.StartedAt = time.Now()
	task.Status = model.TaskStatusFetching

	tmpPath, n, err := httpUtils.DownloadToTempFile(m.client, task.URL)
	if err != nil {
		m.fail(task, err)
		return
	}
	task.Bytes = n

	task.FileID = m.nextFileID()
	dest := m.destination(task.FileID)

	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		log.Debug().
			Err(err).
			Str("task_id", task.ID).
			Str("path", dest).
			Msg("Could not remove existing file")
	}

	if err := utils.MoveFile(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		m.fail(task, err)
		return
	}

	task.OutputPath = dest
	task.Status = model.TaskStatusCompleted
	task.FinishedAt = time.Now()

	log.Debug().
		Str("task_id", task.ID).
		Str("url", task.URL).
		Int64("file_id", task.FileID).
		Int64("bytes", task.Bytes).
		Msg("Download completed")

	m.finish(task)
}

func (m *Manager) fail(task *model.DownloadTask, err error) {
	task.Status = model.TaskStatusFailed
	task.LastError = err.Error()
	task.FinishedAt = time.Now()

	log.Debug().
		Err(err).
		Str("task_id", task.ID).
		Str("url", task.URL).
		Msg("Download failed")

	m.finish(task)
}

func (m *Manager) finish(task *model.DownloadTask) {
	result := task.Result()

	m.resultsMutex.Lock()
	m.results = append(m.results, result)
	m.resultsMutex.Unlock()

	if m.ledger != nil && result.Succeeded() {
		if err := m.ledger.Record(result); err != nil {
			log.Warn().
				Err(err).
				Str("task_id", task.ID).
				Int64("file_id", result.FileID).
				Msg("Failed to record download")
		}
	}

	if m.onComplete != nil {
		m.onComplete(result)
	}
}

func isValidURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	_, err := url.Parse(rawURL)
	return err == nil
}
