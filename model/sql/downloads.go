package sql

import (
	"github.com/Brawl345/imgscraper/logger"
	"github.com/Brawl345/imgscraper/model"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type downloadService struct {
	*sqlx.DB
	runID string
	log   zerolog.Logger
}

// NewDownloadService records completed downloads of one run. File IDs restart
// at 1 every run, runID keeps rows apart.
func NewDownloadService(db *sqlx.DB, runID string) *downloadService {
	return &downloadService{
		DB:    db,
		runID: runID,
		log:   logger.New("downloadService"),
	}
}

func (db *downloadService) Record(result model.DownloadResult) error {
	const query = `INSERT INTO downloads (run_id, task_id, url, file_id, output_path, bytes, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		db.runID,
		result.TaskID,
		result.URL,
		result.FileID,
		result.OutputPath,
		result.Bytes,
		result.Duration.Milliseconds(),
	)
	if err != nil {
		return err
	}

	db.log.Debug().
		Str("task_id", result.TaskID).
		Int64("file_id", result.FileID).
		Msg("Recorded download")
	return nil
}

func (db *downloadService) CountRun() (int, error) {
	const query = `SELECT COUNT(*) FROM downloads WHERE run_id = ?`
	var count int
	err := db.Get(&count, query, db.runID)
	return count, err
}
