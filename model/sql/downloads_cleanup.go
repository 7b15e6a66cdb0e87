package sql

import (
	"github.com/Brawl345/imgscraper/logger"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const downloadRetentionDays = 30

type downloadsCleanupService struct {
	*sqlx.DB
	log zerolog.Logger
}

func NewDownloadsCleanupService(db *sqlx.DB) *downloadsCleanupService {
	return &downloadsCleanupService{
		DB:  db,
		log: logger.New("downloadsCleanupService"),
	}
}

func (db *downloadsCleanupService) Cleanup() error {
	const query = `DELETE FROM downloads WHERE created_at < NOW() - INTERVAL ? DAY`
	res, err := db.Exec(query, downloadRetentionDays)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err == nil && n > 0 {
		db.log.Info().Msgf("Removed %d old download(s)", n)
	}
	return nil
}
