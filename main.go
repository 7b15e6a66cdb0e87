package main

import (
	"context"
	"os"
	"time"

	"github.com/Brawl345/imgscraper/downloader"
	"github.com/Brawl345/imgscraper/logger"
	"github.com/Brawl345/imgscraper/model"
	"github.com/Brawl345/imgscraper/model/sql"
	"github.com/Brawl345/imgscraper/scraper"
	"github.com/Brawl345/imgscraper/utils"
	"github.com/Brawl345/imgscraper/utils/httpUtils"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/xid"
)

const (
	SearchQuery     = "spider man"
	DefaultExitWait = 5 * time.Second
)

var log = logger.New("main")

func readVersionInfo() {
	versionInfo, err := utils.ReadVersionInfo()
	if err != nil {
		log.Debug().Err(err).Send()
		return
	}
	log.Info().Msgf("imgscraper-%s, %v (%s)", versionInfo.Revision, versionInfo.LastCommit, versionInfo.GoVersion)
}

// scrapeAndDownload hands the extracted URLs to m. Nothing is downloaded when
// the extraction fails.
func scrapeAndDownload(s *scraper.Scraper, m *downloader.Manager, query string) error {
	var extractErr error
	s.Extract(query, func(imageURLs []string, err error) {
		if err != nil {
			extractErr = err
			return
		}
		log.Info().Msgf("Found %d image(s) for %q", len(imageURLs), query)
		m.DownloadAll(imageURLs)
	})
	return extractErr
}

func main() {
	readVersionInfo()

	outputDir, err := utils.DesktopDir()
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	manager := downloader.NewManager(outputDir, httpUtils.DefaultHttpClient)

	var countHistory func() (int, error)
	_, withHistory := os.LookupEnv("MYSQL_HOST")
	if withHistory {
		db, err := sql.New()
		if err != nil {
			log.Fatal().Err(err).Send()
		}
		defer db.Close()

		log.Info().Msg("Database connection established")

		if err := sql.NewDownloadsCleanupService(db).Cleanup(); err != nil {
			log.Err(err).Msg("Failed to clean up download history")
		}

		runID := xid.New().String()
		history := sql.NewDownloadService(db, runID)
		manager.SetLedger(history)
		countHistory = history.CountRun
		log.Info().Str("run_id", runID).Msg("Recording download history")
	}

	manager.SetCompletionCallback(func(result model.DownloadResult) {
		if !result.Succeeded() {
			return
		}
		log.Info().
			Int64("file_id", result.FileID).
			Str("path", result.OutputPath).
			Str("size", utils.HumanizeSize(result.Bytes)).
			Msg("Saved image")
	})

	if err := scrapeAndDownload(scraper.New(), manager, SearchQuery); err != nil {
		log.Err(err).Msg("Image search failed")
		return
	}

	exitWait := utils.GetEnvDuration("EXIT_WAIT", DefaultExitWait)
	ctx, cancel := context.WithTimeout(context.Background(), exitWait)
	defer cancel()

	if err := manager.Wait(ctx); err != nil {
		log.Warn().Msgf("Stopped waiting after %s, some downloads may still be running", exitWait)
	}

	var saved int
	var total int64
	for _, result := range manager.Results() {
		if result.Succeeded() {
			saved++
			total += result.Bytes
		}
	}
	log.Info().Str("dir", outputDir).Msgf("Saved %d image(s), %s", saved, utils.HumanizeSize(total))

	if countHistory != nil {
		recorded, err := countHistory()
		if err != nil {
			log.Err(err).Msg("Failed to count recorded downloads")
			return
		}
		log.Info().Msgf("Recorded %d download(s) in history", recorded)
	}
}
