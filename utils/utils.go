package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Brawl345/imgscraper/logger"
	"github.com/adrg/xdg"
	"github.com/sosodev/duration"
)

var (
	log = logger.New("utils")

	rename = os.Rename
)

type (
	VersionInfo struct {
		GoVersion  string
		GoOS       string
		GoArch     string
		Revision   string
		LastCommit time.Time
		DirtyBuild bool
	}
)

func ReadVersionInfo() (VersionInfo, error) {
	buildInfo, ok := debug.ReadBuildInfo()

	if !ok {
		return VersionInfo{}, errors.New("could not read build info")
	}

	versionInfo := VersionInfo{
		GoVersion: buildInfo.GoVersion,
		Revision:  "unknown",
	}

	for _, kv := range buildInfo.Settings {
		switch kv.Key {
		case "GOOS":
			versionInfo.GoOS = kv.Value
		case "GOARCH":
			versionInfo.GoArch = kv.Value
		case "vcs.revision":
			versionInfo.Revision = kv.Value
		case "vcs.time":
			versionInfo.LastCommit, _ = time.Parse(time.RFC3339, kv.Value)
		case "vcs.modified":
			versionInfo.DirtyBuild = kv.Value == "true"
		}
	}

	return versionInfo, nil
}

// DesktopDir returns the user's desktop directory and creates it if needed.
func DesktopDir() (string, error) {
	dir := xdg.UserDirs.Desktop
	if dir == "" {
		return "", errors.New("could not determine desktop directory")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create desktop directory: %w", err)
	}

	return dir, nil
}

// GetEnvDuration reads an ISO 8601 duration like "PT5S" from the environment.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	d, err := duration.Parse(value)
	if err != nil {
		log.Warn().
			Err(err).
			Str("key", key).
			Str("value", value).
			Msgf("Invalid duration, using %s", fallback)
		return fallback
	}

	return d.ToTimeDuration()
}

// MoveFile renames src to dst and falls back to copy+remove when both
// paths are on different devices.
func MoveFile(src, dst string) error {
	if err := rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return err
	}

	_ = in.Close()
	return os.Remove(src)
}
