package httpUtils

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Brawl345/imgscraper/logger"
)

var (
	log               = logger.New("httpUtils")
	DefaultHttpClient *http.Client
)

func init() {
	DefaultHttpClient = createHTTPClient()
}

func createHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = 7 * time.Second
	transport.ResponseHeaderTimeout = 15 * time.Second
	transport.MaxIdleConnsPerHost = 20
	transport.IdleConnTimeout = 5 * time.Minute

	client := &http.Client{
		Transport: transport,
	}

	return client
}

func closeBody(body io.ReadCloser) {
	err := body.Close()
	if err != nil {
		log.Err(err).Msg("Failed to close response body")
	}
}

// get fails on any status outside 2xx, so an error page is never stored as an image.
func get(client *http.Client, url string) (*http.Response, error) {
	if client == nil {
		client = DefaultHttpClient
	}

	log.Debug().
		Str("url", url).
		Send()

	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		closeBody(resp.Body)
		return nil, &HttpError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	return resp, nil
}

// GetBody reads the whole response body into memory.
// A nil client means DefaultHttpClient.
func GetBody(client *http.Client, url string) ([]byte, error) {
	resp, err := get(client, url)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body)

	return io.ReadAll(resp.Body)
}

// DownloadToTempFile streams the response body into a new file in the
// system temp directory and returns its path. The caller owns the file.
func DownloadToTempFile(client *http.Client, url string) (string, int64, error) {
	resp, err := get(client, url)
	if err != nil {
		return "", 0, err
	}
	defer closeBody(resp.Body)

	tmp, err := os.CreateTemp("", "imgscraper-*.download")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to download file: %w", err)
	}

	log.Debug().
		Str("url", url).
		Str("path", tmp.Name()).
		Int64("bytes", n).
		Msg("Downloaded to temp file")

	return tmp.Name(), n, nil
}
