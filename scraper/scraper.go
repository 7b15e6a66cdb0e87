package scraper

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Brawl345/imgscraper/logger"
	"github.com/Brawl345/imgscraper/model"
	"github.com/Brawl345/imgscraper/utils/httpUtils"
	"github.com/PuerkitoBio/goquery"
)

const (
	SearchURL = "https://www.google.com/search?tbm=isch&q="
	// MarkerClass tags the result containers in the basic HTML results page.
	MarkerClass = "yWs4tf"
)

var log = logger.New("scraper")

type Scraper struct {
	client  *http.Client
	baseURL string
}

func New() *Scraper {
	return NewWithClient(httpUtils.DefaultHttpClient, SearchURL)
}

func NewWithClient(client *http.Client, baseURL string) *Scraper {
	return &Scraper{
		client:  client,
		baseURL: baseURL,
	}
}

// BuildSearchURL only escapes spaces; everything else in the query is passed through.
func BuildSearchURL(baseURL, query string) (string, error) {
	rawURL := baseURL + strings.ReplaceAll(query, " ", "%20")
	if _, err := url.Parse(rawURL); err != nil {
		log.Debug().Err(err).Str("query", query).Msg("Could not build search URL")
		return "", model.ErrInvalidURL
	}
	return rawURL, nil
}

// ParseImageURLs returns the src of the first img with a src attribute inside
// every marker element, in document order. Missing or empty sources are kept
// as empty strings.
func ParseImageURLs(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	imageURLs := make([]string, 0)
	doc.Find("." + MarkerClass).Each(func(_ int, s *goquery.Selection) {
		var src string
		s.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			value, exists := img.Attr("src")
			if exists {
				src = value
			}
			return !exists
		})
		imageURLs = append(imageURLs, src)
	})

	return imageURLs, nil
}

// FetchImageURLs blocks until the results page is fetched and parsed.
// Every fetch or parse failure is reported as model.ErrFetchFailed.
func (s *Scraper) FetchImageURLs(query string) ([]string, error) {
	searchURL, err := BuildSearchURL(s.baseURL, query)
	if err != nil {
		return nil, err
	}

	body, err := httpUtils.GetBody(s.client, searchURL)
	if err != nil {
		log.Debug().Err(err).Str("url", searchURL).Msg("Failed to fetch search results")
		return nil, model.ErrFetchFailed
	}

	imageURLs, err := ParseImageURLs(bytes.NewReader(body))
	if err != nil {
		log.Debug().Err(err).Str("url", searchURL).Msg("Failed to parse search results")
		return nil, model.ErrFetchFailed
	}

	log.Debug().
		Str("url", searchURL).
		Int("count", len(imageURLs)).
		Msg("Extracted image URLs")

	return imageURLs, nil
}

// Extract runs FetchImageURLs and calls onComplete exactly once, on the
// caller's goroutine.
func (s *Scraper) Extract(query string, onComplete func(imageURLs []string, err error)) {
	imageURLs, err := s.FetchImageURLs(query)
	if err != nil {
		onComplete(nil, err)
		return
	}
	onComplete(imageURLs, nil)
}
