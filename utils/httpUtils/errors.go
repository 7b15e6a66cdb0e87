package httpUtils

import (
	"fmt"
	"net/http"
)

type HttpError struct {
	StatusCode int
	Status     string
}

func (e *HttpError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("unexpected HTTP status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
}
