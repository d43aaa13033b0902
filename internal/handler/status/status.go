// Package status maps service and store errors onto HTTP responses.
package status

import (
	"errors"
	"net/http"

	journeySvc "github.com/zhouzirui/elyx-journey/backend/internal/service/journey"
	"github.com/zhouzirui/elyx-journey/backend/internal/store"
)

// MissingData is shown whenever the intermediate file has not been generated.
const MissingData = "no journey data yet: run `go run ./cmd/simulate` first"

// Of returns the status code and client message for err.
func Of(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusServiceUnavailable, MissingData
	case errors.Is(err, store.ErrCorrupt):
		return http.StatusInternalServerError, "journey data is corrupt: re-run simulate"
	case errors.Is(err, journeySvc.ErrInvalidFilter):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
