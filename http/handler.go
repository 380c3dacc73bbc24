package http

import (
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// HandleHealthCheck reports process liveness.
func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleReadyCheck reports whether the server accepts editor
// connections.
func HandleReadyCheck(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HandleVersion reports the running server version.
func HandleVersion(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := json.Marshal(struct {
			Version string `json:"version"`
		}{
			Version: version,
		})
		if err != nil {
			InternalServerError(w, errors.New("encoding version failed").Wrap(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	}
}
