package http

import (
	"net/http"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// ErrBadRequest is the generic reply for request bodies that cannot be
// decoded.
var ErrBadRequest = errors.New("bad request")

func BadRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func InternalServerError(w http.ResponseWriter, err error) {
	logs.Warn(err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
