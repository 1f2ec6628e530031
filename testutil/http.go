package testutil

import (
	"errors"
	"net/http"
)

// BrokenWriter is a ResponseWriter whose body writes always fail, as when
// the client drops the connection mid-download. Every attempted payload is
// kept in Attempts.
type BrokenWriter struct {
	Status   int
	Attempts [][]byte
	header   http.Header
}

func (w *BrokenWriter) Header() http.Header {
	if w.header == nil {
		w.header = http.Header{}
	}
	return w.header
}

func (w *BrokenWriter) WriteHeader(status int) {
	if w.Status == 0 {
		w.Status = status
	}
}

func (w *BrokenWriter) Write(p []byte) (int, error) {
	if w.Status == 0 {
		w.Status = http.StatusOK
	}
	w.Attempts = append(w.Attempts, append([]byte(nil), p...))
	return 0, errors.New("connection reset by peer")
}
