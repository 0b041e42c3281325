package router

import (
	"net/http"
	"strconv"
)

// RawResponse bypasses the JSON envelope: status, headers and body are written as-is.
// Proxy endpoints use it to pass an upstream reply through unchanged.
type RawResponse struct {
	Status      int
	ContentType string
	Header      http.Header
	Body        []byte
}

func (r *RawResponse) write(w http.ResponseWriter) {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	if r.ContentType != "" {
		w.Header().Set("Content-Type", r.ContentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(r.Body)))

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	_, _ = w.Write(r.Body)
}
