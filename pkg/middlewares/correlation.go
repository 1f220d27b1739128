package middlewares

import (
	"net/http"
	"regexp"

	"github.com/gorilla/mux"
)

// Callers may tag requests with a correlation id; anything outside this
// shape is replaced so log lines stay greppable.
var correlationIDRegexp = regexp.MustCompile(`^[\w-_]{3,25}$`)

type CorrelationMw struct {
	headerName string
	next       http.Handler
}

func NewCorrelationMw(headerName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewCorrelation(headerName, next)
	}
}

func NewCorrelation(headerName string, next http.Handler) *CorrelationMw {
	return &CorrelationMw{headerName: headerName, next: next}
}

// ServeHTTP echoes the correlation header back on the response so the
// vendor cloud (or curl) can match pushes to replies.
func (mw *CorrelationMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if id, ok := mw.validateID(r); ok {
		rw.Header().Set(mw.headerName, id)
	}

	mw.next.ServeHTTP(rw, r)
}

func (mw *CorrelationMw) validateID(r *http.Request) (string, bool) {
	hn := http.CanonicalHeaderKey(mw.headerName)
	ids, ok := r.Header[hn]
	if !ok || len(ids) == 0 {
		return "", false
	}

	if id := ids[0]; correlationIDRegexp.MatchString(id) {
		return id, true
	}
	return "<Bad_Correlation_Id>", true
}
