package testutil

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"formflow/pkg/requestcontext"
)

// WithURLParams attaches chi route parameters so handler methods can be
// called directly without a router.
func WithURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// WithApplicant simulates the applicant middleware.
func WithApplicant(req *http.Request, applicant string) *http.Request {
	return req.WithContext(requestcontext.WithApplicant(req.Context(), applicant))
}

// FixedTime returns a context whose requestcontext.Now is pinned to t.
func FixedTime(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}
