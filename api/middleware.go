package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/0xcafe-io/iz"
	"github.com/fatali-fataliyev/budget_insights/internal/auth"
	"github.com/fatali-fataliyev/budget_insights/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insights/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const TraceIDHeader = "X-Trace-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// withTrace tags every request with a trace id, taken from X-Trace-Id when the
// caller sent one, and logs its completion.
func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := strings.TrimSpace(r.Header.Get(TraceIDHeader))
		if traceID == "" {
			traceID = uuid.New().String()
		}
		w.Header().Set(TraceIDHeader, traceID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(contextutil.WithTraceID(r.Context(), traceID)))

		entry := logging.Logger.WithFields(logrus.Fields{
			"trace_id": traceID,
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
		if rec.status >= 500 {
			entry.Warn("request completed")
			return
		}
		entry.Info("request completed")
	})
}

// requireUser resolves the bearer token to a user id and stores it in the
// request context.
func (api *Api) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		token, err := auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		userID, err := api.Verifier.Verify(ctx, token)
		if err != nil {
			logging.Logger.Debugf("[TraceID=%s] | authorization failed | Error: %v", contextutil.TraceIDFromContext(ctx), err)
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(contextutil.WithUserID(ctx, userID)))
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	iz.Bind(func(req *iz.Request) iz.Responder {
		return errorResponse(req.Context(), err)
	})(w, r)
}
