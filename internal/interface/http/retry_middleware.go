package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yanqian/ciderworks/internal/infra/config"
)

const retryBodyLimit = 1 << 20

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// withRetry replays POST/PUT requests that failed with a 5xx. Paths ending in
// one of cfg.Exclude are never replayed.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !replayable(r, cfg.Exclude) {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := readRequestBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		for attempt := 1; ; attempt++ {
			recorder := newRetryResponseRecorder(w)
			attemptReq := r.Clone(r.Context())
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
			attemptReq.ContentLength = int64(len(body))

			handler.ServeHTTP(recorder, attemptReq)
			if !recorder.retryable() || attempt == cfg.MaxAttempts {
				recorder.commit()
				return
			}
			logger.Warn("transient failure, retrying request", "path", r.URL.Path, "status", recorder.statusCode, "attempt", attempt)

			timer := time.NewTimer(cfg.BaseBackoff << (attempt - 1))
			select {
			case <-r.Context().Done():
				timer.Stop()
				recorder.commit()
				return
			case <-timer.C:
			}
		}
	})
}

func replayable(r *http.Request, exclude []string) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return false
	}
	for _, suffix := range exclude {
		if suffix != "" && strings.HasSuffix(r.URL.Path, suffix) {
			return false
		}
	}
	return true
}

func readRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// retryResponseRecorder buffers one attempt so a failed attempt never reaches the client.
type retryResponseRecorder struct {
	dst        http.ResponseWriter
	header     http.Header
	body       bytes.Buffer
	statusCode int
	wroteHead  bool
}

func newRetryResponseRecorder(dst http.ResponseWriter) *retryResponseRecorder {
	return &retryResponseRecorder{
		dst:        dst,
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (r *retryResponseRecorder) Header() http.Header {
	return r.header
}

func (r *retryResponseRecorder) WriteHeader(status int) {
	if r.wroteHead {
		return
	}
	r.statusCode = status
	r.wroteHead = true
}

func (r *retryResponseRecorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *retryResponseRecorder) Flush() {}

func (r *retryResponseRecorder) commit() {
	dstHeader := r.dst.Header()
	for k, values := range r.header {
		dstHeader[k] = append([]string(nil), values...)
	}
	r.dst.WriteHeader(r.statusCode)
	if r.body.Len() > 0 {
		_, _ = r.dst.Write(r.body.Bytes())
	}
}

func (r *retryResponseRecorder) retryable() bool {
	return r.statusCode >= http.StatusInternalServerError
}
