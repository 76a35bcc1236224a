package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger = zap.NewNop().Sugar()

// SetLogger передаёт мидлвари логгер приложения. Вызывается один раз при старте.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		log = l
	}
}

// statusWriter перехватывает код и размер ответа для лога.
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// WithLogging логирует каждый запрос: метод, путь, код, размер и длительность.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		log.Infow("request",
			"method", r.Method,
			"uri", r.RequestURI,
			"status", sw.status,
			"size", sw.size,
			"duration", time.Since(start),
		)
	})
}
