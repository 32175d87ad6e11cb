package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

const (
	contentTypeJSON      = "application/json"
	logMsgRequestServed  = "history api: request served"
	logMsgEncodingFailed = "history api: failed to encode response"
	logAttrMethod        = "method"
	logAttrPath          = "path"
	logAttrStatus        = "status"
	logAttrEntryCount    = "entry_count"
	logAttrDurationMS    = "duration_ms"
	logAttrRequestID     = "request_id"
	logAttrError         = "error"
)

// HistoryReader is the read side of the timeline, implemented by pubsubmanager.Manager.
type HistoryReader interface {
	GetHistory() []timeline.Entry
	GetHistoryFor(id string) []timeline.Entry
	QueryHistory(filter timeline.Filter) []timeline.Entry
}

type historyResponse struct {
	Entries []timeline.EntryDTO `json:"entries"`
}

// Option configures the router.
type Option func(*server)

// WithLogger logs one info record per request and encoding failures at error level.
func WithLogger(logger timeline.Logger) Option {
	return func(s *server) {
		s.logger = logger
	}
}

// WithMetricsRegistry instruments the routes and serves registry on /metrics.
func WithMetricsRegistry(registry *prometheus.Registry) Option {
	return func(s *server) {
		s.registry = registry
	}
}

type server struct {
	reader   HistoryReader
	logger   timeline.Logger
	registry *prometheus.Registry
	metrics  *requestMetrics
}

// NewRouter builds the chi router serving reader.
func NewRouter(reader HistoryReader, options ...Option) http.Handler {
	s := &server{reader: reader}
	for _, option := range options {
		option(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	if s.registry != nil {
		s.metrics = newRequestMetrics(s.registry)
		r.Use(s.metrics.middleware)
		r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", s.getHistory)
		r.Get("/{id}", s.getHistoryFor)
	})

	return r
}

func (s *server) getHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeEntries(w, r, s.reader.QueryHistory(filter))
}

func (s *server) getHistoryFor(w http.ResponseWriter, r *http.Request) {
	s.writeEntries(w, r, s.reader.GetHistoryFor(chi.URLParam(r, "id")))
}

func (s *server) writeEntries(w http.ResponseWriter, r *http.Request, entries []timeline.Entry) {
	body, err := jsoniter.ConfigFastest.Marshal(historyResponse{Entries: timeline.ToDTOs(entries)})
	if err != nil {
		if s.logger != nil {
			s.logger.Error(logMsgEncodingFailed, logAttrError, err.Error(), logAttrPath, r.URL.Path)
		}

		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")

		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

func (s *server) logRequests(next http.Handler) http.Handler {
	if s.logger == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info(
			logMsgRequestServed,
			logAttrMethod, r.Method,
			logAttrPath, r.URL.Path,
			logAttrStatus, ww.Status(),
			logAttrRequestID, middleware.GetReqID(r.Context()),
			logAttrDurationMS, float64(time.Since(start).Microseconds())/1000,
		)
	})
}
