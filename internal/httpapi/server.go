package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rollcall-dev/rollcall/internal/metrics"
	"github.com/rollcall-dev/rollcall/internal/rollcall/service"
)

// DefaultEndpointPath is where terminals POST scans and GET health and the
// registry feed.
const DefaultEndpointPath = "/v1/attendance"

type Dependencies struct {
	Logger            *log.Logger
	Addr              string
	EndpointPath      string
	AttendanceService *service.AttendanceService
	RosterService     *service.RosterService
	HealthService     *service.HealthService
	Metrics           *metrics.Server
	Gatherer          prometheus.Gatherer // nil hides /metrics
	AdminKey          string              // empty disables the dashboard API
	CORSOrigins       []string
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	attendance *service.AttendanceService
	roster     *service.RosterService
	health     *service.HealthService
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:     d.Logger,
		attendance: d.AttendanceService,
		roster:     d.RosterService,
		health:     d.HealthService,
	}

	path := d.EndpointPath
	if path == "" {
		path = DefaultEndpointPath
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(recoveryMiddleware(d.Logger))
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(d.Logger, d.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "X-Admin-Key"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get(path, s.handleEndpointGet)
	r.Post(path, s.handleEndpointPost)

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	if d.AdminKey != "" {
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(adminKeyMiddleware(d.AdminKey))
			r.Get("/people", s.handleListPeople)
			r.Put("/people/{uid}", s.handlePutPerson)
			r.Delete("/people/{uid}", s.handleDeletePerson)
			r.Get("/attendance", s.handleListAttendance)
			r.Patch("/attendance/{id}", s.handlePatchAttendance)
			r.Delete("/attendance/{id}", s.handleDeleteAttendance)
		})
	}

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
