package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const (
	httpReadTimeout  = 10 * time.Second
	httpWriteTimeout = 30 * time.Second
	httpIdleTimeout  = 60 * time.Second

	requestTimeout = 30 * time.Second
)

// Server serves a directory of generated reports over HTTP. Each report is a
// dated directory of PNG figures; the index lists them newest first.
type Server struct {
	Dir    string
	Logger *logrus.Logger
}

func NewServer(dir string, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{Dir: dir, Logger: logger}
}

// Router configures the HTTP routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

			defer func() {
				s.Logger.WithFields(logrus.Fields{
					"method":      req.Method,
					"path":        req.URL.Path,
					"status":      ww.Status(),
					"duration_ms": time.Since(start).Milliseconds(),
				}).Info("http_request")
			}()

			next.ServeHTTP(ww, req)
		})
	})

	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleIndex)
	r.Handle("/reports/*", http.StripPrefix("/reports/", http.FileServer(http.Dir(s.Dir))))

	return r
}

// Start runs the HTTP server until it fails.
func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.Logger.WithField("addr", addr).Info("starting report server")

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}

	return server.ListenAndServe()
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// HandleIndex lists the report directories under Dir, newest first.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		s.Logger.WithError(err).Error("failed to read report directory")
		http.Error(w, "report directory unavailable", http.StatusInternalServerError)
		return
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintln(w, "<!DOCTYPE html><html><head><title>cistat reports</title></head><body>")
	fmt.Fprintln(w, "<h1>Reports</h1><ul>")
	for _, d := range dirs {
		fmt.Fprintf(w, "<li><a href=\"/reports/%s/\">%s</a></li>\n", d, d)
	}
	fmt.Fprintln(w, "</ul></body></html>")
}

// ReportPath resolves a report directory name against Dir without allowing
// traversal outside it.
func (s *Server) ReportPath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned != name || filepath.IsAbs(cleaned) || cleaned == ".." {
		return "", fmt.Errorf("bad report name: %q", name)
	}
	return filepath.Join(s.Dir, cleaned), nil
}
