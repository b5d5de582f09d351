// Package web serves the operator front-end: submit URLs and API keys,
// watch progress, browse the table, download or upload exports.
package web

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mempirate/faqex/faq"
	"github.com/mempirate/faqex/log"
	"github.com/mempirate/faqex/pipeline"
	"github.com/mempirate/faqex/slack"
	"github.com/mempirate/faqex/store"
	"github.com/mempirate/faqex/util"
)

const (
	CSVExportName  = "extracted_faqs.csv"
	JSONExportName = "extracted_faqs.json"
)

// PipelineFactory builds a pipeline from the operator-supplied keys.
// Empty keys mean "use what the process was configured with".
type PipelineFactory func(ctx context.Context, firecrawlKey, modelKey string) (*pipeline.Pipeline, error)

// Status is the state of the current (or last) extraction batch.
type Status struct {
	Running bool     `json:"running"`
	Current int      `json:"current"`
	Total   int      `json:"total"`
	URL     string   `json:"url,omitempty"`
	Error   string   `json:"error,omitempty"`
	Records int      `json:"records"`
	Missed  []string `json:"missed,omitempty"`
}

type Server struct {
	log     zerolog.Logger
	factory PipelineFactory
	exports store.LocalStore

	// Optional integrations. Either may be nil.
	uploader *store.GCSStore
	notifier *slack.Notifier

	tmpl *template.Template

	mu      sync.Mutex
	pipe    *pipeline.Pipeline
	running bool
	current int
	total   int
	lastURL string
	lastErr string
}

func NewServer(factory PipelineFactory, exports store.LocalStore, uploader *store.GCSStore, notifier *slack.Notifier) *Server {
	return &Server{
		log:      log.NewLogger("web"),
		factory:  factory,
		exports:  exports,
		uploader: uploader,
		notifier: notifier,
		tmpl:     template.Must(template.New("index").Parse(indexTemplate)),
	}
}

// Router builds the chi router for the UI.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/", s.handleIndex)
	r.Post("/extract", s.handleExtract)
	r.Get("/status", s.handleStatus)
	r.Get("/export/csv", s.handleExportCSV)
	r.Get("/export/json", s.handleExportJSON)
	r.Post("/upload", s.handleUpload)

	return r
}

// ListenAndServe serves the UI until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Serving operator UI")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running: s.running,
		Current: s.current,
		Total:   s.total,
		URL:     s.lastURL,
		Error:   s.lastErr,
	}

	if s.pipe != nil {
		st.Records = s.pipe.Table().Len()
		st.Missed = s.pipe.Missed()
	}

	return st
}

// table returns the current table, which may be empty before the first
// batch.
func (s *Server) table() *faq.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pipe == nil {
		return faq.NewTable()
	}
	return s.pipe.Table()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.status()

	data := map[string]any{
		"Status":    st,
		"Records":   s.table().Records(),
		"CanUpload": s.uploader != nil,
	}

	if err := s.tmpl.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("Failed to render index")
	}
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// 10 MiB is plenty for a CSV of URLs.
	if err := r.ParseMultipartForm(10 * util.MiB); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	urls := parseURLList(r.FormValue("urls"))

	if file, _, err := r.FormFile("csv"); err == nil {
		defer file.Close()

		fromCSV, err := util.ParseURLColumn(file)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		urls = append(urls, fromCSV...)
	}

	if len(urls) == 0 {
		http.Error(w, "no URLs provided", http.StatusBadRequest)
		return
	}

	max := 0
	if v := r.FormValue("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid max", http.StatusBadRequest)
			return
		}
		max = n
	}

	pipe, err := s.factory(r.Context(), r.FormValue("firecrawl_key"), r.FormValue("model_key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		http.Error(w, "an extraction is already running", http.StatusConflict)
		return
	}
	s.running = true
	s.pipe = pipe
	s.current, s.total, s.lastURL, s.lastErr = 0, len(urls), "", ""
	s.mu.Unlock()

	go s.runBatch(pipe, urls, max)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// runBatch drives the pipeline in the background. Only one batch runs
// at a time.
func (s *Server) runBatch(pipe *pipeline.Pipeline, urls []string, max int) {
	err := pipe.ProcessAll(context.Background(), urls, max, func(pr pipeline.Progress) {
		s.mu.Lock()
		s.current, s.total, s.lastURL = pr.Current, pr.Total, pr.URL
		s.mu.Unlock()
	})

	s.mu.Lock()
	s.running = false
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()

	if err := s.writeExports(pipe.Table()); err != nil {
		s.log.Error().Err(err).Msg("Failed to write exports")
	}

	if err := s.notifier.NotifyBatchDone(len(urls), pipe.Table().Len(), pipe.Missed()); err != nil {
		s.log.Error().Err(err).Msg("Failed to post batch summary")
	}
}

func (s *Server) writeExports(table *faq.Table) error {
	var csvBuf, jsonBuf strings.Builder
	if err := table.WriteCSV(&csvBuf); err != nil {
		return err
	}
	if err := table.WriteJSON(&jsonBuf); err != nil {
		return err
	}

	if err := s.exports.Store(CSVExportName, strings.NewReader(csvBuf.String())); err != nil {
		return err
	}
	return s.exports.Store(JSONExportName, strings.NewReader(jsonBuf.String()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+CSVExportName+`"`)

	if err := s.table().WriteCSV(w); err != nil {
		s.log.Error().Err(err).Msg("Failed to stream CSV export")
	}
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+JSONExportName+`"`)

	if err := s.table().WriteJSON(w); err != nil {
		s.log.Error().Err(err).Msg("Failed to stream JSON export")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		http.Error(w, "no bucket configured", http.StatusNotImplemented)
		return
	}

	if err := s.writeExports(s.table()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := s.uploader.UploadAll(r.Context(), s.exports, []string{CSVExportName, JSONExportName}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parseURLList(raw string) []string {
	var urls []string
	for _, line := range strings.Split(raw, "\n") {
		if u := strings.TrimSpace(line); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
