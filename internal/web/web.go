package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"practicebot/internal/config"
	"practicebot/internal/ics"
	appLog "practicebot/internal/log"
	"practicebot/internal/metrics"
	"practicebot/internal/model"
	"practicebot/internal/remind"
	"practicebot/internal/render"
	"practicebot/internal/schedule"
	"practicebot/internal/sheet"
)

const (
	scheduleCacheTTL = 30 * time.Second
	defaultDays      = 7
	maxDays          = 366
)

// ScheduleLoader produces the current schedule. *remind.Runner implements it.
type ScheduleLoader interface {
	LoadSchedule(ctx context.Context, ref time.Time) (*schedule.Schedule, error)
}

// Server exposes the schedule, the planned reminders, a calendar feed and
// run metrics over HTTP.
type Server struct {
	cfg     *config.Config
	loader  ScheduleLoader
	planner remind.Planner
	metrics *metrics.Recorder
	loc     *time.Location
	mux     *http.ServeMux

	// Loaded schedule, reused for scheduleCacheTTL so that each request
	// does not refetch and reparse the workbook.
	scheduleMu    sync.RWMutex
	scheduleCache *scheduleCache
}

type scheduleCache struct {
	year      int
	schedule  *schedule.Schedule
	updatedAt time.Time
}

// NewServer constructs a new Server. A nil recorder gets a private one.
func NewServer(cfg *config.Config, loader ScheduleLoader, rec *metrics.Recorder) *Server {
	if rec == nil {
		rec = metrics.New()
	}
	s := &Server{
		cfg:     cfg,
		loader:  loader,
		planner: remind.NewPlanner(cfg.Reminder),
		metrics: rec,
		loc:     cfg.Location(),
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. Both a
// username and a password are required.
func (s *Server) basicAuthEnabled() bool {
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="practicebot", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/practices", s.handlePractices)
	s.mux.HandleFunc("GET /api/reminders", s.handleReminders)
	s.mux.HandleFunc("GET /calendar.ics", s.handleCalendar)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// practiceDTO is a JSON-friendly view of a practice.
type practiceDTO struct {
	UID        string    `json:"uid"`
	Date       string    `json:"date"`
	Weekday    string    `json:"weekday"`
	StartHour  int       `json:"start_hour"`
	EndHour    int       `json:"end_hour"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Court      string    `json:"court"`
	CourtName  string    `json:"court_name"`
	CourtLabel string    `json:"court_label"`
	Booker     string    `json:"booker"`
	Members    []string  `json:"members"`
	Summary    string    `json:"summary"`
}

type practicesResponse struct {
	From      string        `json:"from"`
	Until     string        `json:"until"`
	Timezone  string        `json:"timezone"`
	Practices []practiceDTO `json:"practices"`
}

type reminderDTO struct {
	Kind     remind.Kind `json:"kind"`
	Practice practiceDTO `json:"practice"`
	Message  string      `json:"message"`
}

type remindersResponse struct {
	Date      string        `json:"date"`
	AfterHour int           `json:"after_hour"`
	Reminders []reminderDTO `json:"reminders"`
}

// handlePractices lists practices whose day falls in [date, date+days).
//
// GET /api/practices?date=2023-10-18&days=7
//   - date: first day, default today in the configured timezone
//   - days: window length, default 7
func (s *Server) handlePractices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, ok := s.parseDate(w, q.Get("date"))
	if !ok {
		return
	}
	days := parseIntDefault(q.Get("days"), defaultDays)
	if days <= 0 {
		days = defaultDays
	}
	days = min(days, maxDays)
	until := from.AddDate(0, 0, days)

	sched, ok := s.schedule(w, r, from)
	if !ok {
		return
	}
	window := sched.Filter(schedule.All(schedule.OnOrAfterDate(from), schedule.BeforeDate(until)))

	dtos := make([]practiceDTO, 0, window.Len())
	for _, p := range window.Practices() {
		dtos = append(dtos, toDTO(p))
	}
	writeJSON(w, http.StatusOK, practicesResponse{
		From:      from.Format(time.DateOnly),
		Until:     until.Format(time.DateOnly),
		Timezone:  s.loc.String(),
		Practices: dtos,
	})
}

// handleReminders shows what a run on the given day would send.
//
// GET /api/reminders?date=2023-10-18
func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	day, ok := s.parseDate(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	sched, ok := s.schedule(w, r, day)
	if !ok {
		return
	}

	planned := s.planner.Plan(sched, day)
	dtos := make([]reminderDTO, 0, len(planned))
	for _, rem := range planned {
		dtos = append(dtos, reminderDTO{Kind: rem.Kind, Practice: toDTO(rem.Practice), Message: rem.Message})
	}
	writeJSON(w, http.StatusOK, remindersResponse{
		Date:      day.Format(time.DateOnly),
		AfterHour: s.planner.AfterHour,
		Reminders: dtos,
	})
}

// handleCalendar serves the whole schedule as an iCalendar feed.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	sched, ok := s.schedule(w, r, s.today())
	if !ok {
		return
	}
	body := ics.Export(sched.Practices(), ics.Options{Timezone: s.loc.String()})
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// schedule returns the cached schedule for ref's year, loading it when
// stale. On failure it writes the error response and returns false.
func (s *Server) schedule(w http.ResponseWriter, r *http.Request, ref time.Time) (*schedule.Schedule, bool) {
	now := time.Now()
	year := ref.Year()

	s.scheduleMu.RLock()
	sc := s.scheduleCache
	s.scheduleMu.RUnlock()
	if sc != nil && sc.year == year && now.Sub(sc.updatedAt) < scheduleCacheTTL {
		return sc.schedule, true
	}

	sched, err := s.loader.LoadSchedule(r.Context(), ref)
	if err != nil {
		appLog.Error("api: schedule load failed", err, "path", r.URL.Path)
		status := http.StatusBadGateway
		if errors.Is(err, sheet.ErrMalformedInput) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return nil, false
	}

	s.scheduleMu.Lock()
	s.scheduleCache = &scheduleCache{year: year, schedule: sched, updatedAt: time.Now()}
	s.scheduleMu.Unlock()
	return sched, true
}

func (s *Server) today() time.Time {
	return model.TruncateToDay(time.Now().In(s.loc))
}

// parseDate reads a YYYY-MM-DD query value in the configured timezone. An
// empty value means today.
func (s *Server) parseDate(w http.ResponseWriter, v string) (time.Time, bool) {
	if v == "" {
		return s.today(), true
	}
	t, err := time.ParseInLocation(time.DateOnly, v, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}

func toDTO(p model.Practice) practiceDTO {
	return practiceDTO{
		UID:        ics.UID(p),
		Date:       p.Date().Format(time.DateOnly),
		Weekday:    render.Weekday(p.Date()),
		StartHour:  p.StartHour(),
		EndHour:    p.EndHour(),
		Start:      p.Start(),
		End:        p.End(),
		Court:      p.Court(),
		CourtName:  p.CourtName(),
		CourtLabel: p.CourtLabel(),
		Booker:     p.Booker(),
		Members:    p.Members(),
		Summary:    render.Summary(p),
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
