package web_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practicebot/internal/config"
	"practicebot/internal/metrics"
	"practicebot/internal/model"
	"practicebot/internal/schedule"
	"practicebot/internal/sheet"
	"practicebot/internal/web"
)

type fakeLoader struct {
	sched *schedule.Schedule
	err   error
	calls int
}

func (f *fakeLoader) LoadSchedule(_ context.Context, _ time.Time) (*schedule.Schedule, error) {
	f.calls++
	return f.sched, f.err
}

func practice(t *testing.T, day, start, end int, court, label, booker string, members ...string) model.Practice {
	t.Helper()
	b, err := model.NewPracticeBuilder(time.Date(2023, time.October, day, 0, 0, 0, 0, time.UTC), start, end, court, label, booker, members)
	require.NoError(t, err)
	return b.Build()
}

func newFixture(t *testing.T, mutate func(*config.Config)) (*fakeLoader, http.Handler) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	if mutate != nil {
		mutate(cfg)
	}
	loader := &fakeLoader{sched: schedule.New([]model.Practice{
		practice(t, 17, 18, 21, "宝", "B", "Carol", "Zed"),
		practice(t, 18, 16, 21, "宝", "A", "Carol", "Alice", "Bob"),
		practice(t, 18, 9, 12, "宝", "C", "Carol", "Early"),
		practice(t, 19, 10, 12, "市民", "1", "Dan", "Eve"),
		practice(t, 25, 10, 12, "市民", "2", "Dan"),
	})}
	rec := metrics.New()
	rec.MessageSent()
	return loader, web.NewServer(cfg, loader, rec).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	_, h := newFixture(t, nil)
	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestPractices(t *testing.T) {
	loader, h := newFixture(t, nil)

	rec := get(t, h, "/api/practices?date=2023-10-18&days=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		From      string `json:"from"`
		Until     string `json:"until"`
		Practices []struct {
			Court     string   `json:"court"`
			StartHour int      `json:"start_hour"`
			Members   []string `json:"members"`
			Summary   string   `json:"summary"`
			UID       string   `json:"uid"`
		} `json:"practices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "2023-10-18", body.From)
	assert.Equal(t, "2023-10-20", body.Until)
	require.Len(t, body.Practices, 3)
	assert.Equal(t, "宝C", body.Practices[0].Court)
	assert.Equal(t, "宝A", body.Practices[1].Court)
	assert.Equal(t, []string{"Alice", "Bob"}, body.Practices[1].Members)
	assert.Equal(t, "10/18(水) 16-21 宝A (Carol)", body.Practices[1].Summary)
	assert.True(t, strings.HasSuffix(body.Practices[2].UID, "@practicebot"))

	// A second request within the cache window reuses the loaded schedule.
	get(t, h, "/api/practices?date=2023-10-18")
	assert.Equal(t, 1, loader.calls)
}

func TestPracticesBadDate(t *testing.T) {
	_, h := newFixture(t, nil)
	rec := get(t, h, "/api/practices?date=10/18")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReminders(t *testing.T) {
	_, h := newFixture(t, nil)

	rec := get(t, h, "/api/reminders?date=2023-10-18")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Date      string `json:"date"`
		AfterHour int    `json:"after_hour"`
		Reminders []struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"reminders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 16, body.AfterHour)
	require.Len(t, body.Reminders, 2)
	assert.Equal(t, "today", body.Reminders[0].Kind)
	assert.Equal(t,
		"\n本日の練習のリマインドです\n10/18(水) 16-21 宝A (Carol)\nAliceBob\nボール担当の方よろしくお願いいたします",
		body.Reminders[0].Message)
	assert.Equal(t, "tomorrow", body.Reminders[1].Kind)
}

func TestCalendar(t *testing.T) {
	_, h := newFixture(t, nil)

	rec := get(t, h, "/calendar.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Equal(t, 5, strings.Count(rec.Body.String(), "BEGIN:VEVENT"))
}

func TestMetrics(t *testing.T) {
	_, h := newFixture(t, nil)

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "practicebot_messages_sent_total 1")
}

func TestLoadFailure(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: timeout", sheet.ErrFetch), want: http.StatusBadGateway},
		{err: fmt.Errorf("decode workbook: %w", fmt.Errorf("%w: line 4: cell must be a scalar", sheet.ErrMalformedInput)), want: http.StatusUnprocessableEntity},
		{err: &sheet.MalformedInputError{Sheet: "10月", Row: 3, Column: "time", Value: "夕方", Err: sheet.ErrInvalidTimeRange}, want: http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		loader, h := newFixture(t, nil)
		loader.err = tc.err

		rec := get(t, h, "/api/reminders?date=2023-10-18")
		assert.Equal(t, tc.want, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
	}
}

func TestBasicAuth(t *testing.T) {
	_, h := newFixture(t, func(cfg *config.Config) {
		cfg.BasicAuth.Username = "coach"
		cfg.BasicAuth.Password = "secret"
	})

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)

	rec := get(t, h, "/api/practices")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/practices?date=2023-10-18", nil)
	req.SetBasicAuth("coach", "secret")
	ok := httptest.NewRecorder()
	h.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newFixture(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/practices", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
