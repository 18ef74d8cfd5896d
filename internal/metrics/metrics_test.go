package metrics_test

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"practicebot/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func TestRecorder(t *testing.T) {
	convey.Convey("Given a fresh recorder", t, func() {
		r := metrics.New()

		convey.Convey("When a run is recorded", func() {
			started := time.Now().Add(-time.Second)
			r.PracticesParsed(12)
			r.MessagesPlanned("today", 1)
			r.MessagesPlanned("tomorrow", 2)
			r.MessageSent()
			r.MessageSent()
			r.SendFailed()
			r.RunFinished(started, errors.New("one send failed"))

			convey.Convey("Then the counters are gathered from its registry", func() {
				n, err := testutil.GatherAndCount(r.Registry())
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldBeGreaterThan, 0)

				body := scrape(r)
				convey.So(body, convey.ShouldContainSubstring, "practicebot_practices_parsed_total 12")
				convey.So(body, convey.ShouldContainSubstring, `practicebot_messages_planned_total{kind="tomorrow"} 2`)
				convey.So(body, convey.ShouldContainSubstring, "practicebot_messages_sent_total 2")
				convey.So(body, convey.ShouldContainSubstring, "practicebot_send_failures_total 1")
				convey.So(body, convey.ShouldContainSubstring, "practicebot_last_success_timestamp_seconds 0")
			})

			convey.Convey("Then they can be written as a textfile", func() {
				path := filepath.Join(t.TempDir(), "practicebot.prom")
				convey.So(r.WriteTextfile(path), convey.ShouldBeNil)

				data, err := os.ReadFile(path)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(data), convey.ShouldContainSubstring, "practicebot_run_duration_seconds_count 1")
			})
		})

		convey.Convey("When a namespace is given", func() {
			custom := metrics.New(metrics.WithNamespace("club"))
			custom.ParseFailed()
			convey.So(scrape(custom), convey.ShouldContainSubstring, "club_parse_failures_total 1")
		})
	})
}

func scrape(r *metrics.Recorder) string {
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}
