package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demo-data-loader/internal/model"
)

// recordingSink is a test HTTP sink answering with scripted statuses.
type recordingSink struct {
	mu       sync.Mutex
	bodies   []string
	agents   []string
	statusOf func(call int) int
}

func (s *recordingSink) handler(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.bodies = append(s.bodies, string(b))
	s.agents = append(s.agents, r.Header.Get("User-Agent"))
	call := len(s.bodies)
	s.mu.Unlock()
	status := http.StatusOK
	if s.statusOf != nil {
		status = s.statusOf(call)
	}
	w.WriteHeader(status)
}

func newSink(t *testing.T, statusOf func(call int) int) (*recordingSink, *Client) {
	t.Helper()
	rs := &recordingSink{statusOf: statusOf}
	srv := httptest.NewServer(http.HandlerFunc(rs.handler))
	t.Cleanup(srv.Close)
	return rs, NewClient(srv.URL, 5*time.Second)
}

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = orig })
	return &slept
}

func events(t *testing.T, raw string) []any {
	t.Helper()
	v, err := model.DecodeJSON([]byte(raw))
	require.NoError(t, err)
	return v.([]any)
}

func TestDeliverEventsPartialFailure(t *testing.T) {
	noSleep(t)
	rs, cli := newSink(t, func(call int) int {
		if call == 5 {
			return http.StatusInternalServerError
		}
		return http.StatusOK
	})

	p := Pipeline{Sink: cli}
	out := p.DeliverEvents(context.Background(), events(t, `[{"n":1},{"n":2},{"n":3},{"n":4},{"n":5}]`))

	assert.Equal(t, 5, out.Total)
	assert.Equal(t, 4, out.Successful)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, StatusPartial, out.Status())
	assert.Equal(t, []string{"item 5: HTTP 500"}, out.Errors)
	assert.Equal(t, 0, out.ErrorsTruncated)
	require.Len(t, rs.bodies, 5)
}

func TestDeliverEventsSendsFlatPayloadInOrder(t *testing.T) {
	noSleep(t)
	rs, cli := newSink(t, nil)

	out := Pipeline{Sink: cli}.DeliverEvents(context.Background(),
		events(t, `[{"z":"a & b","a":1},{"event":{"PID":7}}]`))

	assert.Equal(t, StatusSuccess, out.Status())
	assert.Equal(t, []string{`{"z":"a & b","a":1}`, `{"event":{"PID":7}}`}, rs.bodies)
	assert.Equal(t, []string{DefaultUserAgent, DefaultUserAgent}, rs.agents)
}

func TestStatusBoundaries(t *testing.T) {
	cases := map[int]bool{199: false, 200: true, 204: true, 299: true, 300: false, 404: false, 500: false}
	for status, ok := range cases {
		assert.Equal(t, ok, IsSuccess(status), "status %d", status)
	}

	noSleep(t)
	sink := &scriptedSink{statuses: []int{199, 200, 299, 300}}
	out := Pipeline{Sink: sink}.DeliverEvents(context.Background(), events(t, `[1,2,3,4]`))
	assert.Equal(t, 2, out.Successful)
	assert.Equal(t, []string{"item 1: HTTP 199", "item 4: HTTP 300"}, out.Errors)
}

// scriptedSink answers with fixed statuses; 1xx codes cannot be produced
// through a real HTTP round trip.
type scriptedSink struct {
	statuses []int
	calls    int
}

func (s *scriptedSink) Post(ctx context.Context, body []byte) (int, error) {
	st := s.statuses[s.calls]
	s.calls++
	return st, nil
}

type failingSink struct{ calls int }

func (f *failingSink) Post(ctx context.Context, body []byte) (int, error) {
	f.calls++
	return 0, errors.New("connection refused")
}

func TestRedirectIsAFailure(t *testing.T) {
	noSleep(t)
	var followed int
	mux := http.NewServeMux()
	mux.HandleFunc("/hook", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	})
	mux.HandleFunc("/elsewhere", func(w http.ResponseWriter, r *http.Request) {
		followed++
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out := Pipeline{Sink: NewClient(srv.URL+"/hook", time.Second)}.DeliverEvents(context.Background(), events(t, `[{"a":1}]`))
	assert.Equal(t, 0, out.Successful)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, []string{"item 1: HTTP 302"}, out.Errors)
	assert.Zero(t, followed)
}

func TestDeliverEventsTransportErrorsAreCountedAndCapped(t *testing.T) {
	noSleep(t)
	sink := &failingSink{}
	items := make([]any, 13)
	for i := range items {
		items[i] = map[string]any{"i": i}
	}

	out := Pipeline{Sink: sink}.DeliverEvents(context.Background(), items)

	assert.Equal(t, 13, sink.calls, "no early abort")
	assert.Equal(t, 13, out.Failed)
	assert.Equal(t, 0, out.Successful)
	assert.Equal(t, StatusPartial, out.Status())
	require.Len(t, out.Errors, MaxErrors)
	assert.Equal(t, "item 1: connection refused", out.Errors[0])
	assert.Equal(t, "item 10: connection refused", out.Errors[9])
	assert.Equal(t, 3, out.ErrorsTruncated)
}

func TestDeliverEventsUnreachableSink(t *testing.T) {
	noSleep(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out := Pipeline{Sink: NewClient(url, time.Second)}.DeliverEvents(context.Background(), events(t, `[{}]`))
	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "item 1: ")
}

func TestPacingSkipsAfterLastCall(t *testing.T) {
	slept := noSleep(t)
	_, cli := newSink(t, nil)

	Pipeline{Sink: cli, Delay: 20 * time.Millisecond}.DeliverEvents(context.Background(), events(t, `[1,2,3]`))
	assert.Equal(t, []time.Duration{20 * time.Millisecond, 20 * time.Millisecond}, *slept)

	*slept = nil
	Pipeline{Sink: cli}.DeliverEvents(context.Background(), events(t, `[1,2,3]`))
	assert.Empty(t, *slept, "zero delay disables pacing")
}

func TestDeliverLinesBatches(t *testing.T) {
	slept := noSleep(t)
	rs, cli := newSink(t, func(call int) int {
		if call == 2 {
			return http.StatusBadGateway
		}
		return http.StatusAccepted
	})
	lines := []string{"l1", "l2", "l3", "l4", "l5"}

	out := Pipeline{Sink: cli, BatchSize: 2, Delay: time.Millisecond}.DeliverLines(context.Background(), lines)

	assert.Equal(t, 5, out.Total)
	assert.Equal(t, 3, out.Successful)
	assert.Equal(t, 2, out.Failed)
	assert.Equal(t, []string{"batch 2: HTTP 502"}, out.Errors)
	assert.Len(t, *slept, 2)

	require.Len(t, rs.bodies, 3)
	var first lineBatch
	require.NoError(t, json.Unmarshal([]byte(rs.bodies[0]), &first))
	assert.Equal(t, []lineEvent{{Raw: "l1"}, {Raw: "l2"}}, first.Events)
	assert.Equal(t, `{"events":[{"raw":"l5"}]}`, rs.bodies[2])
}

func TestDeliverEmpty(t *testing.T) {
	out := Pipeline{Sink: &failingSink{}}.DeliverEvents(context.Background(), nil)
	assert.Equal(t, Outcome{}, out)
	assert.Equal(t, StatusSuccess, out.Status())
}

func TestOutcomeReport(t *testing.T) {
	out := Outcome{Total: 3, Successful: 2, Failed: 1, Errors: []string{"item 3: HTTP 500"}}
	rep := out.Report("https://example.com/t.json")

	b, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "partial",
		"template_url": "https://example.com/t.json",
		"events_total": 3,
		"events_sent": 2,
		"events_failed": 1,
		"errors": ["item 3: HTTP 500"]
	}`, string(b))
}
