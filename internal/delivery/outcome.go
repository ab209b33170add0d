package delivery

const (
	StatusSuccess = "success"
	StatusPartial = "partial"
)

// Outcome aggregates the results of one delivery run. Counters only grow.
type Outcome struct {
	Total           int
	Successful      int
	Failed          int
	Errors          []string // first MaxErrors failure descriptions, in order
	ErrorsTruncated int      // failures beyond MaxErrors
}

func (o *Outcome) fail(count int, reason string) {
	o.Failed += count
	if len(o.Errors) < MaxErrors {
		o.Errors = append(o.Errors, reason)
		return
	}
	o.ErrorsTruncated++
}

// Status is "success" when nothing failed and "partial" otherwise. A run
// that reached delivery never reports outright failure.
func (o Outcome) Status() string {
	if o.Failed == 0 {
		return StatusSuccess
	}
	return StatusPartial
}

// Report is the result returned to callers of a whole load run.
type Report struct {
	Status          string   `json:"status"`
	RunID           string   `json:"run_id,omitempty"`
	TemplateURL     string   `json:"template_url,omitempty"`
	Mode            string   `json:"mode,omitempty"`
	EventsTotal     int      `json:"events_total"`
	EventsSent      int      `json:"events_sent"`
	EventsFailed    int      `json:"events_failed"`
	Errors          []string `json:"errors,omitempty"`
	ErrorsTruncated int      `json:"errors_truncated,omitempty"`
	StartedAt       string   `json:"started_at,omitempty"`
	FinishedAt      string   `json:"finished_at,omitempty"`
}

// Report converts the outcome into the caller-facing result.
func (o Outcome) Report(templateURL string) Report {
	return Report{
		Status:          o.Status(),
		TemplateURL:     templateURL,
		EventsTotal:     o.Total,
		EventsSent:      o.Successful,
		EventsFailed:    o.Failed,
		Errors:          o.Errors,
		ErrorsTruncated: o.ErrorsTruncated,
	}
}
