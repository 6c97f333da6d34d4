package testutil

import (
	"strings"
	"sync"
)

// Report is a single call made to a RecordingAPI.
type Report struct {
	Kind   string
	Id     string
	Params []any
}

// RecordingAPI implements telemetry.API by remembering every report.
type RecordingAPI struct {
	mu      sync.Mutex
	Reports []Report
}

func (r *RecordingAPI) record(kind, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reports = append(r.Reports, Report{Kind: kind, Id: id, Params: params})
}

func (r *RecordingAPI) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *RecordingAPI) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *RecordingAPI) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *RecordingAPI) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Find returns the reports of a kind whose id ends with `suffix`.
func (r *RecordingAPI) Find(kind, suffix string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []Report
	for _, rep := range r.Reports {
		if rep.Kind == kind && strings.HasSuffix(rep.Id, suffix) {
			found = append(found, rep)
		}
	}
	return found
}
