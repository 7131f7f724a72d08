package telemetry

import (
	"strings"
	"sync"
)

type Report struct {
	Kind   string
	Id     string
	Params []any
}

// TestAPI records every report it receives so tests can assert on them.
type TestAPI struct {
	lock    *sync.Mutex
	reports *[]Report
}

func NewTestAPI() TestAPI {
	return TestAPI{
		lock:    &sync.Mutex{},
		reports: &[]Report{},
	}
}

func (t TestAPI) add(kind, id string, params []any) {
	t.lock.Lock()
	defer t.lock.Unlock()
	*t.reports = append(*t.reports, Report{Kind: kind, Id: id, Params: params})
}

func (t TestAPI) ReportBroken(id string, params ...any) {
	t.add("broken", id, params)
}

func (t TestAPI) ReportWarning(id string, params ...any) {
	t.add("warning", id, params)
}

func (t TestAPI) ReportDebug(msg string, params ...any) {
	t.add("debug", msg, params)
}

func (t TestAPI) ReportCount(id string, count int64) {
	t.add("count", id, []any{count})
}

// Reports returns the reports of the given kind ("broken", "warning", "debug",
// "count") whose id ends with suffix.
func (t TestAPI) Reports(kind, suffix string) []Report {
	t.lock.Lock()
	defer t.lock.Unlock()

	var out []Report
	for _, r := range *t.reports {
		if r.Kind == kind && strings.HasSuffix(r.Id, suffix) {
			out = append(out, r)
		}
	}
	return out
}
