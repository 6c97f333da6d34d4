package testutil

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Contest is a contest box on a fake reporting unit page, each candidate is
// a (label, vote cell text) pair.
type Contest struct {
	Name       string
	Candidates [][2]string
}

// ListingPage renders a page with a single dropdown, a placeholder option
// is always added first.
func ListingPage(control string, options []string) string {
	var b strings.Builder
	b.WriteString("<html><body><form>")
	fmt.Fprintf(&b, `<select name="%s">`, html.EscapeString(control))
	b.WriteString(`<option value="-1">-- Select --</option>`)
	for _, opt := range options {
		fmt.Fprintf(&b, `<option value="%s">%s</option>`, html.EscapeString(opt), html.EscapeString(opt))
	}
	b.WriteString("</select></form></body></html>")
	return b.String()
}

// UnitPage renders a reporting unit page, an empty wardName leaves the
// reporting unit dropdown without a selected option.
func UnitPage(wardName string, contests ...Contest) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(`<select name="ddReportingUnits"><option value="-1">-- Select --</option>`)
	if wardName != "" {
		fmt.Fprintf(&b, `<option value="1" selected="selected">%s</option>`, html.EscapeString(wardName))
	}
	b.WriteString("</select>")
	for _, c := range contests {
		b.WriteString(`<div class="contestBox">`)
		fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(c.Name))
		b.WriteString(`<table class="resultTable"><tbody>`)
		for _, cand := range c.Candidates {
			fmt.Fprintf(
				&b,
				`<tr><td class="candtd">%s</td><td>%s</td></tr>`,
				html.EscapeString(cand[0]),
				html.EscapeString(cand[1]),
			)
		}
		b.WriteString("</tbody></table></div>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// Site is a fake county election results site.
type Site struct {
	Server *httptest.Server

	mu             sync.Mutex
	municipalities []string
	wards          map[string][]string
	units          map[string]string
	statuses       map[string]int
	requests       []string
	latency        time.Duration
}

func unitKey(municipality string, ward int) string {
	return municipality + "#" + strconv.Itoa(ward)
}

// NewSite starts a fake site that is closed when the test ends.
func NewSite(t testing.TB) *Site {
	s := &Site{
		wards:    map[string][]string{},
		units:    map[string]string{},
		statuses: map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *Site) URL() string {
	return s.Server.URL
}

// AddUnit registers a ward of a municipality and the page served for it.
func (s *Site) AddUnit(municipality string, ward int, page string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wards[municipality]; !ok {
		s.municipalities = append(s.municipalities, municipality)
	}
	s.wards[municipality] = append(s.wards[municipality], strconv.Itoa(ward))
	s.units[unitKey(municipality, ward)] = page
}

// FailUnit makes the page of a ward respond with the given status code.
func (s *Site) FailUnit(municipality string, ward int, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[unitKey(municipality, ward)] = status
}

// SetLatency delays every response by d.
func (s *Site) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Requests returns the path and query of every request served so far.
func (s *Site) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	latency := s.latency
	s.mu.Unlock()
	time.Sleep(latency)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.URL.RequestURI())
	query := r.URL.Query()
	muni := query.Get("muniName")

	switch {
	case strings.HasSuffix(r.URL.Path, "/Municipality.aspx") && query.Get("p") == "0":
		writeHtml(w, ListingPage("ddMunis", s.municipalities))
	case strings.HasSuffix(r.URL.Path, "/Municipality.aspx"):
		wards, ok := s.wards[muni]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeHtml(w, ListingPage("ddReportingUnits", wards))
	case strings.HasSuffix(r.URL.Path, "/ReportingUnits.aspx"):
		ward, err := strconv.Atoi(query.Get("jid"))
		if err != nil {
			http.Error(w, "bad jid", http.StatusBadRequest)
			return
		}
		key := unitKey(muni, ward)
		if status, ok := s.statuses[key]; ok {
			http.Error(w, http.StatusText(status), status)
			return
		}
		page, ok := s.units[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeHtml(w, page)
	default:
		http.NotFound(w, r)
	}
}

func writeHtml(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}
