package www

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopfloor/engine"
	"shopfloor/odata"
	"shopfloor/records"
)

// dayLayout is the date format of the search form and API query.
const dayLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// filterForm is the raw search form, echoed back into the page.
type filterForm struct {
	Query string
	From  string
	To    string
	Doc   string
}

func readFilterForm(r *http.Request) filterForm {
	q := r.URL.Query()
	return filterForm{
		Query: strings.TrimSpace(q.Get("q")),
		From:  strings.TrimSpace(q.Get("from")),
		To:    strings.TrimSpace(q.Get("to")),
		Doc:   strings.TrimSpace(q.Get("doc")),
	}
}

// Values encodes the non-empty fields under the form's parameter names.
func (f filterForm) Values() url.Values {
	v := url.Values{}
	for key, val := range map[string]string{"q": f.Query, "from": f.From, "to": f.To, "doc": f.Doc} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

// exportLink is the download URL for the screen with the current filters.
func exportLink(screenID string, f filterForm) string {
	link := "/screens/" + url.PathEscape(screenID) + "/export.xlsx"
	if q := f.Values().Encode(); q != "" {
		link += "?" + q
	}
	return link
}

// State converts the form into a records.FilterState.
func (f filterForm) State() (records.FilterState, error) {
	from, err := parseDay("from", f.From)
	if err != nil {
		return records.FilterState{}, err
	}
	to, err := parseDay("to", f.To)
	if err != nil {
		return records.FilterState{}, err
	}
	return records.FilterState{Query: f.Query, From: from, To: to, DocumentNumber: f.Doc}, nil
}

func parseDay(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date %q, expected YYYY-MM-DD", name, s)
	}
	return &t, nil
}

// openStatus maps a screen activation error to an HTTP status.
func openStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrUnknownScreen):
		return http.StatusNotFound
	case odata.IsTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// openMessage is the operator-facing text for a screen activation error.
func openMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotAuthenticated):
		return "Please log in with your plant first."
	case errors.Is(err, engine.ErrUnknownScreen):
		return "Unknown screen."
	default:
		return odata.UserMessage(err)
	}
}
