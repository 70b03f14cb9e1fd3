package odata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopfloor/config"
)

func testServer(handler http.HandlerFunc) (*httptest.Server, *Client) {
	srv := httptest.NewServer(handler)
	client := NewClient(config.ODataConfig{BaseURL: srv.URL + "/sap/opu/odata/SAP", Timeout: 5 * time.Second})
	return srv, client
}

func TestFetchSetBuildsFilterQuery(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sap/opu/odata/SAP/Z48_PP_PORTAL2_SRV/PPPRODUCTIONORDERSet" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("$filter"); got != "Werks eq '0001'" {
			t.Errorf("$filter = %q, want %q", got, "Werks eq '0001'")
		}
		if got := r.URL.Query().Get("$format"); got != "json" {
			t.Errorf("$format = %q, want json", got)
		}
		if strings.Contains(r.URL.RawQuery, "+") {
			t.Errorf("raw query uses '+' for spaces: %q", r.URL.RawQuery)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Write([]byte(`{"d":{"results":[{"Aufnr":"1000001"},{"Aufnr":"1000002"}]}}`))
	})
	defer srv.Close()

	recs, err := client.FetchSet(context.Background(), FetchRequest{
		Service:     "Z48_PP_PORTAL2_SRV",
		EntitySet:   "PPPRODUCTIONORDERSet",
		FilterField: "Werks",
		Value:       "0001",
	})
	if err != nil {
		t.Fatalf("FetchSet: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if got, _ := recs[1].Text("Aufnr"); got != "1000002" {
		t.Errorf("recs[1].Aufnr = %q", got)
	}
}

func TestFetchSetBasicAuthAndClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "portal" || pass != "secret" {
			t.Errorf("basic auth = (%q, %q, %v)", user, pass, ok)
		}
		if got := r.URL.Query().Get("sap-client"); got != "100" {
			t.Errorf("sap-client = %q, want 100", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(config.ODataConfig{
		BaseURL:   srv.URL,
		Username:  "portal",
		Password:  "secret",
		SAPClient: "100",
	})
	recs, err := client.FetchSet(context.Background(), FetchRequest{EntitySet: "X", FilterField: "Werks", Value: "1"})
	if err != nil {
		t.Fatalf("FetchSet: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("len = %d, want 0", len(recs))
	}
}

func TestSetURLEscapesQuotes(t *testing.T) {
	client := NewClient(config.ODataConfig{BaseURL: "http://gw/"})
	u := client.SetURL(FetchRequest{Service: "/SRV/", EntitySet: "Set", FilterField: "Werks", Value: "O'Neil"})
	if !strings.HasPrefix(u, "http://gw/SRV/Set?") {
		t.Errorf("url = %q", u)
	}
	if !strings.Contains(u, "%27O%27%27Neil%27") {
		t.Errorf("url = %q, want doubled quote", u)
	}
}

func TestFetchSetHTTPError(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := client.FetchSet(context.Background(), FetchRequest{EntitySet: "Set"})
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("err = %v, want *HTTPError", err)
	}
	if he.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", he.Status)
	}
	if IsTimeout(err) {
		t.Error("IsTimeout = true for HTTP 500")
	}
	if msg := UserMessage(err); !strings.HasPrefix(msg, "Failed to load data") {
		t.Errorf("UserMessage = %q", msg)
	}
}

func TestFetchSetForbiddenMessage(t *testing.T) {
	srv, client := testServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	defer srv.Close()

	_, err := client.FetchSet(context.Background(), FetchRequest{EntitySet: "Set"})
	if msg := UserMessage(err); !strings.Contains(msg, "rejected") {
		t.Errorf("UserMessage = %q", msg)
	}
}

func TestFetchSetTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(config.ODataConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.FetchSet(context.Background(), FetchRequest{EntitySet: "Set"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("IsTimeout(%v) = false", err)
	}
	if msg := UserMessage(err); !strings.Contains(msg, "did not respond") {
		t.Errorf("UserMessage = %q", msg)
	}
}

func TestFetchSetConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(config.ODataConfig{BaseURL: url, Timeout: time.Second})
	if _, err := client.FetchSet(context.Background(), FetchRequest{EntitySet: "Set"}); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestReconfigure(t *testing.T) {
	client := NewClient(config.ODataConfig{BaseURL: "http://a/"})
	client.Reconfigure(config.ODataConfig{BaseURL: "http://b"})
	if got := client.BaseURL(); got != "http://b" {
		t.Errorf("BaseURL() = %q, want http://b", got)
	}
}
