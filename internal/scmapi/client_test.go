package scmapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ColinRobbins/scm-helper/internal/core"
	"github.com/ColinRobbins/scm-helper/pkg/domain"
)

func TestClientReadHeaders(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		io.WriteString(w, `[{"Guid":"m1"},{"Guid":"m2"}]`)
	}))
	defer srv.Close()

	c := New("secret-key", "Test SC", WithBaseURL(srv.URL))
	recs, err := c.Read(context.Background(), core.ResourceMembers, 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(recs) != 2 || recs[0].Str(domain.KeyGUID) != "m1" {
		t.Fatalf("records = %v", recs)
	}
	if got.URL.Path != "/"+core.ResourceMembers {
		t.Fatalf("path = %q", got.URL.Path)
	}
	if got.Header.Get("Authorization-Token") != "secret-key" {
		t.Fatalf("auth header = %q", got.Header.Get("Authorization-Token"))
	}
	if got.Header.Get("Page") != "3" {
		t.Fatalf("page header = %q", got.Header.Get("Page"))
	}
	if want := "SCM-Helper-v" + Version + " Test SC"; got.Header.Get("User-Agent") != want {
		t.Fatalf("user agent = %q, want %q", got.Header.Get("User-Agent"), want)
	}
}

func TestClientReadSingleObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"Guid":"cc1","Title":"Swimmers Code"}`)
	}))
	defer srv.Close()

	c := New("k", "Test SC", WithBaseURL(srv.URL))
	recs, err := c.Read(context.Background(), core.ResourceConduct+"/cc1", 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 1 || recs[0].Str(domain.KeyTitle) != "Swimmers Code" {
		t.Fatalf("records = %v", recs)
	}
}

func TestClientReadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	c := New("k", "Test SC", WithBaseURL(srv.URL))
	if _, err := c.Read(context.Background(), "Nothing", 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClientReadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("k", "Test SC", WithBaseURL(srv.URL))
	if _, err := c.Read(context.Background(), core.ResourceMembers, 1); err == nil {
		t.Fatalf("expected a server error")
	}
}

func TestClientWrite(t *testing.T) {
	type seen struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		calls = append(calls, seen{r.Method, r.URL.Path, body})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New("k", "Test SC", WithBaseURL(srv.URL))
	ctx := context.Background()

	if err := c.Write(ctx, core.ResourceLists, domain.Record{"ListName": "New List"}, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.Write(ctx, core.ResourceMembers+"/m1", domain.Record{"Guid": "m1", "DateLeft": "2024-01-01"}, false); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if calls[0].method != http.MethodPost || calls[0].path != "/"+core.ResourceLists {
		t.Fatalf("create call = %+v", calls[0])
	}
	if calls[1].method != http.MethodPut || calls[1].path != "/"+core.ResourceMembers+"/m1" {
		t.Fatalf("update call = %+v", calls[1])
	}
	if calls[1].body["DateLeft"] != "2024-01-01" {
		t.Fatalf("update body = %v", calls[1].body)
	}
}
