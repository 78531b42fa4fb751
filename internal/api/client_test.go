package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ralphx-cli/internal/model"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]model.Project{})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("secret-token"))
	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestClientDecodesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"loop is already running"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.StopLoop(context.Background(), "loop-1")
	if err == nil {
		t.Fatal("expected error")
	}
	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("error %T is not *APIError", err)
	}
	if ae.Status != http.StatusConflict || ae.Message != "loop is already running" {
		t.Fatalf("got %+v", ae)
	}
}

func TestIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such loop"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetLoop(context.Background(), "loop-missing")
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound = false for %v", err)
	}
}

func TestActiveSessionMapsNotFoundToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no active session"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	s, err := c.ActiveSession(context.Background(), "loop-1")
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Fatalf("expected nil session, got %+v", s)
	}
}

func TestActiveSessionIgnoresFinishedSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(model.IterationSession{ID: "sess-1", Status: model.SessionCompleted})
	}))
	defer srv.Close()

	c := New(srv.URL)
	s, err := c.ActiveSession(context.Background(), "loop-1")
	if err != nil {
		t.Fatal(err)
	}
	if s != nil {
		t.Fatalf("finished session reported as active: %+v", s)
	}
}
