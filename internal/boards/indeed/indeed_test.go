package indeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobpilot/jobpilot/internal/jobs"

	"go.uber.org/zap"
)

var testPosting = jobs.Posting{
	Role:    "Supply Chain Manager",
	Company: "Acme",
	Link:    "https://example.com/1",
}

func TestSearchFollowsPagination(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")

		page := 0
		if r.URL.Query().Get("page") == "1" {
			page = 1
		}

		items := []map[string]string{
			{"title": fmt.Sprintf("Supply Chain Manager %d", page), "company": "Acme", "location": "Remote", "url": "https://example.com/1"},
		}
		if page == 0 {
			// A card without a company is dropped by the client.
			items = append(items, map[string]string{"title": "Nameless"})
		}

		json.NewEncoder(w).Encode(map[string]any{
			"items":    items,
			"found":    2,
			"pages":    2,
			"page":     page,
			"per_page": 100,
		})
	}))
	defer server.Close()

	board := New("test-token", zap.NewNop())
	board.APIURL = server.URL

	postings, err := board.Search(context.Background(), "supply chain", "Remote")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(postings) != 2 {
		t.Fatalf("expected 2 postings across pages, got %d", len(postings))
	}
	if postings[0].Role != "Supply Chain Manager 0" || postings[1].Role != "Supply Chain Manager 1" {
		t.Fatalf("unexpected postings: %v %v", postings[0], postings[1])
	}
	if authHeader != "Bearer test-token" {
		t.Fatalf("unexpected auth header %q", authHeader)
	}
}

func TestSearchFlattensHTMLDescriptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{
					"title":       "Supply Chain Manager",
					"company":     "Acme",
					"url":         "https://example.com/1",
					"description": "<div><p>Own <b>procurement</b>.</p><ul><li>ERP</li></ul></div>",
				},
			},
			"found":    1,
			"pages":    1,
			"page":     0,
			"per_page": 100,
		})
	}))
	defer server.Close()

	board := New("token", zap.NewNop())
	board.APIURL = server.URL

	postings, err := board.Search(context.Background(), "supply chain", "Remote")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].Description != "Own procurement.\nERP" {
		t.Fatalf("description not flattened to text: %q", postings[0].Description)
	}
}

func TestSearchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	board := New("bad-token", zap.NewNop())
	board.APIURL = server.URL

	if _, err := board.Search(context.Background(), "q", "l"); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestApplyExpectsCreated(t *testing.T) {
	created := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("company") != "Acme" {
			t.Errorf("unexpected form company %q", r.FormValue("company"))
		}
		created = true
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	board := New("token", zap.NewNop())
	board.APIURL = server.URL

	app, err := board.Apply(context.Background(), &testPosting)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !created {
		t.Fatal("server never saw the application")
	}
	if app.Status != "applied" || app.Platform != "indeed" {
		t.Fatalf("unexpected application: %+v", app)
	}
	if app.ID != "acme_supply_chain_manager" {
		t.Fatalf("unexpected id %q", app.ID)
	}
}

func TestLoginRequiresToken(t *testing.T) {
	if err := New("", zap.NewNop()).Login(context.Background()); err == nil {
		t.Fatal("expected error without token")
	}
	if err := New("tok", zap.NewNop()).Login(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
