package fub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		SystemKey: "test-system-key",
		System:    "AS",
	}, zerolog.New(&bytes.Buffer{}))
}

func TestFetchAgentsFollowsPagination(t *testing.T) {
	// Three pages of 100/100/37 users chained with full next URLs.
	pageSizes := []int{100, 100, 37}

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		page := 0
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &page)
		}

		users := make([]map[string]interface{}, 0, pageSizes[page])
		for i := 0; i < pageSizes[page]; i++ {
			id := page*100 + i
			users = append(users, map[string]interface{}{
				"id":   id,
				"name": fmt.Sprintf("Agent %03d", id),
			})
		}

		meta := map[string]interface{}{}
		if page < len(pageSizes)-1 {
			meta["next"] = fmt.Sprintf("%s/users?page=%d", server.URL, page+1)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"users":     users,
			"_metadata": meta,
		})
	}))
	defer server.Close()

	agents, err := newTestClient(server.URL).FetchAgents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(agents) != 237 {
		t.Fatalf("expected 237 agents, got %d", len(agents))
	}

	// No duplicates, no gaps.
	seen := make(map[string]bool, len(agents))
	for _, a := range agents {
		if seen[a.ID] {
			t.Errorf("duplicate agent id %s", a.ID)
		}
		seen[a.ID] = true
	}
	for i := 0; i < 237; i++ {
		if !seen[fmt.Sprintf("%d", i)] {
			t.Errorf("missing agent id %d", i)
		}
	}
}

func TestFetchAgentsSortedCaseInsensitively(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"users": []map[string]interface{}{
				{"id": 1, "name": "zoe"},
				{"id": 2, "name": "Alice"},
				{"id": 3, "name": "bob"},
			},
			"_metadata": map[string]interface{}{},
		})
	}))
	defer server.Close()

	agents, err := newTestClient(server.URL).FetchAgents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Alice", "bob", "zoe"}
	for i, name := range want {
		if agents[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, agents[i].Name)
		}
	}
}

func TestFetchPeopleInSmartListFollowsNextLink(t *testing.T) {
	var server *httptest.Server
	calls := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("smartListId") != "10" && calls == 1 {
			t.Errorf("expected smartListId=10 on first page, got %q", r.URL.Query().Get("smartListId"))
		}

		meta := map[string]interface{}{}
		people := []map[string]interface{}{
			{"id": calls, "assignedUserId": 7},
		}
		if calls == 1 {
			meta["nextLink"] = server.URL + "/people?smartListId=10&offset=1"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"people":    people,
			"_metadata": meta,
		})
	}))
	defer server.Close()

	people, err := newTestClient(server.URL).FetchPeopleInSmartList(context.Background(), "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(people) != 2 {
		t.Fatalf("expected 2 people, got %d", len(people))
	}
	if people[0].AssignedUserID != "7" {
		t.Errorf("expected assignedUserId coerced to string 7, got %q", people[0].AssignedUserID)
	}
}

func TestFetchAgentsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchAgents(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.StatusCode)
	}
	if apiErr.Endpoint != "/users" {
		t.Errorf("expected endpoint /users, got %s", apiErr.Endpoint)
	}
}

func TestFetchAgentsNetworkError(t *testing.T) {
	// Point at a closed server so the request fails at transport level.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).FetchAgents(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("expected zero status code for transport failure, got %d", apiErr.StatusCode)
	}
}

func TestFetchAppointmentsTokenCursor(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		meta := map[string]interface{}{"total": 3}
		var appts []map[string]interface{}
		if calls == 1 {
			if r.URL.Query().Get("startDate") != "2026-08-01" {
				t.Errorf("expected startDate on first page, got %q", r.URL.Query().Get("startDate"))
			}
			appts = []map[string]interface{}{{"id": 1}, {"id": 2}}
			meta["next"] = "tok-abc"
		} else {
			if r.URL.Query().Get("next") != "tok-abc" {
				t.Errorf("expected next=tok-abc, got %q", r.URL.Query().Get("next"))
			}
			appts = []map[string]interface{}{{"id": 3}}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"appointments": appts,
			"_metadata":    meta,
		})
	}))
	defer server.Close()

	appts, total, err := newTestClient(server.URL).FetchAppointments(context.Background(), "2026-08-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appts) != 3 {
		t.Errorf("expected 3 appointments, got %d", len(appts))
	}
	if appts[0].ID != "1" {
		t.Errorf("expected appointment id coerced to string 1, got %q", appts[0].ID)
	}
	if total != 3 {
		t.Errorf("expected reported total 3, got %d", total)
	}
}
