package datastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(NewHandler(store).Routes())
	t.Cleanup(server.Close)
	return server, store
}

func TestUsersEndpointStringIDs(t *testing.T) {
	server, store := newTestServer(t)
	if err := store.Seed(context.Background()); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(server.URL + "/users")
	if err != nil {
		t.Fatalf("GET /users failed: %v", err)
	}
	defer resp.Body.Close()

	var users []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(users) == 0 {
		t.Fatal("no users returned")
	}
	// json-server 1.x compatibility: the id field is a string.
	if _, ok := users[0]["id"].(string); !ok {
		t.Errorf("id = %v (%T), want a string", users[0]["id"], users[0]["id"])
	}
}

func TestNewsLifecycleOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)

	// Create.
	resp, err := http.Post(server.URL+"/news", "application/json",
		strings.NewReader(`{"title": "T", "body": "a body long enough here", "author_id": 1, "comments": []}`))
	if err != nil {
		t.Fatalf("POST /news failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201", resp.StatusCode)
	}
	var created map[string]any
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	id, ok := created["id"].(string)
	if !ok {
		t.Fatalf("created id = %v, want a string", created["id"])
	}

	// Patch only the comments.
	req, _ := http.NewRequest(http.MethodPatch, server.URL+"/news/"+id,
		strings.NewReader(`{"comments": [{"id": 1, "text": "hi", "user_id": 2}]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH failed: %v", err)
	}
	var patched struct {
		Title    string          `json:"title"`
		Comments json.RawMessage `json:"comments"`
	}
	json.NewDecoder(resp.Body).Decode(&patched)
	resp.Body.Close()
	if patched.Title != "T" {
		t.Errorf("PATCH touched title: %q", patched.Title)
	}
	if !strings.Contains(string(patched.Comments), `"hi"`) {
		t.Errorf("comments not replaced: %s", patched.Comments)
	}

	// Delete, then the item is gone.
	req, _ = http.NewRequest(http.MethodDelete, server.URL+"/news/"+id, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("DELETE status = %d, want 200", resp.StatusCode)
	}

	resp, _ = http.Get(server.URL + "/news/" + id)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", resp.StatusCode)
	}
}

func TestNewsItemBadID(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/news/abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /news/abc = %d, want 404", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server, _ := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPut, server.URL+"/users", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("PUT /users = %d, want 405", resp.StatusCode)
	}
}
