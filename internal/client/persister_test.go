package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
)

func TestAPIPersisterLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/notifications" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q", got)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"notifications": []models.Notification{
				{
					BaseModel:   models.BaseModel{ID: "notif-1"},
					Type:        types.AlertLowStock,
					Severity:    types.SeverityHigh,
					AdminIsRead: true,
					Status:      types.StatusActive,
				},
			},
		})
	}))
	defer server.Close()

	persister := NewAPIPersister(server.URL, "token-1")

	list, err := persister.Load(context.Background())

	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(list) != 1 {
		t.Fatalf("got %d notifications, want 1", len(list))
	}

	if list[0].ID != "notif-1" || !list[0].IsRead {
		t.Errorf("projection mismatch: %+v", list[0])
	}
}

func TestAPIPersisterLifecycleRequests(t *testing.T) {
	var gotMethod, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	persister := NewAPIPersister(server.URL, "token-1")
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() error
		wantMethod string
		wantPath   string
	}{
		{"mark read", func() error { return persister.MarkRead(ctx, "notif-1") },
			http.MethodPatch, "/api/notifications/notif-1/read"},
		{"mark all read", func() error { return persister.MarkAllRead(ctx) },
			http.MethodPost, "/api/notifications/read-all"},
		{"acknowledge", func() error { return persister.Acknowledge(ctx, "notif-1") },
			http.MethodPatch, "/api/notifications/notif-1/acknowledge"},
		{"resolve", func() error { return persister.Resolve(ctx, "notif-1") },
			http.MethodPatch, "/api/notifications/notif-1/resolve"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); err != nil {
				t.Fatalf("request failed: %v", err)
			}

			if gotMethod != tc.wantMethod || gotPath != tc.wantPath {
				t.Errorf("got %s %s, want %s %s", gotMethod, gotPath, tc.wantMethod, tc.wantPath)
			}
		})
	}
}

func TestAPIPersisterSurfacesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	persister := NewAPIPersister(server.URL, "token-1")

	if err := persister.MarkRead(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
