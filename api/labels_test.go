package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestListLabels(t *testing.T) {
	tests := []struct {
		name         string
		metadata     bool
		responseBody string
		wantQuery    string
		validateFunc func(*testing.T, []Label)
	}{
		{
			name:         "plain",
			responseBody: `{"0":"all","1":"inbox","12":"Work"}`,
			validateFunc: func(t *testing.T, labels []Label) {
				if len(labels) != 3 {
					t.Fatalf("expected 3 labels, got %d", len(labels))
				}
				if labels[2].ID != 12 || labels[2].Name != "Work" {
					t.Errorf("unexpected label %+v", labels[2])
				}
			},
		},
		{
			name:         "with metadata",
			metadata:     true,
			wantQuery:    "true",
			responseBody: `{"1":{"name":"inbox","size":1024,"total":3,"new":1}}`,
			validateFunc: func(t *testing.T, labels []Label) {
				if len(labels) != 1 {
					t.Fatalf("expected 1 label, got %d", len(labels))
				}
				got := labels[0]
				if got.Name != "inbox" || got.Total != 3 || got.New != 1 || got.Size != 1024 {
					t.Errorf("unexpected label %+v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := newRecordingServer(t, http.StatusOK, tt.responseBody)
			client := newTestClient(t, server.URL)

			resp, err := client.Labels().List(context.Background(), testDomain, testUser, tt.metadata)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := (*requests)[0]
			if got.Method != http.MethodGet || got.Path != "/rest/v2/test.com/test/mailbox" {
				t.Errorf("unexpected request %s %s", got.Method, got.Path)
			}
			if got.Query.Get("metadata") != tt.wantQuery {
				t.Errorf("metadata query = %q, want %q", got.Query.Get("metadata"), tt.wantQuery)
			}
			labels, err := ParseLabels(resp)
			if err != nil {
				t.Fatalf("ParseLabels: %v", err)
			}
			tt.validateFunc(t, labels)
		})
	}
}

func TestCreateLabel(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusCreated, `{"id":12}`)
	client := newTestClient(t, server.URL)

	resp, err := client.Labels().Create(context.Background(), testDomain, testUser, "Project X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := (*requests)[0]
	if got.Method != http.MethodPost || got.Path != "/rest/v2/test.com/test/mailbox/label" {
		t.Errorf("unexpected request %s %s", got.Method, got.Path)
	}
	if got.Query.Get("name") != "Project X" {
		t.Errorf("expected name query, got %q", got.Query.Get("name"))
	}
	var created struct {
		ID int `json:"id"`
	}
	if err := resp.Decode(&created); err != nil || created.ID != 12 {
		t.Errorf("Decode = %v, id %d", err, created.ID)
	}
}

func TestRenameAndDeleteLabel(t *testing.T) {
	server, requests := newRecordingServer(t, http.StatusNoContent, "")
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	if _, err := client.Labels().Rename(ctx, testDomain, testUser, "12", "Renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := client.Labels().Delete(ctx, testDomain, testUser, "12"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rename, del := (*requests)[0], (*requests)[1]
	if rename.Method != http.MethodPut || rename.Path != "/rest/v2/test.com/test/mailbox/label/12" || rename.Query.Get("name") != "Renamed" {
		t.Errorf("unexpected rename request %s %s %v", rename.Method, rename.Path, rename.Query)
	}
	if del.Method != http.MethodDelete || del.Path != "/rest/v2/test.com/test/mailbox/label/12" {
		t.Errorf("unexpected delete request %s %s", del.Method, del.Path)
	}
}

func TestLabelValidation(t *testing.T) {
	client, transport := newCountingClient(t)
	ctx := context.Background()

	for _, name := range []string{"", "   ", "label^name", "^", strings.Repeat("a", 300)} {
		if _, err := client.Labels().Create(ctx, testDomain, testUser, name); !errors.Is(err, ErrInvalidLabel) {
			t.Errorf("Create(%q) error = %v, want ErrInvalidLabel", name, err)
		}
		if _, err := client.Labels().Rename(ctx, testDomain, testUser, "1", name); !errors.Is(err, ErrInvalidLabel) {
			t.Errorf("Rename(%q) error = %v, want ErrInvalidLabel", name, err)
		}
	}

	for _, id := range []string{"", "abc", "1.5", "-3", "01"} {
		if _, err := client.Labels().Rename(ctx, testDomain, testUser, id, "ok"); !errors.Is(err, ErrInvalidLabelID) {
			t.Errorf("Rename(id %q) error = %v, want ErrInvalidLabelID", id, err)
		}
		if _, err := client.Labels().Delete(ctx, testDomain, testUser, id); !errors.Is(err, ErrInvalidLabelID) {
			t.Errorf("Delete(id %q) error = %v, want ErrInvalidLabelID", id, err)
		}
	}

	if n := transport.calls.Load(); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestLabelRoundTrip(t *testing.T) {
	fs := newFakeServer(t)
	client := newTestClient(t, fs.URL)
	ctx := context.Background()

	if _, err := client.Account().Create(ctx, testDomain, testUser); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := client.Labels().Create(ctx, testDomain, testUser, "Receipts"); err != nil {
		t.Fatalf("create label: %v", err)
	}

	resp, err := client.Labels().List(ctx, testDomain, testUser, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	labels, err := ParseLabels(resp)
	if err != nil {
		t.Fatalf("ParseLabels: %v", err)
	}
	var found *Label
	for i := range labels {
		if labels[i].Name == "Receipts" {
			found = &labels[i]
		}
	}
	if found == nil {
		t.Fatalf("expected created label in %+v", labels)
	}

	if _, err := client.Labels().Delete(ctx, testDomain, testUser, "999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing label, got %v", err)
	}
}
