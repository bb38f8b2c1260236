package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func withReleaseServer(t *testing.T, status int, body string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.github.v3+json" {
			t.Errorf("unexpected Accept header %q", r.Header.Get("Accept"))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	old := ReleasesURL
	ReleasesURL = server.URL
	t.Cleanup(func() { ReleasesURL = old })
}

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"1.2.3":    "v1.2.3",
		"v1.2.3":   "v1.2.3",
		" 0.1.0 ":  "v0.1.0",
		"1.0.0-rc": "v1.0.0-rc",
	}
	for in, want := range tests {
		if got := canonical(in); got != want {
			t.Errorf("canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheck_DevBuild(t *testing.T) {
	for _, v := range []string{"", "dev"} {
		if _, err := Check(context.Background(), v); !errors.Is(err, ErrDevBuild) {
			t.Errorf("Check(%q) error = %v, want ErrDevBuild", v, err)
		}
	}
}

func TestCheck_Compare(t *testing.T) {
	tests := []struct {
		name    string
		current string
		tag     string
		want    bool
	}{
		{"newer patch", "1.0.0", "v1.0.1", true},
		{"newer major", "v1.9.9", "v2.0.0", true},
		{"same", "1.0.0", "v1.0.0", false},
		{"current ahead", "1.2.0", "v1.1.0", false},
		{"prerelease older", "1.0.0-rc.1", "v1.0.0", true},
		{"invalid current", "nightly", "v1.0.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withReleaseServer(t, http.StatusOK, `{"tag_name":"`+tt.tag+`","html_url":"https://example.com/r"}`)
			res, err := Check(context.Background(), tt.current)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.UpdateAvailable != tt.want {
				t.Errorf("UpdateAvailable = %v, want %v", res.UpdateAvailable, tt.want)
			}
			if res.LatestVersion[0] == 'v' {
				t.Errorf("expected latest version without v prefix, got %q", res.LatestVersion)
			}
		})
	}
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"rate limited", http.StatusTooManyRequests, `{"message":"slow down"}`},
		{"bad json", http.StatusOK, `{"tag_name":`},
		{"no tag", http.StatusOK, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withReleaseServer(t, tt.status, tt.body)
			if _, err := Check(context.Background(), "1.0.0"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCheck_CanceledContext(t *testing.T) {
	withReleaseServer(t, http.StatusOK, `{"tag_name":"v9.9.9"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Check(ctx, "1.0.0"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
