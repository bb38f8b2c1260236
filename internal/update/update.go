// Package update compares the running build against the latest published
// release.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	DefaultReleasesURL = "https://api.github.com/repos/elasticinbox/elasticinbox-go/releases/latest"
	CheckTimeout       = 5 * time.Second
)

// ReleasesURL is the latest-release endpoint. Tests point it at a local server.
var ReleasesURL = DefaultReleasesURL

type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	UpdateURL       string `json:"update_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// ErrDevBuild is returned for builds without a release version.
var ErrDevBuild = errors.New("development build, no release to compare against")

// Check fetches the latest release and compares it to current. Versions that
// are not valid semver are reported but never flagged as outdated.
func Check(ctx context.Context, current string) (*CheckResult, error) {
	if current == "" || current == "dev" {
		return nil, ErrDevBuild
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("release check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("release check failed: HTTP %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("release check failed: %w", err)
	}
	if release.TagName == "" {
		return nil, fmt.Errorf("release check failed: no tag in response")
	}

	result := &CheckResult{
		CurrentVersion: strings.TrimPrefix(current, "v"),
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}
	cur, latest := canonical(current), canonical(release.TagName)
	if semver.IsValid(cur) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, cur) > 0
	}
	return result, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
