// Package update performs the optional startup version check. It only ever
// reads the release manifest and logs the outcome; it never blocks the CLI
// and never touches records on disk.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTimeout = 5 * time.Second

// Manifest is the published latest-release descriptor.
type Manifest struct {
	Version string `json:"version"`
	URL     string `json:"url,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Checker fetches the release manifest and compares it to the running build.
type Checker struct {
	URL     string
	Current string
	Client  *http.Client
	Log     logrus.FieldLogger
}

// Result reports what the check found.
type Result struct {
	Latest      string
	Available   bool
	DownloadURL string
}

// Check fetches the manifest. A newer published version is logged at info
// level; failures are logged at debug and returned for callers that care.
func (c Checker) Check(ctx context.Context) (Result, error) {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("update check: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.WithError(err).Debug("update check failed")
		return Result{}, fmt.Errorf("update check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("update check: unexpected status %s", resp.Status)
		log.WithField("status", resp.Status).Debug("update check failed")
		return Result{}, err
	}

	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		log.WithError(err).Debug("update manifest unreadable")
		return Result{}, fmt.Errorf("update check: %w", err)
	}

	res := Result{
		Latest:      m.Version,
		Available:   Newer(m.Version, c.Current),
		DownloadURL: m.URL,
	}
	if res.Available {
		log.WithFields(logrus.Fields{
			"current": c.Current,
			"latest":  m.Version,
		}).Info("a newer inspectline release is available")
	}
	return res, nil
}

// Newer reports whether candidate is a higher semantic version than current.
// Malformed versions compare as not newer.
func Newer(candidate, current string) bool {
	cv, ok := parseVersion(candidate)
	if !ok {
		return false
	}
	rv, ok := parseVersion(current)
	if !ok {
		return false
	}
	for i := 0; i < 3; i++ {
		if cv[i] != rv[i] {
			return cv[i] > rv[i]
		}
	}
	return false
}

func parseVersion(v string) ([3]int, bool) {
	var out [3]int
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) != 3 {
		return out, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
