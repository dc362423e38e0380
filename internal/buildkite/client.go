// Package buildkite fetches build records from the Buildkite REST API and
// keeps a local cache of them in sync.
package buildkite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Buildkite REST API endpoint.
	DefaultBaseURL = "https://api.buildkite.com/v2"

	// StateFinished is the meta-state matching passed, failed and canceled
	// builds.
	StateFinished = "finished"

	perPage = 100
)

// Client talks to the Buildkite REST API. Requests carry the API access
// token and are rate limited below Buildkite's documented request budget.
type Client struct {
	// BaseURL may be overridden for tests.
	BaseURL string

	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient returns a client authenticating with the given API access token.
func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		BaseURL:    DefaultBaseURL,
		httpClient: oauth2.NewClient(context.Background(), ts),
		// Buildkite allows 200 requests per minute per token.
		limiter: rate.NewLimiter(rate.Every(350*time.Millisecond), 1),
	}
}

// ListBuilds fetches builds for a pipeline, newest first. Pagination stops
// early at the first build whose number is <= sinceNumber, so an incremental
// fetch only transfers pages containing new builds. Pass sinceNumber < 0 to
// fetch everything.
func (c *Client) ListBuilds(ctx context.Context, org, pipeline string, states []string, sinceNumber int) ([]Build, error) {
	q := url.Values{}
	q.Set("per_page", fmt.Sprintf("%d", perPage))
	for _, s := range states {
		q.Add("state[]", s)
	}
	nextURL := fmt.Sprintf("%s/organizations/%s/pipelines/%s/builds?%s",
		c.BaseURL, url.PathEscape(org), url.PathEscape(pipeline), q.Encode())

	logrus.Info("fetch builds: get first page (newest builds first)")

	var builds []Build
	for nextURL != "" {
		page, next, err := c.getBuildsPage(ctx, nextURL)
		if err != nil {
			return nil, err
		}
		logrus.Infof("got %d builds in paginated response", len(page))

		keepFetching := true
		for _, b := range page {
			// The API has been observed returning builds of a different
			// pipeline in filtered responses. Log and keep the record out.
			if b.Pipeline != nil && b.Pipeline.Slug != pipeline {
				logrus.Errorf("got unexpected build in response, with pipeline slug %s", b.Pipeline.Slug)
				continue
			}
			if sinceNumber >= 0 && b.Number <= sinceNumber {
				logrus.Infof("current page contains build %d and older -- drop, stop fetching", b.Number)
				keepFetching = false
				break
			}
			builds = append(builds, b)
		}

		if !keepFetching {
			break
		}
		if next == "" {
			logrus.Info("last page says there is no next page")
		}
		nextURL = next
	}

	logrus.Infof("fetched data for %d builds", len(builds))
	if len(builds) > 0 {
		logrus.Infof("newest build number / oldest build number: %d / %d",
			builds[0].Number, builds[len(builds)-1].Number)
	}
	return builds, nil
}

// getBuildsPage fetches one page and returns the parsed builds plus the URL
// of the next page ("" on the last page).
func (c *Client) getBuildsPage(ctx context.Context, pageURL string) ([]Build, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching builds page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching builds page: unexpected status %s", resp.Status)
	}

	var page []Build
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("decoding builds page: %w", err)
	}

	return page, parseLinkNext(resp.Header.Get("Link")), nil
}

// parseLinkNext extracts the rel="next" URL from an RFC 5988 Link header.
// Returns "" when there is no next page.
func parseLinkNext(header string) string {
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, param := range sections[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}
