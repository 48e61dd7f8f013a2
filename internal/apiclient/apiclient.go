// Package apiclient implements the upstream fetchers for GitHub, PyPI and
// conda usage metrics.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
	"github.com/sirupsen/logrus"
)

// cacheVersion invalidates response-cache entries when the payload handling
// changes.
const cacheVersion = 1

// log is the shared structured logger for the fetch layer.
var log = logrus.WithField("component", "apiclient")

// SetVerbose switches the fetch layer to debug logging.
func SetVerbose(verbose bool) {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// getBody issues a GET and returns the response body, mapping transport
// failures and non-200 statuses to NetworkError.
func getBody(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.WithField("url", url).Debug("GET")
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, &schema.NetworkError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &schema.NetworkError{URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		log.WithFields(logrus.Fields{"url": url, "status": resp.StatusCode}).Warn("unexpected status")
		return nil, nil, &schema.NetworkError{URL: url, Status: resp.StatusCode}
	}
	return body, resp.Header, nil
}

// cachedGetBody wraps getBody with the response cache when one is
// configured. Entries are keyed by URL and granularity window, so repeated
// runs within the window reuse the cached payload instead of spending
// rate-limited API calls.
func cachedGetBody(ctx context.Context, client *http.Client, cache contract.ResponseCache, url string, headers map[string]string) ([]byte, error) {
	if cache == nil {
		body, _, err := getBody(ctx, client, url, headers)
		return body, err
	}

	window := time.Now().Truncate(contract.CacheGranularity).Unix()
	key := fmt.Sprintf("%s|%d", url, window)

	if body, version, _, err := cache.Get(key); err == nil && version == cacheVersion {
		log.WithField("url", url).Debug("response cache hit")
		return body, nil
	}

	body, _, err := getBody(ctx, client, url, headers)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(key, body, cacheVersion, time.Now().Unix()); err != nil {
		log.WithField("url", url).WithError(err).Warn("response cache write failed")
	}
	return body, nil
}

// fetchWindow returns the daily observation window: thirteen days back
// through yesterday, matching the GitHub traffic lookback.
func fetchWindow(now time.Time) (start, end time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -13), today.AddDate(0, 0, -1)
}

// snapshotDate returns the date snapshot metrics are recorded at: the last
// full day, i.e. yesterday.
func snapshotDate(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -1)
}
