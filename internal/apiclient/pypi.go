package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// pypistatsBaseURL is the download-stats endpoint. No credential needed.
const pypistatsBaseURL = "https://pypistats.org/api"

// pypiRollingDays is the trailing window for the cumulative download metric.
// The value is only valid as of the latest fetch, which is why merges are
// last-write-wins.
const pypiRollingDays = 180

// Pypi fetches daily download counts from pypistats.org, mirrors excluded.
type Pypi struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

var _ contract.SourceClient = &Pypi{} // Compile-time check

// NewPypi returns a PyPI stats client.
func NewPypi(client *http.Client) *Pypi {
	return &Pypi{client: client, baseURL: pypistatsBaseURL, now: time.Now}
}

// Kind implements the SourceClient interface.
func (p *Pypi) Kind() schema.SourceKind { return schema.PypiSource }

// Metrics implements the SourceClient interface.
func (p *Pypi) Metrics(spec contract.RepoSpec) []schema.MetricName {
	if !spec.HasPypi() {
		return nil
	}
	return schema.PypiMetrics
}

// overallPayload mirrors the pypistats overall response shape.
type overallPayload struct {
	Data []struct {
		Category  string `json:"category"`
		Date      string `json:"date"`
		Downloads int    `json:"downloads"`
	} `json:"data"`
}

// Fetch implements the SourceClient interface.
func (p *Pypi) Fetch(ctx context.Context, spec contract.RepoSpec, metric schema.MetricName) ([]schema.Observation, error) {
	switch metric {
	case schema.MetricPypiDaily, schema.MetricPypi180Cumulative:
	default:
		return nil, fmt.Errorf("pypi client cannot fetch metric %q", metric)
	}

	url := fmt.Sprintf("%s/packages/%s/overall?mirrors=false", p.baseURL, spec.PypiName)
	body, _, err := getBody(ctx, p.client, url, nil)
	if err != nil {
		return nil, err
	}

	var payload overallPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &schema.ValidationError{Field: "value", Value: url, Reason: "pypistats payload is not valid JSON"}
	}

	perDay := make(map[string]int)
	for _, row := range payload.Data {
		if row.Category != "without_mirrors" {
			continue
		}
		perDay[row.Date] += row.Downloads
	}

	if metric == schema.MetricPypiDaily {
		return p.dailyObservations(spec, perDay)
	}
	return p.rollingCumulative(spec, perDay)
}

// dailyObservations converts the per-day map into a sorted batch via date
// parsing, surfacing malformed upstream dates as ValidationError.
func (p *Pypi) dailyObservations(spec contract.RepoSpec, perDay map[string]int) ([]schema.Observation, error) {
	obs := make([]schema.Observation, 0, len(perDay))
	for dateStr, downloads := range perDay {
		date, err := time.Parse(schema.DateFormat, dateStr)
		if err != nil {
			return nil, &schema.ValidationError{Field: "date", Value: dateStr, Reason: "unparsable pypistats date"}
		}
		obs = append(obs, schema.Observation{
			Repo:   spec.Slug(),
			Metric: schema.MetricPypiDaily,
			Date:   date,
			Value:  float64(downloads),
		})
	}
	return obs, nil
}

// rollingCumulative sums the trailing window ending yesterday into a single
// observation dated at the last full day.
func (p *Pypi) rollingCumulative(spec contract.RepoSpec, perDay map[string]int) ([]schema.Observation, error) {
	end := snapshotDate(p.now())
	start := end.AddDate(0, 0, -(pypiRollingDays - 1))

	total := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		total += perDay[d.Format(schema.DateFormat)]
	}
	return []schema.Observation{{
		Repo:   spec.Slug(),
		Metric: schema.MetricPypi180Cumulative,
		Date:   end,
		Value:  float64(total),
	}}, nil
}
