package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// condaBaseURL is the anaconda.org site root. No credential needed.
const condaBaseURL = "https://anaconda.org"

// condaDownloadsRe finds the total download count on the package page.
// An HTML parser would be overkill for a single number.
var condaDownloadsRe = regexp.MustCompile(`<span>([0-9]+)</span> total downloads`)

// Conda scrapes the total download count from the anaconda.org package page.
type Conda struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

var _ contract.SourceClient = &Conda{} // Compile-time check

// NewConda returns a conda downloads client.
func NewConda(client *http.Client) *Conda {
	return &Conda{client: client, baseURL: condaBaseURL, now: time.Now}
}

// Kind implements the SourceClient interface.
func (c *Conda) Kind() schema.SourceKind { return schema.CondaSource }

// Metrics implements the SourceClient interface.
func (c *Conda) Metrics(spec contract.RepoSpec) []schema.MetricName {
	if !spec.HasConda() {
		return nil
	}
	return schema.CondaMetrics
}

// Fetch implements the SourceClient interface.
func (c *Conda) Fetch(ctx context.Context, spec contract.RepoSpec, metric schema.MetricName) ([]schema.Observation, error) {
	if metric != schema.MetricCondaTotal {
		return nil, fmt.Errorf("conda client cannot fetch metric %q", metric)
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, spec.CondaOrg, spec.CondaName)
	body, _, err := getBody(ctx, c.client, url, nil)
	if err != nil {
		return nil, err
	}

	match := condaDownloadsRe.FindStringSubmatch(string(body))
	if match == nil {
		return nil, &schema.ValidationError{
			Field:  "value",
			Value:  url,
			Reason: "could not find total download count on package page",
		}
	}
	downloads, err := strconv.Atoi(strings.TrimSpace(match[1]))
	if err != nil {
		return nil, &schema.ValidationError{Field: "value", Value: match[1], Reason: "not a number"}
	}

	return []schema.Observation{{
		Repo:   spec.Slug(),
		Metric: schema.MetricCondaTotal,
		Date:   snapshotDate(c.now()),
		Value:  float64(downloads),
	}}, nil
}
