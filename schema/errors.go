package schema

import "fmt"

// ValidationError reports an observation whose date cannot be parsed or
// whose value is non-numeric. The affected metric is skipped for the run.
type ValidationError struct {
	Field  string // "date" or "value"
	Value  string // offending raw value, if available
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SchemaError reports a metric mismatch between an existing timeseries and
// a newly fetched batch. The existing series is left unchanged.
type SchemaError struct {
	Want MetricName
	Got  MetricName
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("metric mismatch: series holds %q, batch holds %q", e.Want, e.Got)
}

// NetworkError reports an unreachable or non-200 upstream API. The affected
// repository/metric is skipped for the run, not fatal to the batch.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request %s returned status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RateLimited reports whether the upstream rejected the request for quota reasons.
func (e *NetworkError) RateLimited() bool {
	return e.Status == 403 || e.Status == 429
}

// MissingCredentialError reports an absent GitHub token. Fatal only for
// GitHub-sourced metrics; PyPI and conda fetches continue.
type MissingCredentialError struct {
	Var string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no GitHub token found: set %s or the github-token config key", e.Var)
}
