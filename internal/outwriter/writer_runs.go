package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// writeJSONRunHistory marshals the run records to JSON and writes them.
func writeJSONRunHistory(w io.Writer, runs []schema.FetchRunRecord) error {
	// Prepare a JSON-friendly shape with formatted timestamps
	type JSONRunRecord struct {
		RunID              int64   `json:"run_id"`
		StartTime          string  `json:"start_time"`
		EndTime            *string `json:"end_time"`
		RunDurationMs      *int32  `json:"run_duration_ms"`
		ReposProcessed     int32   `json:"repos_processed"`
		ObservationsMerged int32   `json:"observations_merged"`
		ConfigParams       *string `json:"config_params"`
	}

	output := make([]JSONRunRecord, len(runs))
	for i, r := range runs {
		rec := JSONRunRecord{
			RunID:              r.RunID,
			StartTime:          r.StartTime.Format(contract.DateTimeFormat),
			RunDurationMs:      r.RunDurationMs,
			ReposProcessed:     r.ReposProcessed,
			ObservationsMerged: r.ObservationsMerged,
			ConfigParams:       r.ConfigParams,
		}
		if r.EndTime != nil {
			endStr := r.EndTime.Format(contract.DateTimeFormat)
			rec.EndTime = &endStr
		}
		output[i] = rec
	}

	return writeJSON(w, output)
}

// writeCSVRunHistory writes one row per fetch run to a CSV writer.
func writeCSVRunHistory(w *csv.Writer, runs []schema.FetchRunRecord) error {
	header := []string{
		"run_id",
		"start_time",
		"end_time",
		"run_duration_ms",
		"repos_processed",
		"observations_merged",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range runs {
		endTime := ""
		if r.EndTime != nil {
			endTime = r.EndTime.Format(contract.DateTimeFormat)
		}
		duration := ""
		if r.RunDurationMs != nil {
			duration = strconv.Itoa(int(*r.RunDurationMs))
		}
		row := []string{
			strconv.FormatInt(r.RunID, 10),
			r.StartTime.Format(contract.DateTimeFormat),
			endTime,
			duration,
			strconv.Itoa(int(r.ReposProcessed)),
			strconv.Itoa(int(r.ObservationsMerged)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
