// File: internal/jobs/jobs.go

// Package jobs loads the batch work list from a CSV file.
package jobs

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Job is one unit of batch work: a single target URL to be exercised with the
// fixed question. Immutable; consumed once by the runner.
type Job struct {
	URL string
}

// urlColumn is the required CSV header.
const urlColumn = "gpt_url"

// Load reads jobs from the CSV at path. The file must carry a gpt_url column;
// rows with a blank value are skipped with a warning, not fatally. An
// unreadable file or a missing column is a top-level configuration error and
// aborts before any job runs.
func Load(path string, logger *zap.Logger) ([]Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input CSV: %w", err)
	}
	defer f.Close()

	return parse(f, logger)
}

func parse(r io.Reader, logger *zap.Logger) ([]Job, error) {
	reader := csv.NewReader(r)
	// Chat URLs can contain commas in query strings only when quoted; be
	// lenient about ragged rows rather than failing the whole batch.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	urlIdx := -1
	for i, col := range header {
		if strings.TrimSpace(strings.ToLower(col)) == urlColumn {
			urlIdx = i
			break
		}
	}
	if urlIdx == -1 {
		return nil, fmt.Errorf("input CSV is missing required column %q", urlColumn)
	}

	var jobs []Job
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", row, err)
		}

		url := ""
		if urlIdx < len(record) {
			url = strings.TrimSpace(record[urlIdx])
		}
		if url == "" {
			logger.Warn("Skipping row with missing gpt_url.", zap.Int("row", row))
			continue
		}
		jobs = append(jobs, Job{URL: url})
	}
	return jobs, nil
}
