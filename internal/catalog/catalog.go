// Package catalog persists the scraped assessment catalog as a JSON snapshot.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/recommender/internal/domain"
)

// DefaultPath is where ingestion writes the snapshot and indexing reads it.
const DefaultPath = "data/shl_assessments_complete.json"

// Skip describes one snapshot item that was not loaded.
type Skip struct {
	Index  int
	Reason string
}

// LoadResult holds the valid records of a snapshot and what was dropped.
type LoadResult struct {
	Records []domain.Assessment
	Skipped []Skip
}

// Save writes records as an indented JSON array, replacing any previous
// snapshot. The file is written to a temp sibling and renamed into place.
func Save(path string, records []domain.Assessment) error {
	if records == nil {
		records = []domain.Assessment{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // snapshot is public catalog data
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot. Items that are not objects, lack a required field or
// fail validation are skipped and reported. The snapshot itself is rejected
// when it is missing, is not a JSON array, or has no valid item at all.
func Load(path string) (LoadResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LoadResult{}, fmt.Errorf("%w: %s", domain.ErrCatalogNotFound, path)
		}
		return LoadResult{}, fmt.Errorf("read catalog: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return LoadResult{}, fmt.Errorf("%w: %s is not a JSON array", domain.ErrInvalidCatalog, path)
	}

	var res LoadResult
	for i, raw := range items {
		rec, reason := decodeItem(raw)
		if reason != "" {
			res.Skipped = append(res.Skipped, Skip{Index: i, Reason: reason})
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		return res, fmt.Errorf("%w: %s has no valid records (%d skipped)",
			domain.ErrInvalidCatalog, path, len(res.Skipped))
	}
	return res, nil
}

func decodeItem(raw json.RawMessage) (domain.Assessment, string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.Assessment{}, "not an object"
	}

	for _, key := range domain.RequiredFields {
		if present(fields, key) {
			continue
		}
		if key == "adaptive_irt_support" && present(fields, domain.LegacyAdaptiveKey) {
			continue
		}
		return domain.Assessment{}, "missing field " + key
	}

	var a domain.Assessment
	if err := json.Unmarshal(raw, &a); err != nil {
		return domain.Assessment{}, "decode: " + err.Error()
	}
	if a.Languages == nil {
		a.Languages = []string{}
	}
	if err := a.Validate(); err != nil {
		return domain.Assessment{}, err.Error()
	}
	return a, ""
}

func present(fields map[string]json.RawMessage, key string) bool {
	v, ok := fields[key]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
