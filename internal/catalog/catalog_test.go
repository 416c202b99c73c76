package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/recommender/internal/domain"
)

func sampleRecords() []domain.Assessment {
	a := domain.NewAssessment("Verify G+", "https://x/verify", 1)
	a.Description = "numerical reasoning test"
	a.Duration = "20 minutes"
	a.Languages = []string{"English"}
	a.JobLevel = "Entry-level"
	a.RemoteTesting = domain.IndicatorSupported
	a.AdaptiveIRT = domain.IndicatorUnsupported
	a.TestType = "A"

	b := domain.NewAssessment("OPQ32r", "https://x/opq", 2)
	return []domain.Assessment{a, b}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "catalog.json")
	records := sampleRecords()

	require.NoError(t, Save(path, records))

	res, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, records, res.Records)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {\n    \"name\": \"Verify G+\"")
	assert.Contains(t, string(raw), `"adaptive_irt_support": "🔴"`)
}

func TestSave_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	require.NoError(t, Save(path, sampleRecords()))
	require.NoError(t, Save(path, sampleRecords()[:1]))

	res, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, res.Records, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "catalog.json", entries[0].Name())
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, Save(path, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, domain.ErrCatalogNotFound)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"object", `{"name": "x"}`},
		{"null", `null`},
		{"garbage", `not json`},
		{"empty list", `[]`},
		{"all incomplete", `[{"name": "x", "url": "https://x"}, 42, "str"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			require.ErrorIs(t, err, domain.ErrInvalidCatalog)
		})
	}
}

func TestLoad_SkipsBadItems(t *testing.T) {
	good := map[string]any{
		"name": "Verify G+", "url": "https://x/verify", "description": "d", "duration": "20 minutes",
		"languages": []string{"English"}, "job_level": "Entry-level", "remote_testing": "🟢",
		"adaptive/irt_support": "🔴", "test_type": "A",
	}
	noURL := map[string]any{}
	for k, v := range good {
		noURL[k] = v
	}
	noURL["url"] = ""
	nullDesc := map[string]any{}
	for k, v := range good {
		nullDesc[k] = v
	}
	nullDesc["description"] = nil

	data, err := json.Marshal([]any{good, "not an object", noURL, nullDesc, map[string]any{"name": "x"}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	res, err := Load(path)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, domain.IndicatorUnsupported, res.Records[0].AdaptiveIRT, "legacy key")
	assert.Equal(t, domain.IndicatorSupported, res.Records[0].RemoteTesting)

	require.Len(t, res.Skipped, 4)
	assert.Equal(t, Skip{Index: 1, Reason: "not an object"}, res.Skipped[0])
	assert.Equal(t, 2, res.Skipped[1].Index)
	assert.Equal(t, Skip{Index: 3, Reason: "missing field description"}, res.Skipped[2])
	assert.Equal(t, Skip{Index: 4, Reason: "missing field url"}, res.Skipped[3])
}
