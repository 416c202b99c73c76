package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Indicator is a tri-state flag for facts the scraper cannot always resolve.
type Indicator string

const (
	IndicatorSupported   Indicator = "🟢"
	IndicatorUnsupported Indicator = "🔴"
	IndicatorUnknown     Indicator = "❓"
)

// Placeholders written when a field could not be extracted.
const (
	PlaceholderDescription = "Description unavailable"
	PlaceholderDuration    = "Duration not specified"
	PlaceholderJobLevel    = "Level not specified"
	PlaceholderTestType    = "Type not specified"

	// NotSpecified fills optional fields missing from index metadata.
	NotSpecified = "Not specified"
)

// ParseIndicator maps stored or scraped values onto the tri-state.
// Anything unrecognized is Unknown.
func ParseIndicator(s string) Indicator {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(IndicatorSupported), "supported", "yes", "true":
		return IndicatorSupported
	case string(IndicatorUnsupported), "unsupported", "not supported", "no", "false":
		return IndicatorUnsupported
	default:
		return IndicatorUnknown
	}
}

// UnmarshalJSON accepts any string and normalizes it.
func (i *Indicator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("indicator: %w", err)
	}
	*i = ParseIndicator(s)
	return nil
}

// Assessment is one catalog record.
type Assessment struct {
	Name          string    `json:"name" validate:"required"`
	URL           string    `json:"url" validate:"required,url"`
	Description   string    `json:"description"`
	Duration      string    `json:"duration"`
	Languages     []string  `json:"languages"`
	JobLevel      string    `json:"job_level"`
	RemoteTesting Indicator `json:"remote_testing"`
	AdaptiveIRT   Indicator `json:"adaptive_irt_support"`
	TestType      string    `json:"test_type"`
	SourceTab     int       `json:"source_tab"`
}

// LegacyAdaptiveKey is the adaptive/IRT key used by older snapshots.
const LegacyAdaptiveKey = "adaptive/irt_support"

// RequiredFields lists the keys every snapshot item must carry to be indexed.
var RequiredFields = []string{
	"name", "url", "description", "duration", "languages",
	"job_level", "remote_testing", "adaptive_irt_support", "test_type",
}

// NewAssessment returns a record with every optional field set to its placeholder.
func NewAssessment(name, url string, tab int) Assessment {
	return Assessment{
		Name:          name,
		URL:           url,
		Description:   PlaceholderDescription,
		Duration:      PlaceholderDuration,
		Languages:     []string{},
		JobLevel:      PlaceholderJobLevel,
		RemoteTesting: IndicatorUnknown,
		AdaptiveIRT:   IndicatorUnknown,
		TestType:      PlaceholderTestType,
		SourceTab:     tab,
	}
}

// UnmarshalJSON reads the legacy adaptive key when the current one is absent.
func (a *Assessment) UnmarshalJSON(data []byte) error {
	type plain Assessment
	aux := struct {
		*plain
		Legacy *Indicator `json:"adaptive/irt_support"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err //nolint:wrapcheck // decoder error is already descriptive
	}
	if a.AdaptiveIRT == "" && aux.Legacy != nil {
		a.AdaptiveIRT = *aux.Legacy
	}
	return nil
}

var validate = validator.New()

// Validate checks the identity fields.
func (a *Assessment) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("assessment %q: %w", a.Name, err)
	}
	return nil
}

// CompositeDocument is the text the record is embedded from.
func (a *Assessment) CompositeDocument() string {
	return fmt.Sprintf("%s: %s: %s: %s: %s: %s: %s: %s: %s",
		a.Name, a.Description, a.URL, a.Duration, strings.Join(a.Languages, ", "),
		a.JobLevel, a.RemoteTesting, a.AdaptiveIRT, a.TestType)
}

// Metadata flattens the record into scalar fields for index storage.
func (a *Assessment) Metadata() map[string]string {
	return map[string]string{
		"name":                 a.Name,
		"url":                  a.URL,
		"description":          a.Description,
		"duration":             a.Duration,
		"languages":            strings.Join(a.Languages, ", "),
		"job_level":            a.JobLevel,
		"remote_testing":       string(a.RemoteTesting),
		"adaptive_irt_support": string(a.AdaptiveIRT),
		"test_type":            a.TestType,
		"source_tab":           strconv.Itoa(a.SourceTab),
	}
}

// SplitLanguages reverses the join done by Metadata.
func SplitLanguages(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IndexEntry is the unit stored in the vector index.
type IndexEntry struct {
	ID       string
	Vector   []float32
	Document string
	Metadata map[string]string
}

// Neighbor is one nearest-neighbor hit. Distance is nil when the index
// returned no usable score.
type Neighbor struct {
	ID       string
	Distance *float64
	Metadata map[string]string
}
