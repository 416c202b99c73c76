package recommender

import (
	"time"

	"github.com/kailas-cloud/recommender/internal/domain"
	recommenduc "github.com/kailas-cloud/recommender/internal/usecase/recommend"
)

// Assessment is one catalog record.
type Assessment = domain.Assessment

// Recommendation is one ranked assessment.
type Recommendation = domain.Recommendation

// Indicator flags remote testing and adaptive support.
type Indicator = domain.Indicator

// Indicator values.
const (
	Supported   = domain.IndicatorSupported
	Unsupported = domain.IndicatorUnsupported
	Unknown     = domain.IndicatorUnknown
)

// TopK is the maximum number of recommendations returned per query.
const TopK = recommenduc.TopK

// IndexReport summarizes a snapshot indexing run.
type IndexReport struct {
	Indexed  int
	Skipped  int
	Duration time.Duration
}
