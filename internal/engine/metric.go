package engine

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
	"github.com/couchcryptid/storm-data-verify/internal/pairs"
)

// Metric names a verification score.
type Metric string

const (
	SampleSize          Metric = "sample_size"
	MeanError           Metric = "mean_error"
	MeanAbsoluteError   Metric = "mean_absolute_error"
	RootMeanSquareError Metric = "root_mean_square_error"
	ContingencyTable    Metric = "contingency_table"
	DichotomousScores   Metric = "dichotomous_scores"
	BrierScore          Metric = "brier_score"
	RankHistogram       Metric = "rank_histogram"
)

// AllMetrics lists every metric the engine computes.
var AllMetrics = []Metric{
	SampleSize,
	MeanError,
	MeanAbsoluteError,
	RootMeanSquareError,
	ContingencyTable,
	DichotomousScores,
	BrierScore,
	RankHistogram,
}

// Scores reported by DichotomousScores.
const (
	ProbabilityOfDetection = "probability_of_detection"
	FalseAlarmRatio        = "false_alarm_ratio"
	CriticalSuccessIndex   = "critical_success_index"
	FrequencyBias          = "frequency_bias"
)

// ParseMetric returns the metric named by s.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllMetrics {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown metric %q", domain.ErrInvalid, s)
}

// ParseMetrics parses a comma separated list. An empty list selects every
// metric. Duplicates are dropped.
func ParseMetrics(s string) ([]Metric, error) {
	if strings.TrimSpace(s) == "" {
		return append([]Metric(nil), AllMetrics...), nil
	}
	var out []Metric
	seen := make(map[Metric]bool)
	for _, part := range strings.Split(s, ",") {
		m, err := ParseMetric(part)
		if err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

// Supports reports whether m can be computed from pairs of kind k.
func (m Metric) Supports(k pairs.Kind) bool {
	switch m {
	case SampleSize, ContingencyTable:
		return true
	case MeanError, MeanAbsoluteError, RootMeanSquareError:
		return k == pairs.KindSingleValued || k == pairs.KindEnsemble
	case DichotomousScores:
		return k != pairs.KindMulticategory
	case BrierScore, RankHistogram:
		return k == pairs.KindEnsemble
	}
	return false
}
