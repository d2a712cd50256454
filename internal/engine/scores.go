package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/storm-data-verify/internal/domain"
)

func meanError(obs, pred []float64) float64 {
	diffs := make([]float64, len(obs))
	for i := range obs {
		diffs[i] = pred[i] - obs[i]
	}
	return stat.Mean(diffs, nil)
}

func meanAbsoluteError(obs, pred []float64) float64 {
	diffs := make([]float64, len(obs))
	for i := range obs {
		diffs[i] = math.Abs(pred[i] - obs[i])
	}
	return stat.Mean(diffs, nil)
}

func rootMeanSquareError(obs, pred []float64) float64 {
	sq := make([]float64, len(obs))
	for i := range obs {
		d := pred[i] - obs[i]
		sq[i] = d * d
	}
	return math.Sqrt(stat.Mean(sq, nil))
}

// table2x2 counts events in the layout
//
//	            observed yes  observed no
//	pred yes    hits          false alarms
//	pred no     misses        correct negatives
func table2x2(obs, pred []bool) []float64 {
	t := make([]float64, 4)
	for i := range obs {
		t[cell(pred[i])*2+cell(obs[i])]++
	}
	return t
}

func cell(yes bool) int {
	if yes {
		return 0
	}
	return 1
}

// tableNxN counts predicted category (row) against observed category
// (column) in row-major order.
func tableNxN(obs, pred []int, n int) []float64 {
	t := make([]float64, n*n)
	for i := range obs {
		t[pred[i]*n+obs[i]]++
	}
	return t
}

func dichotomousScores(t []float64) map[string]float64 {
	hits, falseAlarms, misses := t[0], t[1], t[2]
	return map[string]float64{
		ProbabilityOfDetection: ratio(hits, hits+misses),
		FalseAlarmRatio:        ratio(falseAlarms, hits+falseAlarms),
		CriticalSuccessIndex:   ratio(hits, hits+misses+falseAlarms),
		FrequencyBias:          ratio(hits+falseAlarms, hits+misses),
	}
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}

// brierScore is the mean squared difference between forecast probability
// and binary outcome.
func brierScore(probs []float64, outcomes []bool) float64 {
	sq := make([]float64, len(probs))
	for i, p := range probs {
		o := 0.0
		if outcomes[i] {
			o = 1
		}
		sq[i] = (p - o) * (p - o)
	}
	return stat.Mean(sq, nil)
}

// exceedance returns the fraction of members satisfying th.
func exceedance(members domain.VectorOfDoubles, th domain.Threshold) float64 {
	n := 0
	for i := 0; i < members.Len(); i++ {
		if th.Test(members.At(i)) {
			n++
		}
	}
	return float64(n) / float64(members.Len())
}

// rankHistogram returns the relative frequency of the observation's rank
// among the members, ranks 0 through members inclusive.
func rankHistogram(obs []float64, members []domain.VectorOfDoubles) ([]float64, error) {
	width := members[0].Len()
	counts := make([]float64, width+1)
	for i, o := range obs {
		if members[i].Len() != width {
			return nil, domain.Invalidf("rank histogram needs a constant member count, pair %d has %d members, expected %d",
				i, members[i].Len(), width)
		}
		rank := 0
		for j := 0; j < width; j++ {
			if members[i].At(j) < o {
				rank++
			}
		}
		counts[rank]++
	}
	for i := range counts {
		counts[i] /= float64(len(obs))
	}
	return counts, nil
}
