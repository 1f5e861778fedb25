// Package metrics computes agreement statistics between model-predicted and
// human-labeled rubric scores: Pearson correlation, Quadratic Weighted Kappa
// and ±1-band accuracy, per dimension and macro-averaged.
package metrics

import (
	"fmt"
	"math"

	"github.com/spincoach-ai/engine/pkg/models"
)

// numCategories is the size of the rating scale. Scores are integers in
// [1, 5]; the QWK confusion histogram is always 5x5 regardless of which
// values actually occur, so kappa is comparable across runs.
const numCategories = models.MaxScore - models.MinScore + 1

// Report holds the full evaluation result: the per-dimension map is kept
// verbatim alongside the macro scalars.
type Report struct {
	PerDimension    map[string]models.DimensionMetrics
	MacroPearsonR   float64
	MacroQWK        float64
	MacroPlusMinus1 float64
}

// PearsonR returns the linear correlation coefficient between predictions and
// ground truth. Defined as 0 when either sequence has zero variance so that
// macro averaging stays well-defined.
func PearsonR(preds, truth []int) (float64, error) {
	if err := checkPair(preds, truth); err != nil {
		return 0, err
	}

	n := float64(len(preds))
	if len(preds) == 1 {
		return 0, nil
	}

	var meanP, meanT float64
	for i := range preds {
		meanP += float64(preds[i])
		meanT += float64(truth[i])
	}
	meanP /= n
	meanT /= n

	var cov, varP, varT float64
	for i := range preds {
		dp := float64(preds[i]) - meanP
		dt := float64(truth[i]) - meanT
		cov += dp * dt
		varP += dp * dp
		varT += dt * dt
	}

	if varP == 0 || varT == 0 {
		return 0, nil
	}
	return cov / (math.Sqrt(varP) * math.Sqrt(varT)), nil
}

// QWK returns the Quadratic Weighted Kappa over the fixed 5-point scale.
// The confusion histogram O is built over all 5 categories, the expected
// histogram E from the outer product of its marginals, and the weight matrix
// W[i][j] = (i-j)^2 / (k-1)^2. Reported as 0 when the ground truth contains a
// single unique value, where the chance-agreement denominator degenerates.
func QWK(preds, truth []int) (float64, error) {
	if err := checkPair(preds, truth); err != nil {
		return 0, err
	}

	if constant(truth) {
		return 0, nil
	}

	var observed [numCategories][numCategories]float64
	for i := range preds {
		p, err := categoryIndex(preds[i])
		if err != nil {
			return 0, err
		}
		t, err := categoryIndex(truth[i])
		if err != nil {
			return 0, err
		}
		observed[p][t]++
	}

	var histP, histT [numCategories]float64
	for i := 0; i < numCategories; i++ {
		for j := 0; j < numCategories; j++ {
			histP[i] += observed[i][j]
			histT[j] += observed[i][j]
		}
	}

	n := float64(len(preds))
	denomW := float64((numCategories - 1) * (numCategories - 1))

	var sumWO, sumWE float64
	for i := 0; i < numCategories; i++ {
		for j := 0; j < numCategories; j++ {
			w := float64((i-j)*(i-j)) / denomW
			sumWO += w * observed[i][j]
			sumWE += w * histP[i] * histT[j] / n
		}
	}

	if sumWE == 0 {
		return 0, nil
	}
	return 1 - sumWO/sumWE, nil
}

// PlusMinusOneAccuracy returns the fraction of examples whose prediction is
// within one point of the ground truth.
func PlusMinusOneAccuracy(preds, truth []int) (float64, error) {
	if err := checkPair(preds, truth); err != nil {
		return 0, err
	}

	hits := 0
	for i := range preds {
		d := preds[i] - truth[i]
		if d >= -1 && d <= 1 {
			hits++
		}
	}
	return float64(hits) / float64(len(preds)), nil
}

// Compute evaluates all three statistics for every dimension and
// macro-averages them with equal weight per dimension. Both maps must contain
// every fixed dimension with equal-length, index-aligned sequences.
func Compute(preds, truth map[string][]int) (*Report, error) {
	report := &Report{
		PerDimension: make(map[string]models.DimensionMetrics, len(models.Dimensions)),
	}

	for _, dim := range models.Dimensions {
		p, ok := preds[dim]
		if !ok {
			return nil, fmt.Errorf("missing predictions for dimension %q", dim)
		}
		t, ok := truth[dim]
		if !ok {
			return nil, fmt.Errorf("missing ground truth for dimension %q", dim)
		}

		r, err := PearsonR(p, t)
		if err != nil {
			return nil, fmt.Errorf("dimension %q: %w", dim, err)
		}
		kappa, err := QWK(p, t)
		if err != nil {
			return nil, fmt.Errorf("dimension %q: %w", dim, err)
		}
		pm1, err := PlusMinusOneAccuracy(p, t)
		if err != nil {
			return nil, fmt.Errorf("dimension %q: %w", dim, err)
		}

		report.PerDimension[dim] = models.DimensionMetrics{
			PearsonR:             r,
			QWK:                  kappa,
			PlusMinusOneAccuracy: pm1,
		}
		report.MacroPearsonR += r
		report.MacroQWK += kappa
		report.MacroPlusMinus1 += pm1
	}

	nDims := float64(len(models.Dimensions))
	report.MacroPearsonR /= nDims
	report.MacroQWK /= nDims
	report.MacroPlusMinus1 /= nDims

	return report, nil
}

func checkPair(preds, truth []int) error {
	if len(preds) == 0 || len(truth) == 0 {
		return fmt.Errorf("sequences must contain at least one element")
	}
	if len(preds) != len(truth) {
		return fmt.Errorf("sequences must be the same length: %d vs %d", len(preds), len(truth))
	}
	return nil
}

func constant(vals []int) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

func categoryIndex(score int) (int, error) {
	if score < models.MinScore || score > models.MaxScore {
		return 0, fmt.Errorf("score %d outside [%d, %d]", score, models.MinScore, models.MaxScore)
	}
	return score - models.MinScore, nil
}
