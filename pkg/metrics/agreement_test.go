package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spincoach-ai/engine/pkg/models"
)

const epsilon = 1e-9

func TestPearsonR(t *testing.T) {
	tests := []struct {
		name  string
		preds []int
		truth []int
		want  float64
	}{
		{name: "perfect positive", preds: []int{1, 2, 3, 4, 5}, truth: []int{1, 2, 3, 4, 5}, want: 1},
		{name: "perfect negative", preds: []int{5, 4, 3, 2, 1}, truth: []int{1, 2, 3, 4, 5}, want: -1},
		{name: "shifted by one still perfect", preds: []int{2, 3, 4, 5}, truth: []int{1, 2, 3, 4}, want: 1},
		{name: "zero variance predictions", preds: []int{3, 3, 3}, truth: []int{1, 2, 3}, want: 0},
		{name: "zero variance truth", preds: []int{1, 2, 3}, truth: []int{4, 4, 4}, want: 0},
		{name: "single element", preds: []int{5}, truth: []int{5}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PearsonR(tt.preds, tt.truth)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, epsilon)
		})
	}
}

func TestPearsonRErrors(t *testing.T) {
	_, err := PearsonR(nil, []int{1})
	assert.Error(t, err)

	_, err = PearsonR([]int{1, 2}, []int{1})
	assert.Error(t, err)
}

func TestQWKPerfectAgreement(t *testing.T) {
	preds := []int{1, 2, 3, 4, 5, 2, 4}
	got, err := QWK(preds, preds)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, epsilon)
}

func TestQWKSymmetry(t *testing.T) {
	a := []int{1, 3, 2, 5, 4, 2, 3}
	b := []int{2, 3, 1, 4, 4, 3, 3}

	ab, err := QWK(a, b)
	require.NoError(t, err)
	ba, err := QWK(b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, epsilon)
}

func TestQWKConstantGroundTruth(t *testing.T) {
	got, err := QWK([]int{1, 2, 3}, []int{4, 4, 4})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestQWKOffByOne(t *testing.T) {
	// Systematic +1 offset should still score well above chance.
	got, err := QWK([]int{2, 3, 4}, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Greater(t, got, 0.5)
	assert.Less(t, got, 1.0)
}

func TestQWKKnownValue(t *testing.T) {
	// Hand-computed over the fixed 5x5 histogram with k=5, W[i][j]=(i-j)^2/16.
	// preds=[1,5], truth=[1,5]: perfect. preds=[1,5], truth=[5,1]: observed
	// disagreement equals twice the expected mass, so kappa = -1.
	got, err := QWK([]int{1, 5}, []int{5, 1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, got, epsilon)
}

func TestQWKRejectsOutOfRange(t *testing.T) {
	_, err := QWK([]int{0, 2}, []int{1, 2})
	assert.Error(t, err)

	_, err = QWK([]int{1, 2}, []int{1, 6})
	assert.Error(t, err)
}

func TestPlusMinusOneAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		preds []int
		truth []int
		want  float64
	}{
		{name: "exact", preds: []int{1, 2, 3, 4, 5}, truth: []int{1, 2, 3, 4, 5}, want: 1},
		{name: "all within band", preds: []int{2, 2, 3, 4, 4}, truth: []int{1, 2, 3, 4, 5}, want: 1},
		{name: "one miss", preds: []int{1, 2, 5, 4, 5}, truth: []int{1, 2, 3, 4, 5}, want: 0.8},
		{name: "all miss", preds: []int{5, 5, 5}, truth: []int{1, 1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlusMinusOneAccuracy(tt.preds, tt.truth)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, epsilon)
		})
	}
}

func TestComputeMacroAveraging(t *testing.T) {
	preds := map[string][]int{}
	truth := map[string][]int{}

	// Six dimensions agree perfectly; the last one has constant ground truth,
	// so its QWK and Pearson report 0 and still count in the macro mean.
	for i, dim := range models.Dimensions {
		if i < len(models.Dimensions)-1 {
			preds[dim] = []int{1, 2, 3, 4, 5}
			truth[dim] = []int{1, 2, 3, 4, 5}
		} else {
			preds[dim] = []int{3, 3, 3, 3, 3}
			truth[dim] = []int{3, 3, 3, 3, 3}
		}
	}

	report, err := Compute(preds, truth)
	require.NoError(t, err)

	require.Len(t, report.PerDimension, 7)
	assert.InDelta(t, 6.0/7.0, report.MacroQWK, epsilon)
	assert.InDelta(t, 6.0/7.0, report.MacroPearsonR, epsilon)
	assert.InDelta(t, 1.0, report.MacroPlusMinus1, epsilon)

	// Per-dimension detail is retained verbatim.
	last := models.Dimensions[len(models.Dimensions)-1]
	assert.Equal(t, 0.0, report.PerDimension[last].QWK)
	assert.Equal(t, 1.0, report.PerDimension[last].PlusMinusOneAccuracy)
}

func TestComputeMissingDimension(t *testing.T) {
	preds := map[string][]int{}
	truth := map[string][]int{}
	for _, dim := range models.Dimensions[:3] {
		preds[dim] = []int{1, 2}
		truth[dim] = []int{1, 2}
	}

	_, err := Compute(preds, truth)
	assert.Error(t, err)
}

func TestMacroIsUnweightedMean(t *testing.T) {
	preds := map[string][]int{}
	truth := map[string][]int{}
	for _, dim := range models.Dimensions {
		// Different lengths per dimension must not change the weighting.
		preds[dim] = []int{1, 2, 3, 4, 5, 1, 2, 3}
		truth[dim] = []int{1, 2, 3, 4, 5, 1, 2, 3}
	}
	preds["flow"] = []int{1, 2}
	truth["flow"] = []int{1, 2}

	report, err := Compute(preds, truth)
	require.NoError(t, err)

	var sum float64
	for _, dim := range models.Dimensions {
		sum += report.PerDimension[dim].QWK
	}
	assert.False(t, math.IsNaN(report.MacroQWK))
	assert.InDelta(t, sum/7.0, report.MacroQWK, epsilon)
}
