package analysis

import "math"

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// confidenceFor saturates well below 1 for small samples: n/(n+k). It is
// monotonically non-decreasing in n, which is what lets a caller-supplied
// confidence floor filter small-sample noise without a significance test.
func confidenceFor(sampleSize int, smoothingK float64) float64 {
	if sampleSize <= 0 {
		return 0
	}
	if smoothingK <= 0 {
		smoothingK = 1
	}
	n := float64(sampleSize)
	return n / (n + smoothingK)
}

// pearson computes the sample correlation coefficient of two equal-length
// vectors. A constant vector on either side yields 0, not NaN.
func pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || n != len(ys) {
		return 0
	}
	meanX := meanOf(xs)
	meanY := meanOf(ys)
	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// prAUC computes the area under the precision-recall curve for test scores
// ranked descending, using the average-precision formulation (precision at
// each positive hit weighted by the recall step). Preferred over ROC-AUC
// here because outcome classes are typically imbalanced.
func prAUC(scores []float64, labels []bool) float64 {
	n := len(scores)
	if n == 0 || n != len(labels) {
		return 0
	}
	totalPos := 0
	for _, l := range labels {
		if l {
			totalPos++
		}
	}
	if totalPos == 0 {
		return 0
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	// stable sort by score descending
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && scores[order[j-1]] < scores[order[j]] {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}

	auc := 0.0
	tp := 0
	for rank, idx := range order {
		if labels[idx] {
			tp++
			precision := float64(tp) / float64(rank+1)
			auc += precision / float64(totalPos)
		}
	}
	return auc
}
