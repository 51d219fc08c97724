package services

// CronbachAlpha estimates internal consistency for a [respondents][items] matrix.
// Variances are population variances. Ragged rows, fewer than two items or a
// zero total variance give 0; the result is clamped to [0, 1].
func CronbachAlpha(matrix [][]float64) float64 {
	n := len(matrix)
	if n == 0 {
		return 0
	}
	k := len(matrix[0])
	if k < 2 {
		return 0
	}
	totals := make([]float64, n)
	column := make([]float64, n)
	var sumItemVar float64
	for j := 0; j < k; j++ {
		for i, row := range matrix {
			if len(row) != k {
				return 0
			}
			column[i] = row[j]
			totals[i] += row[j]
		}
		sumItemVar += populationVariance(column)
	}
	totalVar := populationVariance(totals)
	if totalVar == 0 {
		return 0
	}
	kf := float64(k)
	alpha := kf / (kf - 1) * (1 - sumItemVar/totalVar)
	switch {
	case alpha < 0:
		return 0
	case alpha > 1:
		return 1
	}
	return alpha
}

func populationVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return ss / float64(len(xs))
}
