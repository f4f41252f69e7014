// Package vector holds the pooling and normalization math applied to provider output.
package vector

import "math"

// MeanPool averages token vectors into a single sentence vector.
// The first row fixes the dimension; missing trailing values count as zero.
// Returns nil when there are no rows.
func MeanPool(tokens [][]float32) []float32 {
	if len(tokens) == 0 {
		return nil
	}
	dim := len(tokens[0])
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	for _, row := range tokens {
		for i := 0; i < dim && i < len(row); i++ {
			sum[i] += float64(row[i])
		}
	}

	n := float64(len(tokens))
	mean := make([]float32, dim)
	for i, v := range sum {
		mean[i] = float32(v / n)
	}
	return mean
}

// Normalize returns v scaled to unit L2 length. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}

	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sq)
	if norm == 0 {
		norm = 1
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// PoolAndNormalize is MeanPool followed by Normalize.
func PoolAndNormalize(tokens [][]float32) []float32 {
	return Normalize(MeanPool(tokens))
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	return math.Sqrt(sq)
}
