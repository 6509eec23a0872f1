package optimize

import "fmt"

// Bounds holds the per-gene [low, high] search range of a chromosome.
type Bounds struct {
	low  []float64
	high []float64
}

// UniformBounds builds Bounds with the same range for every gene.
func UniformBounds(low, high float64, genes int) (Bounds, error) {
	if genes < 0 {
		return Bounds{}, fmt.Errorf("gene count cannot be negative, got %d", genes)
	}
	if low > high {
		return Bounds{}, fmt.Errorf("bounds inverted: low %f > high %f", low, high)
	}
	lows := make([]float64, genes)
	highs := make([]float64, genes)
	for i := range lows {
		lows[i] = low
		highs[i] = high
	}
	return Bounds{low: lows, high: highs}, nil
}

// NewBounds builds Bounds from per-gene slices of equal length.
func NewBounds(low, high []float64) (Bounds, error) {
	if len(low) != len(high) {
		return Bounds{}, fmt.Errorf("bounds slices differ in length: %d vs %d", len(low), len(high))
	}
	for i := range low {
		if low[i] > high[i] {
			return Bounds{}, fmt.Errorf("gene %d: low %f > high %f", i, low[i], high[i])
		}
	}
	lows := make([]float64, len(low))
	highs := make([]float64, len(high))
	copy(lows, low)
	copy(highs, high)
	return Bounds{low: lows, high: highs}, nil
}

// Genes returns the chromosome length.
func (b Bounds) Genes() int {
	return len(b.low)
}

// Low returns the lower bound of gene i.
func (b Bounds) Low(i int) float64 {
	return b.low[i]
}

// High returns the upper bound of gene i.
func (b Bounds) High(i int) float64 {
	return b.high[i]
}

// Clamp limits v to gene i's range.
func (b Bounds) Clamp(i int, v float64) float64 {
	if v < b.low[i] {
		return b.low[i]
	}
	if v > b.high[i] {
		return b.high[i]
	}
	return v
}

// Contains reports whether every gene of the vector lies within its range.
func (b Bounds) Contains(vector []float64) bool {
	if len(vector) != len(b.low) {
		return false
	}
	for i, v := range vector {
		if v < b.low[i] || v > b.high[i] {
			return false
		}
	}
	return true
}
