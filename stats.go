package vision

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Balance describes how evenly images are spread across classes.
type Balance struct {
	// Mean is the average number of images per class.
	Mean float64 `json:"mean"`

	// StdDev is the sample standard deviation of images per class.
	StdDev float64 `json:"std_dev"`

	// Min is the smallest class size.
	Min int `json:"min"`

	// Max is the largest class size.
	Max int `json:"max"`

	// ImbalanceRatio is Max/Min, or 0 when some class is empty.
	ImbalanceRatio float64 `json:"imbalance_ratio"`
}

// Balance computes class-size statistics. Returns the zero Balance for an
// Info without classes.
func (i Info) Balance() Balance {
	if len(i.Classes) == 0 {
		return Balance{}
	}

	sizes := make([]float64, len(i.Classes))
	for n, c := range i.Classes {
		sizes[n] = float64(c.Images)
	}

	b := Balance{
		Min: int(floats.Min(sizes)),
		Max: int(floats.Max(sizes)),
	}
	if len(sizes) == 1 {
		b.Mean = sizes[0]
	} else {
		b.Mean, b.StdDev = stat.MeanStdDev(sizes, nil)
	}
	if b.Min > 0 {
		b.ImbalanceRatio = float64(b.Max) / float64(b.Min)
	}
	return b
}

// MaxValCount returns the largest per-class validation count that still
// leaves at least minTrain images in every class's Train subset.
// Returns 0 when no class can spare an image.
func (i Info) MaxValCount(minTrain int) int {
	if len(i.Classes) == 0 {
		return 0
	}
	if minTrain < 0 {
		minTrain = 0
	}
	smallest := i.Classes[0].Images
	for _, c := range i.Classes[1:] {
		if c.Images < smallest {
			smallest = c.Images
		}
	}
	if smallest <= minTrain {
		return 0
	}
	return smallest - minTrain
}
