package extraction

import (
	"math"
	"math/rand"

	"skymatch/pkg/colorutil"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultPairSamples is the number of random object pairs Summarize
// measures when the caller passes 0.
const DefaultPairSamples = 500

// Summary describes a set of detected objects.
type Summary struct {
	ObjectCount       int                         `json:"object_count"`
	AvgDistance       float64                     `json:"avg_distance"`
	MinDistance       float64                     `json:"min_distance"`
	MaxDistance       float64                     `json:"max_distance"`
	AreaMean          float64                     `json:"area_mean"`
	AreaStd           float64                     `json:"area_std"`
	AreaMin           float64                     `json:"area_min"`
	AreaMax           float64                     `json:"area_max"`
	BrightnessMean    float64                     `json:"brightness_mean"`
	BrightnessStd     float64                     `json:"brightness_std"`
	BrightnessMin     float64                     `json:"brightness_min"`
	BrightnessMax     float64                     `json:"brightness_max"`
	ColorDistribution map[colorutil.Class]float64 `json:"color_distribution"`
	TypeDistribution  map[ObjectType]float64      `json:"type_distribution"`
}

// Summarize computes spacing, size, brightness and class statistics for
// objs. Pair distances come from up to nSamples random pairs drawn with a
// generator seeded by seed. It reports false when fewer than two objects
// are given.
func Summarize(objs []DetectedObject, nSamples int, seed int64) (Summary, bool) {
	n := len(objs)
	if n < 2 {
		return Summary{}, false
	}
	if nSamples <= 0 {
		nSamples = DefaultPairSamples
	}

	rng := rand.New(rand.NewSource(seed))
	pairs := min(nSamples, n*(n-1)/2)
	distances := make([]float64, pairs)
	for k := range distances {
		i := rng.Intn(n)
		j := rng.Intn(n - 1)
		if j >= i {
			j++
		}
		distances[k] = objs[i].Centroid().Distance(objs[j].Centroid())
	}

	areas := make([]float64, n)
	brightness := make([]float64, n)
	colors := make(map[colorutil.Class]float64)
	types := make(map[ObjectType]float64)
	for i, o := range objs {
		areas[i] = o.Area
		brightness[i] = o.TotalBrightness
		colors[o.Color]++
		types[o.Type]++
	}
	for k := range colors {
		colors[k] /= float64(n)
	}
	for k := range types {
		types[k] /= float64(n)
	}

	return Summary{
		ObjectCount:       n,
		AvgDistance:       stat.Mean(distances, nil),
		MinDistance:       floats.Min(distances),
		MaxDistance:       floats.Max(distances),
		AreaMean:          stat.Mean(areas, nil),
		AreaStd:           popStdDev(areas),
		AreaMin:           floats.Min(areas),
		AreaMax:           floats.Max(areas),
		BrightnessMean:    stat.Mean(brightness, nil),
		BrightnessStd:     popStdDev(brightness),
		BrightnessMin:     floats.Min(brightness),
		BrightnessMax:     floats.Max(brightness),
		ColorDistribution: colors,
		TypeDistribution:  types,
	}, true
}

// popStdDev is the population standard deviation (divide by n).
func popStdDev(x []float64) float64 {
	n := float64(len(x))
	return math.Sqrt(stat.Variance(x, nil) * (n - 1) / n)
}
