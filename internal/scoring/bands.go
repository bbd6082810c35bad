package scoring

// Band names, ordered weakest to strongest. Boundaries are closed-open
// intervals so an exact threshold value lands in exactly one band; the top
// band closes at 100 so the maximum score is assignable.
const (
	BandWeak   = "weak"   // [0, 40)
	BandFair   = "fair"   // [40, 60)
	BandGood   = "good"   // [60, 80)
	BandStrong = "strong" // [80, 100]
)

// bandThresholdsCP are the lower bounds of fair/good/strong in centipoints.
var bandThresholdsCP = []struct {
	floor int64
	name  string
}{
	{8000, BandStrong},
	{6000, BandGood},
	{4000, BandFair},
}

// bandForCP maps a final score in centipoints to its band.
func bandForCP(cp int64) string {
	for _, t := range bandThresholdsCP {
		if cp >= t.floor {
			return t.name
		}
	}
	return BandWeak
}
