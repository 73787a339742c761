package domain

type SeasonBand string

const (
	SeasonLow      SeasonBand = "low"
	SeasonShoulder SeasonBand = "shoulder"
	SeasonHigh     SeasonBand = "high"
)

func (b SeasonBand) Valid() bool {
	switch b {
	case SeasonLow, SeasonShoulder, SeasonHigh:
		return true
	}
	return false
}

// ClassifySeason bands an occupancy percentage: [0,50) low, [50,75) shoulder, [75,∞) high.
// A missing occupancy is treated as shoulder.
func ClassifySeason(occupancy *float64) SeasonBand {
	if occupancy == nil {
		return SeasonShoulder
	}
	switch occ := *occupancy; {
	case occ < 50:
		return SeasonLow
	case occ < 75:
		return SeasonShoulder
	default:
		return SeasonHigh
	}
}
