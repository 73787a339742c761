package domain

// RawSegment is one segment configuration entry as supplied by managers.
type RawSegment struct {
	ClusterID      *int               `json:"cluster_id" validate:"required"`
	BusinessLabel  *string            `json:"business_label" validate:"required,notblank"`
	Baseline       map[string]float64 `json:"baseline" validate:"required"`
	BoostIfHighGap *float64           `json:"boost_if_high_gap"`
	MaxPerkCost    *float64           `json:"max_perk_cost" validate:"required"`
	PerkPriority   []string           `json:"perk_priority"`
}

// SegmentConfig holds the business rules for one customer segment. Read-only during a run.
type SegmentConfig struct {
	ClusterID      int
	BusinessLabel  string
	Baseline       map[SeasonBand]float64
	BoostIfHighGap float64
	MaxPerkCost    float64
	PerkPriority   []Perk
}

func (s SegmentConfig) BaselineFor(b SeasonBand) float64 { return s.Baseline[b] }

// Segments indexes configs by cluster id. The first config listed for a cluster wins.
type Segments map[int]SegmentConfig

func NewSegments(list []SegmentConfig) Segments {
	out := make(Segments, len(list))
	for _, s := range list {
		if _, dup := out[s.ClusterID]; !dup {
			out[s.ClusterID] = s
		}
	}
	return out
}

func (s Segments) Lookup(cluster int) (SegmentConfig, bool) {
	c, ok := s[cluster]
	return c, ok
}
