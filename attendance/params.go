package attendance

// Bounds and defaults of the two user-facing knobs.
const (
	MinMergeInterval     = 1
	MaxMergeInterval     = 120
	DefaultMergeInterval = 5

	MinTrafficLimit     = 1
	MaxTrafficLimit     = 50
	DefaultTrafficLimit = 2
)

// Params are the inputs every derived view depends on besides the raw data.
type Params struct {
	MergeIntervalMinutes int                    `json:"merge_interval_minutes"`
	TrafficLimit         int                    `json:"traffic_limit"`
	ReferenceMonth       ReferenceMonthStrategy `json:"reference_month"`
}

func DefaultParams() Params {
	return Params{
		MergeIntervalMinutes: DefaultMergeInterval,
		TrafficLimit:         DefaultTrafficLimit,
		ReferenceMonth:       FirstInserted,
	}
}

// Clamp pulls every field to its nearest valid value. Invalid input is never
// an error.
func (p Params) Clamp() Params {
	p.MergeIntervalMinutes = ClampInt(p.MergeIntervalMinutes, MinMergeInterval, MaxMergeInterval)
	p.TrafficLimit = ClampInt(p.TrafficLimit, MinTrafficLimit, MaxTrafficLimit)
	if s, err := ParseReferenceMonthStrategy(string(p.ReferenceMonth)); err == nil {
		p.ReferenceMonth = s
	} else {
		p.ReferenceMonth = FirstInserted
	}
	return p
}

// IntervalSeconds is the merge window in seconds.
func (p Params) IntervalSeconds() int {
	return p.MergeIntervalMinutes * 60
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseBound reads a user-typed number. Leading digits are honored ("15min"
// reads as 15); text without them, and zero, read as lo. The result is
// clamped to [lo, hi].
func ParseBound(s string, lo, hi int) int {
	n, ok := leadingInt(s)
	if !ok || n == 0 {
		return lo
	}
	return ClampInt(n, lo, hi)
}
