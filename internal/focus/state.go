// Package focus drives multi-step visual targeting: full capture, coarse
// region identification, zoomed capture, precise candidate resolution,
// click, and post-click verification feeding the learning cache.
package focus

// State identifies one stage of a targeting session. The machine is
// strictly forward-progressing; Retry re-enters RegionZoom with an
// escalated zoom level and a decremented retry budget, so every session
// terminates.
type State int

const (
	StateIdle State = iota
	StateCoarseLocate
	StateRegionZoom
	StatePreciseResolve
	StateAct
	StateVerify
	StateDone
	StateRetry
	StateEscalate
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateCoarseLocate:   "coarse_locate",
	StateRegionZoom:     "region_zoom",
	StatePreciseResolve: "precise_resolve",
	StateAct:            "act",
	StateVerify:         "verify",
	StateDone:           "done",
	StateRetry:          "retry",
	StateEscalate:       "escalate",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the session stops in this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateEscalate
}
