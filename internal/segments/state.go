package segments

import "github.com/google/uuid"

// PanelState is the explicit view state of the admin filter panel: the
// current ad-hoc filters and the active saved segment. The two are mutually
// exclusive by construction — every transition below is a total function
// that returns a new state upholding the invariant, instead of side effects
// scattered across handlers.
type PanelState struct {
	Filters         UserFilters `json:"filters"`
	ActiveSegmentID *uuid.UUID  `json:"active_segment_id,omitempty"`
}

// WithFilters sets ad-hoc filters and clears any active segment.
func (s PanelState) WithFilters(f UserFilters) PanelState {
	return PanelState{Filters: f}
}

// WithSegment activates a saved segment and clears ad-hoc filters.
func (s PanelState) WithSegment(id uuid.UUID) PanelState {
	return PanelState{ActiveSegmentID: &id}
}

// Reset clears both filters and the active segment.
func (s PanelState) Reset() PanelState {
	return PanelState{}
}

// EffectiveCriteria resolves the state to a single FilterCriteria. When a
// segment is active its criteria govern; otherwise the ad-hoc filters are
// converted. lookup returns the stored criteria for a segment ID; a failed
// lookup yields the identity filter (stale segment IDs must not exclude
// anyone).
func (s PanelState) EffectiveCriteria(lookup func(uuid.UUID) (FilterCriteria, bool)) FilterCriteria {
	if s.ActiveSegmentID != nil {
		if fc, ok := lookup(*s.ActiveSegmentID); ok {
			return fc
		}
		return FilterCriteria{Conjunction: ConjunctionAnd}
	}
	return ToFilterCriteria(s.Filters)
}
