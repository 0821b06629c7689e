package state

// normalizeDeltas clamps the model's proposed counter changes to the
// range the outcome category permits. Success must lower resistance and
// improve the relationship. Failure may not lower resistance and may
// not improve the relationship. Alternative outcomes move each counter
// at most two points either way.
func normalizeDeltas(outcome string, resistanceChange, relationshipChange int) (int, int) {
	switch NormalizeOutcome(outcome) {
	case OutcomeSuccess:
		if resistanceChange > -1 {
			resistanceChange = -1
		}
		if relationshipChange < 1 {
			relationshipChange = 1
		}
	case OutcomeFailure:
		if resistanceChange < 0 {
			resistanceChange = 0
		}
		if relationshipChange > 0 {
			relationshipChange = 0
		}
	default:
		resistanceChange = clamp(resistanceChange, -2, 2)
		relationshipChange = clamp(relationshipChange, -2, 2)
	}
	return resistanceChange, relationshipChange
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
