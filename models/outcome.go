package models

// Outcome is one of the three possible results of a match.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

// OutcomeCount is the number of valid outcomes per match.
const OutcomeCount = 3

// AllOutcomes returns the outcomes in canonical order.
func AllOutcomes() [OutcomeCount]Outcome {
	return [OutcomeCount]Outcome{OutcomeHome, OutcomeAway, OutcomeDraw}
}

// IsValid reports whether o is one of the three known outcomes.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeHome, OutcomeAway, OutcomeDraw:
		return true
	}
	return false
}

func (o Outcome) String() string {
	return string(o)
}

// OutcomeFromRoll reduces a uniformly random value to an outcome. Uniformity
// is preserved because the roll space is assumed much larger than three.
func OutcomeFromRoll(roll uint64) Outcome {
	switch roll % OutcomeCount {
	case 0:
		return OutcomeHome
	case 1:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}
