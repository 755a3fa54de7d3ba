package expedition

// Kind distinguishes oxygen-assisted climbers from natural ones. It is a
// closed set; each value carries its own eligibility and recovery rules.
type Kind string

const (
	OxygenAssisted Kind = "oxygen"
	Natural        Kind = "natural"
)

var kindRecoveryPerDay = map[Kind]int{
	OxygenAssisted: 1,
	Natural:        2,
}

// KindFor returns the kind for a climber registered with or without oxygen.
func KindFor(usesOxygen bool) Kind {
	if usesOxygen {
		return OxygenAssisted
	}
	return Natural
}

// ParseKind validates a persisted kind value.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	if _, ok := kindRecoveryPerDay[k]; !ok {
		return "", false
	}
	return k, true
}

// RecoveryPerDay is the stamina regained for each day of rest.
func (k Kind) RecoveryPerDay() int {
	return kindRecoveryPerDay[k]
}

// CanAttempt reports whether climbers of this kind may attempt a peak of the
// given difficulty. Natural climbers cannot attempt Extreme peaks.
func (k Kind) CanAttempt(d Difficulty) bool {
	return !(k == Natural && d == Extreme)
}

// Label is the display name used in reports.
func (k Kind) Label() string {
	switch k {
	case OxygenAssisted:
		return "OxygenClimber"
	case Natural:
		return "NaturalClimber"
	default:
		return string(k)
	}
}

func (k Kind) UsesOxygen() bool {
	return k == OxygenAssisted
}
