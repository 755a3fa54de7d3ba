package expedition

// Difficulty is the closed set of peak difficulty levels.
type Difficulty string

const (
	Moderate Difficulty = "Moderate"
	Hard     Difficulty = "Hard"
	Extreme  Difficulty = "Extreme"
)

// staminaCost is the stamina deducted by one attempt, keyed by difficulty.
var staminaCost = map[Difficulty]int{
	Moderate: 2,
	Hard:     4,
	Extreme:  6,
}

// ParseDifficulty maps a literal onto a Difficulty. Matching is exact and
// case-sensitive.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(s)
	if _, ok := staminaCost[d]; !ok {
		return "", false
	}
	return d, true
}

// Cost returns the stamina an attempt on a peak of this difficulty consumes.
func (d Difficulty) Cost() int {
	return staminaCost[d]
}

func (d Difficulty) String() string {
	return string(d)
}
