package expedition

// Outcome tags the result of a controller operation.
type Outcome string

const (
	OutcomePeakRegistered    Outcome = "PeakRegistered"
	OutcomeAlreadyExists     Outcome = "AlreadyExists"
	OutcomeInvalidDifficulty Outcome = "InvalidDifficulty"
	OutcomeClimberArrived    Outcome = "ClimberArrived"
	OutcomeDuplicateClimber  Outcome = "DuplicateClimber"
	OutcomeClimberNotFound   Outcome = "ClimberNotFound"
	OutcomePeakNotFound      Outcome = "PeakNotFound"
	OutcomeNotAtCamp         Outcome = "NotAtCamp"
	OutcomeIneligible        Outcome = "IneligibleForDifficulty"
	OutcomeConquered         Outcome = "Conquered"
	OutcomeStranded          Outcome = "Stranded"
	OutcomeRecovered         Outcome = "Recovered"
	OutcomeNoRecoveryNeeded  Outcome = "NoRecoveryNeeded"
	OutcomeCampEmpty         Outcome = "CampEmpty"
	OutcomeCampReport        Outcome = "CampReport"
	OutcomeStatistics        Outcome = "Statistics"
	OutcomeClimberFound      Outcome = "ClimberFound"
)

// Failed reports whether the outcome is a rejected command. Stranded is a
// completed attempt, not a failure.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeAlreadyExists, OutcomeInvalidDifficulty, OutcomeDuplicateClimber,
		OutcomeClimberNotFound, OutcomePeakNotFound, OutcomeNotAtCamp, OutcomeIneligible:
		return true
	}
	return false
}

// Climber status values reported in views.
const (
	StatusAtCamp   = "at_camp"
	StatusStranded = "stranded"
)

type PeakView struct {
	Name       string     `json:"name"`
	Elevation  int        `json:"elevation"`
	Difficulty Difficulty `json:"difficulty"`
}

type ClimberView struct {
	Name           string `json:"name"`
	Kind           Kind   `json:"kind"`
	Stamina        int    `json:"stamina"`
	ConqueredCount int    `json:"conquered_count"`
	Status         string `json:"status"`
}

// Standing is one climber's entry in the overall statistics.
type Standing struct {
	ClimberView
	Peaks []PeakView `json:"peaks"`
}

// Result is what every controller operation returns.
type Result struct {
	Outcome   Outcome       `json:"outcome"`
	Message   string        `json:"message"`
	Peak      *PeakView     `json:"peak,omitempty"`
	Climber   *ClimberView  `json:"climber,omitempty"`
	Residents []ClimberView `json:"residents,omitempty"`
	Standings []Standing    `json:"standings,omitempty"`
}

func peakView(p Peak) PeakView {
	return PeakView{Name: p.Name(), Elevation: p.Elevation(), Difficulty: p.Difficulty()}
}
