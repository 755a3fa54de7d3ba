// Package expedition holds the mountaineering state machine: the peak and
// climber registries, base-camp residency and the controller operations that
// tie them together. Everything here is single-threaded; callers that share a
// Controller must serialize whole operations themselves.
package expedition

import (
	"cmp"
	"slices"
)

type Controller struct {
	peaks    *PeakRegistry
	climbers *ClimberRegistry
	camp     *BaseCamp
}

func NewController() *Controller {
	return &Controller{
		peaks:    NewPeakRegistry(),
		climbers: NewClimberRegistry(),
		camp:     NewBaseCamp(),
	}
}

// RegisterPeak adds a peak. The returned error is non-nil only for a blank
// name or a non-positive elevation.
func (c *Controller) RegisterPeak(name string, elevation int, difficulty string) (Result, error) {
	if _, exists := c.peaks.Get(name); exists {
		return Result{Outcome: OutcomeAlreadyExists, Message: msgPeakAlreadyExists(name)}, nil
	}

	level, ok := ParseDifficulty(difficulty)
	if !ok {
		return Result{Outcome: OutcomeInvalidDifficulty, Message: msgInvalidDifficulty(difficulty)}, nil
	}

	p, err := NewPeak(name, elevation, level)
	if err != nil {
		return Result{}, err
	}
	if err := c.peaks.Add(p); err != nil {
		return Result{}, err
	}

	v := peakView(p)
	return Result{Outcome: OutcomePeakRegistered, Message: msgPeakRegistered(name), Peak: &v}, nil
}

// RegisterClimber creates a climber and puts them at base camp.
func (c *Controller) RegisterClimber(name string, usesOxygen bool) (Result, error) {
	if _, exists := c.climbers.Get(name); exists {
		return Result{Outcome: OutcomeDuplicateClimber, Message: msgDuplicateClimber(name)}, nil
	}

	climber, err := NewClimber(name, KindFor(usesOxygen))
	if err != nil {
		return Result{}, err
	}
	if err := c.climbers.Add(climber); err != nil {
		return Result{}, err
	}
	c.camp.Arrive(name)

	v := c.view(climber)
	return Result{Outcome: OutcomeClimberArrived, Message: msgClimberArrived(name), Climber: &v}, nil
}

// AttemptPeak sends a resident climber up a peak. A climber left with no
// stamina does not come back to camp.
func (c *Controller) AttemptPeak(climberName, peakName string) Result {
	climber, ok := c.climbers.Get(climberName)
	if !ok {
		return Result{Outcome: OutcomeClimberNotFound, Message: msgClimberNotArrived(climberName)}
	}

	peak, ok := c.peaks.Get(peakName)
	if !ok {
		return Result{Outcome: OutcomePeakNotFound, Message: msgPeakNotFound(peakName)}
	}

	pv := peakView(peak)
	if !c.camp.IsResident(climberName) {
		return Result{Outcome: OutcomeNotAtCamp, Message: msgNotAtCamp(climberName, peakName), Peak: &pv}
	}

	if !climber.Kind().CanAttempt(peak.Difficulty()) {
		return Result{Outcome: OutcomeIneligible, Message: msgIneligible(climberName, peakName), Peak: &pv}
	}

	c.camp.Leave(climberName)
	climber.Climb(peak)

	if climber.Stamina() == MinStamina {
		v := c.view(climber)
		return Result{Outcome: OutcomeStranded, Message: msgStranded(climberName), Climber: &v, Peak: &pv}
	}

	c.camp.Arrive(climberName)
	v := c.view(climber)
	return Result{Outcome: OutcomeConquered, Message: msgConquered(climberName, peakName), Climber: &v, Peak: &pv}
}

// Recover rests a resident climber for the given number of days.
func (c *Controller) Recover(climberName string, days int) Result {
	climber, ok := c.climbers.Get(climberName)
	if !ok || !c.camp.IsResident(climberName) {
		return Result{Outcome: OutcomeClimberNotFound, Message: msgNotAtCampForRecovery(climberName)}
	}

	if climber.Stamina() == MaxStamina {
		v := c.view(climber)
		return Result{Outcome: OutcomeNoRecoveryNeeded, Message: msgNoRecoveryNeeded(climberName), Climber: &v}
	}

	climber.Rest(days)
	v := c.view(climber)
	return Result{Outcome: OutcomeRecovered, Message: msgRecovered(climberName, days), Climber: &v}
}

// CampReport lists the residents in residency order.
func (c *Controller) CampReport() Result {
	names := c.camp.Residents()
	if len(names) == 0 {
		return Result{Outcome: OutcomeCampEmpty, Message: msgCampEmpty}
	}

	residents := make([]ClimberView, 0, len(names))
	for _, name := range names {
		climber, ok := c.climbers.Get(name)
		if !ok {
			continue
		}
		residents = append(residents, c.view(climber))
	}
	return Result{Outcome: OutcomeCampReport, Message: RenderCampReport(residents), Residents: residents}
}

// OverallStatistics ranks every climber by conquered count, then name, and
// lists each climber's peaks from highest to lowest.
func (c *Controller) OverallStatistics() Result {
	climbers := c.climbers.All()
	slices.SortFunc(climbers, func(a, b *Climber) int {
		if n := cmp.Compare(b.ConqueredCount(), a.ConqueredCount()); n != 0 {
			return n
		}
		return cmp.Compare(a.Name(), b.Name())
	})

	standings := make([]Standing, 0, len(climbers))
	for _, climber := range climbers {
		peaks := make([]PeakView, 0, climber.ConqueredCount())
		for _, name := range climber.Conquered() {
			if p, ok := c.peaks.Get(name); ok {
				peaks = append(peaks, peakView(p))
			}
		}
		slices.SortFunc(peaks, func(a, b PeakView) int {
			if n := cmp.Compare(b.Elevation, a.Elevation); n != 0 {
				return n
			}
			return cmp.Compare(a.Name, b.Name)
		})
		standings = append(standings, Standing{ClimberView: c.view(climber), Peaks: peaks})
	}

	return Result{Outcome: OutcomeStatistics, Message: RenderStatistics(standings), Standings: standings}
}

// Climber returns a read-only view of one climber.
func (c *Controller) Climber(name string) Result {
	climber, ok := c.climbers.Get(name)
	if !ok {
		return Result{Outcome: OutcomeClimberNotFound, Message: msgClimberNotArrived(name)}
	}
	v := c.view(climber)
	return Result{Outcome: OutcomeClimberFound, Message: msgClimberFound(v), Climber: &v}
}

// Peaks lists the registered peaks in registration order.
func (c *Controller) Peaks() []PeakView {
	all := c.peaks.All()
	out := make([]PeakView, 0, len(all))
	for _, p := range all {
		out = append(out, peakView(p))
	}
	return out
}

// Counts reports how many climbers are resident and how many are stranded.
func (c *Controller) Counts() (resident, stranded int) {
	resident = c.camp.Len()
	return resident, len(c.climbers.order) - resident
}

func (c *Controller) view(climber *Climber) ClimberView {
	status := StatusAtCamp
	if !c.camp.IsResident(climber.Name()) {
		status = StatusStranded
	}
	return ClimberView{
		Name:           climber.Name(),
		Kind:           climber.Kind(),
		Stamina:        climber.Stamina(),
		ConqueredCount: climber.ConqueredCount(),
		Status:         status,
	}
}
