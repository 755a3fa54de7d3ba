package expedition

import (
	"fmt"
	"strings"
)

func msgPeakRegistered(name string) string {
	return fmt.Sprintf("%s is allowed for international climbing. See details in the peak registry.", name)
}

func msgPeakAlreadyExists(name string) string {
	return fmt.Sprintf("%s is already added as a valid mountain destination.", name)
}

func msgInvalidDifficulty(level string) string {
	return fmt.Sprintf("%s peaks are not allowed for international climbers.", level)
}

func msgDuplicateClimber(name string) string {
	return fmt.Sprintf("%s is a participant in the climber registry and cannot be duplicated.", name)
}

func msgClimberArrived(name string) string {
	return fmt.Sprintf("%s has arrived at the BaseCamp and will wait for the best conditions.", name)
}

func msgClimberNotArrived(name string) string {
	return fmt.Sprintf("Climber - %s, has not arrived at the BaseCamp yet.", name)
}

func msgPeakNotFound(name string) string {
	return fmt.Sprintf("%s is not allowed for international climbing.", name)
}

func msgNotAtCamp(climber, peak string) string {
	return fmt.Sprintf("%s not found for gearing and instructions. The attack of %s will be postponed.", climber, peak)
}

func msgIneligible(climber, peak string) string {
	return fmt.Sprintf("%s does not cover the requirements for climbing %s.", climber, peak)
}

func msgStranded(climber string) string {
	return fmt.Sprintf("%s did not return to BaseCamp.", climber)
}

func msgConquered(climber, peak string) string {
	return fmt.Sprintf("%s successfully conquered %s and returned to BaseCamp.", climber, peak)
}

func msgNotAtCampForRecovery(climber string) string {
	return fmt.Sprintf("%s not found at the BaseCamp.", climber)
}

func msgNoRecoveryNeeded(climber string) string {
	return fmt.Sprintf("%s has no need of recovery.", climber)
}

func msgRecovered(climber string, days int) string {
	return fmt.Sprintf("%s has been recovering for %d days and is ready to attack the mountain.", climber, days)
}

func msgClimberFound(v ClimberView) string {
	return fmt.Sprintf("%s is %s with stamina %d.", v.Name, strings.ReplaceAll(v.Status, "_", " "), v.Stamina)
}

const msgCampEmpty = "BaseCamp is currently empty."

// RenderCampReport formats the residents as the plain-text camp report.
func RenderCampReport(residents []ClimberView) string {
	if len(residents) == 0 {
		return msgCampEmpty
	}
	var sb strings.Builder
	sb.WriteString("BaseCamp residents:")
	for _, r := range residents {
		fmt.Fprintf(&sb, "\nName: %s, Stamina: %d, Count of Conquered Peaks: %d", r.Name, r.Stamina, r.ConqueredCount)
	}
	return sb.String()
}

// RenderStatistics formats the standings as the plain-text overall report.
func RenderStatistics(standings []Standing) string {
	var sb strings.Builder
	sb.WriteString("***Highway-To-Peak***")
	for _, s := range standings {
		fmt.Fprintf(&sb, "\n%s - Name: %s, Stamina: %d", s.Kind.Label(), s.Name, s.Stamina)
		if s.ConqueredCount > 0 {
			fmt.Fprintf(&sb, "\nPeaks conquered: %d", s.ConqueredCount)
		} else {
			sb.WriteString("\nPeaks conquered: no peaks conquered")
		}
		for _, p := range s.Peaks {
			fmt.Fprintf(&sb, "\nPeak: %s, Elevation: %d, Difficulty: %s", p.Name, p.Elevation, p.Difficulty)
		}
	}
	return sb.String()
}
