package data

import "time"

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the full persisted state of an expedition.
type Snapshot struct {
	Version   int             `json:"version"`
	Peaks     []PeakRecord    `json:"peaks"`
	Climbers  []ClimberRecord `json:"climbers"`
	Residents []string        `json:"residents"`
	SavedAt   time.Time       `json:"saved_at"`
}

type PeakRecord struct {
	Name       string `json:"name" yaml:"name"`
	Elevation  int    `json:"elevation" yaml:"elevation"`
	Difficulty string `json:"difficulty" yaml:"difficulty"`
}

type ClimberRecord struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Stamina   int      `json:"stamina"`
	Conquered []string `json:"conquered"`
}

// AttemptRecord is one entry of the attempt journal.
type AttemptRecord struct {
	ID           string    `json:"id"`
	Climber      string    `json:"climber"`
	Peak         string    `json:"peak"`
	Outcome      string    `json:"outcome"`
	StaminaAfter int       `json:"stamina_after"`
	AttemptedAt  time.Time `json:"attempted_at"`
}

// ── Request bodies ──

type PeakRequest struct {
	Name       string `json:"name"`
	Elevation  int    `json:"elevation"`
	Difficulty string `json:"difficulty"`
}

type ClimberRequest struct {
	Name       string `json:"name" yaml:"name"`
	UsesOxygen bool   `json:"uses_oxygen" yaml:"uses_oxygen"`
}

type AttemptRequest struct {
	Climber string `json:"climber"`
	Peak    string `json:"peak"`
}

type RecoveryRequest struct {
	Climber string `json:"climber"`
	Days    int    `json:"days"`
}

type ExportResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
