package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/highway-to-peak/server/src/server/data"
	"github.com/highway-to-peak/server/src/server/expedition"
	"github.com/highway-to-peak/server/src/server/service"
	"github.com/highway-to-peak/server/src/server/store"
)

const roster = `
peaks:
  - name: K2
    elevation: 8611
    difficulty: Extreme
  - name: Mont Blanc
    elevation: 4808
    difficulty: Moderate
  - name: Eiger
    elevation: 3967
    difficulty: Brutal
  - name: K2
    elevation: 8611
    difficulty: Extreme
climbers:
  - name: Nirmal
    uses_oxygen: true
  - name: Reinhold
  - name: "  "
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(roster), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	require.Len(t, r.Peaks, 4)
	assert.Equal(t, data.PeakRecord{Name: "K2", Elevation: 8611, Difficulty: "Extreme"}, r.Peaks[0])
	require.Len(t, r.Climbers, 3)
	assert.True(t, r.Climbers[0].UsesOxygen)
	assert.False(t, r.Climbers[1].UsesOxygen)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "open seed file")
}

func TestDecode(t *testing.T) {
	r, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, r.Peaks)

	_, err = Decode(strings.NewReader("summits: []\n"))
	assert.ErrorContains(t, err, "decode seed")
}

func TestApply_SkipsRejected(t *testing.T) {
	ctx := context.Background()
	svc := service.New(store.NewMemoryStore(), nil)

	r, err := Decode(strings.NewReader(roster))
	require.NoError(t, err)

	applied, err := Apply(ctx, svc, r)
	require.NoError(t, err)
	assert.Equal(t, 4, applied)

	names := []string{}
	for _, p := range svc.Peaks() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"K2", "Mont Blanc"}, names)

	camp := svc.CampReport()
	require.Len(t, camp.Residents, 2)
	assert.Equal(t, "Nirmal", camp.Residents[0].Name)
	assert.Equal(t, "Reinhold", camp.Residents[1].Name)
}

type failingRegistrar struct{}

func (failingRegistrar) RegisterPeak(context.Context, string, int, string) (expedition.Result, error) {
	return expedition.Result{}, errors.New("disk full")
}

func (failingRegistrar) RegisterClimber(context.Context, string, bool) (expedition.Result, error) {
	return expedition.Result{}, errors.New("disk full")
}

func TestApply_PersistenceErrorAborts(t *testing.T) {
	r := &Roster{Peaks: []data.PeakRecord{{Name: "K2", Elevation: 8611, Difficulty: "Extreme"}}}
	_, err := Apply(context.Background(), failingRegistrar{}, r)
	assert.ErrorContains(t, err, "disk full")
}
