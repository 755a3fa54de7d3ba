package expedition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPeak(t *testing.T, name string, elevation int, d Difficulty) Peak {
	t.Helper()
	p, err := NewPeak(name, elevation, d)
	require.NoError(t, err)
	return p
}

func TestNewClimber_BlankName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		_, err := NewClimber(name, Natural)
		assert.ErrorIs(t, err, ErrBlankName, "name %q", name)
	}
}

func TestNewClimber_StartsRested(t *testing.T) {
	c, err := NewClimber("Ivan", OxygenAssisted)
	require.NoError(t, err)
	assert.Equal(t, MaxStamina, c.Stamina())
	assert.Empty(t, c.Conquered())
}

func TestClimb_CostByDifficulty(t *testing.T) {
	cases := []struct {
		difficulty Difficulty
		want       int
	}{
		{Moderate, 8},
		{Hard, 6},
		{Extreme, 4},
	}
	for _, tc := range cases {
		t.Run(string(tc.difficulty), func(t *testing.T) {
			c, err := NewClimber("Ivan", OxygenAssisted)
			require.NoError(t, err)
			c.Climb(mustPeak(t, "P", 1000, tc.difficulty))
			assert.Equal(t, tc.want, c.Stamina())
		})
	}
}

func TestClimb_ConqueredIsIdempotent(t *testing.T) {
	c, err := NewClimber("Ivan", OxygenAssisted)
	require.NoError(t, err)
	rila := mustPeak(t, "Rila", 2925, Moderate)

	c.Climb(rila)
	c.Climb(rila)

	assert.Equal(t, []string{"Rila"}, c.Conquered())
	assert.Equal(t, 6, c.Stamina())
}

func TestClimb_StaminaNeverNegative(t *testing.T) {
	c, err := NewClimber("Ivan", OxygenAssisted)
	require.NoError(t, err)
	everest := mustPeak(t, "Everest", 8848, Extreme)

	c.Climb(everest)
	c.Climb(everest)
	assert.Equal(t, 0, c.Stamina())
	c.Climb(everest)
	assert.Equal(t, 0, c.Stamina())
}

func TestRest_RatesAndClamp(t *testing.T) {
	hard := mustPeak(t, "K2", 8611, Hard)

	natural, err := NewClimber("Anna", Natural)
	require.NoError(t, err)
	natural.Climb(hard)
	natural.Climb(hard)
	require.Equal(t, 2, natural.Stamina())
	natural.Rest(1)
	assert.Equal(t, 4, natural.Stamina())
	natural.Rest(100)
	assert.Equal(t, MaxStamina, natural.Stamina())

	oxygen, err := NewClimber("Ivan", OxygenAssisted)
	require.NoError(t, err)
	oxygen.Climb(hard)
	oxygen.Rest(3)
	assert.Equal(t, 9, oxygen.Stamina())
	oxygen.Rest(0)
	oxygen.Rest(-5)
	assert.Equal(t, 9, oxygen.Stamina())

	for _, days := range []int{math.MaxInt, 1 << 62, math.MaxInt / 2, MaxStamina} {
		for _, kind := range []Kind{Natural, OxygenAssisted} {
			c, err := NewClimber("Long", kind)
			require.NoError(t, err)
			c.Climb(hard)
			c.Rest(days)
			assert.Equal(t, MaxStamina, c.Stamina(), "kind=%s days=%d", kind, days)
		}
	}
}

func TestStaminaStaysInRange(t *testing.T) {
	c, err := NewClimber("Ivan", OxygenAssisted)
	require.NoError(t, err)
	peaks := []Peak{
		mustPeak(t, "A", 1000, Extreme),
		mustPeak(t, "B", 2000, Hard),
		mustPeak(t, "C", 3000, Moderate),
	}
	restDays := []int{0, 1, 2, 3, 6, math.MaxInt, 1 << 62, math.MaxInt - 1, -1}
	for i := range 200 {
		if i%3 == 0 {
			c.Rest(restDays[i%len(restDays)])
		} else {
			c.Climb(peaks[i%len(peaks)])
		}
		require.GreaterOrEqual(t, c.Stamina(), MinStamina)
		require.LessOrEqual(t, c.Stamina(), MaxStamina)
	}
}

func TestKind_Rules(t *testing.T) {
	assert.False(t, Natural.CanAttempt(Extreme))
	assert.True(t, Natural.CanAttempt(Hard))
	assert.True(t, OxygenAssisted.CanAttempt(Extreme))
	assert.Equal(t, OxygenAssisted, KindFor(true))
	assert.Equal(t, Natural, KindFor(false))
	assert.Equal(t, "NaturalClimber", Natural.Label())
}

func TestParseDifficulty(t *testing.T) {
	d, ok := ParseDifficulty("Hard")
	assert.True(t, ok)
	assert.Equal(t, Hard, d)

	for _, s := range []string{"Easy", "extreme", "", "HARD"} {
		_, ok := ParseDifficulty(s)
		assert.False(t, ok, s)
	}
}

func TestBaseCamp_Idempotent(t *testing.T) {
	b := NewBaseCamp()
	b.Arrive("Ivan")
	b.Arrive("Anna")
	b.Arrive("Ivan")
	assert.Equal(t, []string{"Ivan", "Anna"}, b.Residents())

	b.Leave("Ghost")
	b.Leave("Ivan")
	b.Leave("Ivan")
	assert.False(t, b.IsResident("Ivan"))
	assert.Equal(t, []string{"Anna"}, b.Residents())
}

func TestPeakRegistry_Duplicate(t *testing.T) {
	r := NewPeakRegistry()
	require.NoError(t, r.Add(mustPeak(t, "Rila", 2925, Moderate)))
	err := r.Add(mustPeak(t, "Rila", 100, Hard))
	assert.ErrorIs(t, err, ErrAlreadyExists)

	p, ok := r.Get("Rila")
	require.True(t, ok)
	assert.Equal(t, 2925, p.Elevation())

	_, ok = r.Get("Pirin")
	assert.False(t, ok)
}
