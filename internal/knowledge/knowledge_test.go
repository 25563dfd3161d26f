package knowledge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionalFactsCaseInsensitive(t *testing.T) {
	b := New()
	f := b.RegionalFacts("  Pacific Northwest ")
	assert.Equal(t, "oceanic", f.ClimateZone)
	assert.Contains(t, f.CommonWeeds, "moss")
}

func TestUnknownKeysReturnEmpty(t *testing.T) {
	b := New()
	assert.Equal(t, RegionalFacts{}, b.RegionalFacts("atlantis"))
	assert.Empty(t, b.SeasonalActivities("monsoon"))
	assert.Equal(t, SkillFacts{}, b.SkillFacts("juggling"))
}

func TestSeasonalActivitiesReturnsCopy(t *testing.T) {
	b := New()
	acts := b.SeasonalActivities("summer")
	require.NotEmpty(t, acts)
	acts[0] = "changed"
	assert.NotEqual(t, "changed", b.SeasonalActivities("summer")[0])
}

func TestSkillFacts(t *testing.T) {
	b := New()
	f := b.SkillFacts("pest-control")
	assert.True(t, f.CertificationRequired)
	assert.InDelta(t, 0.7, f.Difficulty, 1e-9)
}

func TestSeasonFor(t *testing.T) {
	cases := map[time.Month]string{
		time.January:  "winter",
		time.April:    "spring",
		time.July:     "summer",
		time.October:  "fall",
		time.December: "winter",
	}
	for month, want := range cases {
		got := SeasonFor(time.Date(2024, month, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, want, got, month.String())
	}
}

func TestLookupSkipsUnknownSkills(t *testing.T) {
	b := New()
	f := b.Lookup("midwest", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), []string{"Mowing", "Juggling"})
	assert.Equal(t, "spring", f.Season)
	assert.Equal(t, "silt loam", f.Regional.SoilType)
	require.Len(t, f.Skills, 1)
	assert.Equal(t, "Mowing", f.Skills[0].Skill)
}
