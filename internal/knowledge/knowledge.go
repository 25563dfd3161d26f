// Package knowledge serves static regional, seasonal and skill reference data
// used as ranking context and advisory prompt material. Lookups are
// case-insensitive; unknown keys return zero values.
package knowledge

import (
	"strings"
	"time"
)

type RegionalFacts struct {
	Region      string   `json:"region"`
	CommonWeeds []string `json:"common_weeds"`
	SoilType    string   `json:"soil_type"`
	ClimateZone string   `json:"climate_zone"`
}

type SkillFacts struct {
	Skill                 string  `json:"skill"`
	Difficulty            float64 `json:"difficulty"`
	CertificationRequired bool    `json:"certification_required"`
}

// Facts bundles the lookups relevant to one site.
type Facts struct {
	Regional   RegionalFacts `json:"regional"`
	Season     string        `json:"season"`
	Activities []string      `json:"activities"`
	Skills     []SkillFacts  `json:"skills"`
}

// Base is read-only after construction and safe for concurrent use.
type Base struct {
	regions map[string]RegionalFacts
	seasons map[string][]string
	skills  map[string]SkillFacts
}

func New() *Base {
	b := &Base{
		regions: map[string]RegionalFacts{},
		seasons: map[string][]string{},
		skills:  map[string]SkillFacts{},
	}
	for _, r := range defaultRegions {
		b.regions[normalizeKey(r.Region)] = r
	}
	for season, acts := range defaultSeasons {
		b.seasons[normalizeKey(season)] = acts
	}
	for _, s := range defaultSkills {
		b.skills[normalizeKey(s.Skill)] = s
	}
	return b
}

func (b *Base) RegionalFacts(region string) RegionalFacts {
	return b.regions[normalizeKey(region)]
}

func (b *Base) SeasonalActivities(season string) []string {
	acts := b.seasons[normalizeKey(season)]
	out := make([]string, len(acts))
	copy(out, acts)
	return out
}

func (b *Base) SkillFacts(skill string) SkillFacts {
	return b.skills[normalizeKey(skill)]
}

func (b *Base) Regions() []string {
	out := make([]string, 0, len(defaultRegions))
	for _, r := range defaultRegions {
		out = append(out, r.Region)
	}
	return out
}

// Lookup gathers facts for a region, the season of at, and a skill list.
// Skills without reference data are omitted.
func (b *Base) Lookup(region string, at time.Time, skills []string) Facts {
	season := SeasonFor(at)
	f := Facts{
		Regional:   b.RegionalFacts(region),
		Season:     season,
		Activities: b.SeasonalActivities(season),
	}
	for _, s := range skills {
		if sf := b.SkillFacts(s); sf.Skill != "" {
			f.Skills = append(f.Skills, sf)
		}
	}
	return f
}

// SeasonFor maps a date to a northern-hemisphere meteorological season.
func SeasonFor(t time.Time) string {
	switch t.Month() {
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	case time.September, time.October, time.November:
		return "fall"
	default:
		return "winter"
	}
}

func normalizeKey(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(v)
}
