package service

import (
	"math"
	"strings"

	"github.com/greenroute/backend/internal/models"
	"github.com/greenroute/backend/internal/utils"
)

const (
	WeightSkill        = 0.4
	WeightDistance     = 0.3
	WeightAvailability = 0.2
	WeightHistorical   = 0.1

	// MaxTravelKm is where the distance score reaches zero.
	MaxTravelKm = 20.0
	MaxRating   = 5.0

	neutralSkillMatch = 0.5
)

type ScoreBreakdown struct {
	SkillMatch        float64 `json:"skill_match"`
	DistanceKm        float64 `json:"distance_km"`
	DistanceScore     float64 `json:"distance_score"`
	ActiveAssignments int     `json:"active_assignments"`
	AvailabilityScore float64 `json:"availability_score"`
	HistoricalScore   float64 `json:"historical_score"`
	Composite         float64 `json:"composite"`
}

// ScoreWorker computes the four sub-scores for a worker against a site and
// their weighted composite. Every score is in [0, 1]. An unresolvable
// distance is reported as -1 km and scores 0.
func ScoreWorker(w models.Worker, site models.Site) ScoreBreakdown {
	d := utils.DistanceKm(w.Location, site.Location)
	b := ScoreBreakdown{
		SkillMatch:        SkillMatch(w.Skills, site.PreferredSkills),
		DistanceKm:        d,
		DistanceScore:     DistanceScore(d),
		ActiveAssignments: len(w.ActiveAssignments),
		AvailabilityScore: AvailabilityScore(len(w.ActiveAssignments)),
		HistoricalScore:   HistoricalScore(w.Rating),
	}
	b.Composite = Composite(b.SkillMatch, b.DistanceScore, b.AvailabilityScore, b.HistoricalScore)
	if math.IsNaN(d) {
		b.DistanceKm = -1
	}
	return b
}

// SkillMatch is the fraction of preferred tags the worker holds. Sites with no
// preferred skills get a neutral 0.5.
func SkillMatch(workerSkills, preferred []string) float64 {
	wanted := uniqueSkills(preferred)
	if len(wanted) == 0 {
		return neutralSkillMatch
	}
	matched := 0
	for _, s := range wanted {
		if hasSkill(workerSkills, s) {
			matched++
		}
	}
	return float64(matched) / float64(len(wanted))
}

// DistanceScore decays linearly from 1 at 0 km to 0 at MaxTravelKm.
// NaN distances score 0.
func DistanceScore(km float64) float64 {
	if math.IsNaN(km) {
		return 0
	}
	return clamp01(1 - km/MaxTravelKm)
}

func AvailabilityScore(active int) float64 {
	switch {
	case active <= 0:
		return 1.0
	case active <= 2:
		return 0.7
	default:
		return 0.3
	}
}

func HistoricalScore(rating float64) float64 {
	if math.IsNaN(rating) {
		return 0
	}
	return clamp01(rating / MaxRating)
}

func Composite(skill, distance, availability, historical float64) float64 {
	return WeightSkill*skill +
		WeightDistance*distance +
		WeightAvailability*availability +
		WeightHistorical*historical
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func hasSkill(skills []string, target string) bool {
	for _, s := range skills {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}

func uniqueSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || hasSkill(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
