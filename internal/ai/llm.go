package ai

import (
	"context"
	"fmt"
	"strings"
)

// LLMAdvisor asks a chat-completions model to pick a worker and expects a
// JSON object back.
type LLMAdvisor struct {
	Assistant Assistant
}

const advisorySystemPrompt = `You are a dispatch coordinator for a landscaping and grounds-maintenance company.
Pick the best worker for the job and one alternative. Consider skills, travel distance,
current workload, rating and regional expertise. Reply with JSON only:
{"worker_id": "...", "rationale": "...", "alternative_worker_id": "...", "risk_factors": ["..."]}`

func (l LLMAdvisor) Recommend(ctx context.Context, req AdvisoryRequest) (Advisory, error) {
	if l.Assistant == nil {
		return Advisory{}, fmt.Errorf("llm advisor has no assistant")
	}
	history := []ChatMessage{{Role: "system", Content: advisorySystemPrompt}}
	answer, err := l.Assistant.Ask(ctx, BuildAdvisoryPrompt(req), history)
	if err != nil {
		return Advisory{}, err
	}
	adv, err := ParseAdvisoryAnswer(answer)
	if err != nil {
		return Advisory{}, err
	}
	adv.Source = "llm"
	return adv, nil
}

func BuildAdvisoryPrompt(req AdvisoryRequest) string {
	var sb strings.Builder
	s := req.Site
	fmt.Fprintf(&sb, "Job site %s at %s (region: %s).\n", s.ID, s.Address, s.Region)
	fmt.Fprintf(&sb, "Location: %.5f, %.5f. Difficulty: %.2f. Estimated duration: %s.\n",
		s.Location.Lat, s.Location.Lng, s.Difficulty, s.EstimatedDuration)
	fmt.Fprintf(&sb, "Required skills: %s.\n", joinOrNone(s.PreferredSkills))
	fmt.Fprintf(&sb, "Property: %.0f sq ft, %s terrain, %s surface.\n",
		s.Property.SizeSqFt, orUnknown(s.Property.Terrain), orUnknown(s.Property.GrassType))
	if len(s.RegionalFactors) > 0 {
		fmt.Fprintf(&sb, "Regional factors: %s.\n", strings.Join(s.RegionalFactors, ", "))
	}
	if s.History.AvgCompletionMinutes > 0 {
		fmt.Fprintf(&sb, "History: avg completion %.0f min, cost overrun %.0f%%, avg customer rating %.1f.\n",
			s.History.AvgCompletionMinutes, s.History.CostOverrunRatio*100, s.History.AvgCustomerRating)
	}

	f := req.Facts
	if f.Regional.Region != "" {
		fmt.Fprintf(&sb, "Region facts: %s soil, %s climate, common weeds: %s.\n",
			f.Regional.SoilType, f.Regional.ClimateZone, joinOrNone(f.Regional.CommonWeeds))
	}
	if f.Season != "" {
		fmt.Fprintf(&sb, "Season: %s (typical work: %s).\n", f.Season, joinOrNone(f.Activities))
	}
	for _, sf := range f.Skills {
		cert := ""
		if sf.CertificationRequired {
			cert = ", certification required"
		}
		fmt.Fprintf(&sb, "Skill %s: difficulty %.2f%s.\n", sf.Skill, sf.Difficulty, cert)
	}

	sb.WriteString("\nAvailable workers:\n")
	for _, w := range req.Workers {
		fmt.Fprintf(&sb, "- %s (%s): skills [%s], rating %.1f, $%.2f/h, %d active jobs, location %.5f, %.5f",
			w.ID, w.Name, strings.Join(w.Skills, ", "), w.Rating, w.HourlyRate,
			len(w.ActiveAssignments), w.Location.Lat, w.Location.Lng)
		if len(w.Performance.RegionalExpertise) > 0 {
			fmt.Fprintf(&sb, ", regions [%s]", strings.Join(w.Performance.RegionalExpertise, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ParseAdvisoryAnswer extracts the first JSON object from a model answer,
// tolerating surrounding prose or code fences.
func ParseAdvisoryAnswer(answer string) (Advisory, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return Advisory{}, fmt.Errorf("advisory answer has no JSON object")
	}
	return decodeAdvisory([]byte(answer[start : end+1]))
}

func joinOrNone(v []string) string {
	if len(v) == 0 {
		return "none"
	}
	return strings.Join(v, ", ")
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}
