package ai

import (
	"context"
	"fmt"

	"github.com/greenroute/backend/internal/utils"
)

// MockAdvisor picks deterministically from the pool by hashing the site id.
type MockAdvisor struct {
	ModelVersion string
}

func (m MockAdvisor) Recommend(ctx context.Context, req AdvisoryRequest) (Advisory, error) {
	if err := ctx.Err(); err != nil {
		return Advisory{}, err
	}
	if len(req.Workers) == 0 {
		return Advisory{}, fmt.Errorf("no workers to recommend from")
	}

	idx := utils.HashIndex(req.Site.ID, len(req.Workers))
	pick := req.Workers[idx]
	alt := ""
	if len(req.Workers) > 1 {
		alt = req.Workers[(idx+1)%len(req.Workers)].ID
	}

	var risks []string
	if req.Site.Difficulty >= 0.7 {
		risks = append(risks, "high site difficulty")
	}
	if len(pick.ActiveAssignments) >= 3 {
		risks = append(risks, "worker already carries a heavy load")
	}
	for _, s := range req.Facts.Skills {
		if s.CertificationRequired {
			risks = append(risks, fmt.Sprintf("%s requires certification", s.Skill))
		}
	}

	return Advisory{
		WorkerID:            pick.ID,
		Rationale:           fmt.Sprintf("Site %s auto-advisory (%s season, %s)", req.Site.ID, req.Facts.Season, m.ModelVersion),
		AlternativeWorkerID: alt,
		RiskFactors:         risks,
		Source:              "mock",
	}, nil
}
