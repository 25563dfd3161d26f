package ai

import (
	"context"

	"github.com/greenroute/backend/internal/knowledge"
	"github.com/greenroute/backend/internal/models"
)

type AdvisoryRequest struct {
	Site    models.Site     `json:"site"`
	Workers []models.Worker `json:"workers"`
	Facts   knowledge.Facts `json:"facts"`
}

// Advisory is a non-authoritative recommendation. WorkerID may reference a
// worker outside the current pool; callers decide whether to use it.
type Advisory struct {
	WorkerID            string   `json:"worker_id"`
	Rationale           string   `json:"rationale"`
	AlternativeWorkerID string   `json:"alternative_worker_id"`
	RiskFactors         []string `json:"risk_factors"`
	Source              string   `json:"source"`
}

type Advisor interface {
	Recommend(ctx context.Context, req AdvisoryRequest) (Advisory, error)
}
