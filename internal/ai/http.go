package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPAdvisor calls an external recommender service at BaseURL/recommend.
type HTTPAdvisor struct {
	BaseURL string
	Client  *http.Client
}

type recommendWorker struct {
	ID                string   `json:"id"`
	Skills            []string `json:"skills"`
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	Rating            float64  `json:"rating"`
	HourlyRate        float64  `json:"hourly_rate"`
	ActiveAssignments int      `json:"active_assignments"`
}

type recommendRequest struct {
	SiteID          string            `json:"site_id"`
	Address         string            `json:"address"`
	Region          string            `json:"region"`
	Lat             float64           `json:"lat"`
	Lng             float64           `json:"lng"`
	Difficulty      float64           `json:"difficulty"`
	PreferredSkills []string          `json:"preferred_skills"`
	Workers         []recommendWorker `json:"workers"`
	Facts           any               `json:"facts"`
}

type recommendResponse struct {
	WorkerID            string   `json:"worker_id"`
	Rationale           string   `json:"rationale"`
	AlternativeWorkerID string   `json:"alternative_worker_id"`
	RiskFactors         []string `json:"risk_factors"`
}

func (h HTTPAdvisor) Recommend(ctx context.Context, req AdvisoryRequest) (Advisory, error) {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 15 * time.Second}
	}

	payload := recommendRequest{
		SiteID:          req.Site.ID,
		Address:         req.Site.Address,
		Region:          req.Site.Region,
		Lat:             req.Site.Location.Lat,
		Lng:             req.Site.Location.Lng,
		Difficulty:      req.Site.Difficulty,
		PreferredSkills: req.Site.PreferredSkills,
		Facts:           req.Facts,
	}
	for _, w := range req.Workers {
		payload.Workers = append(payload.Workers, recommendWorker{
			ID:                w.ID,
			Skills:            w.Skills,
			Lat:               w.Location.Lat,
			Lng:               w.Location.Lng,
			Rating:            w.Rating,
			HourlyRate:        w.HourlyRate,
			ActiveAssignments: len(w.ActiveAssignments),
		})
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Advisory{}, err
	}

	url := strings.TrimRight(h.BaseURL, "/") + "/recommend"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Advisory{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(httpReq)
	if err != nil {
		return Advisory{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Advisory{}, fmt.Errorf("advisory service error: %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Advisory{}, err
	}
	adv, err := decodeAdvisory(raw)
	if err != nil {
		return Advisory{}, err
	}
	adv.Source = "http"
	return adv, nil
}
