package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/greenroute/backend/internal/ai"
	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/knowledge"
	"github.com/greenroute/backend/internal/metrics"
	"github.com/greenroute/backend/internal/models"
)

const (
	AdvisoryOK          = "ok"
	AdvisoryUnavailable = "unavailable"
	AdvisoryDisabled    = "disabled"
	AdvisorySkipped     = "skipped"
)

type SiteSnapshotter interface {
	Snapshot(ctx context.Context, siteID string) (models.Site, []models.Worker, error)
}

type KnowledgeSource interface {
	Lookup(region string, at time.Time, skills []string) knowledge.Facts
}

type RankedWorker struct {
	Rank     int            `json:"rank"`
	WorkerID string         `json:"worker_id"`
	Name     string         `json:"name"`
	Score    ScoreBreakdown `json:"score"`
}

// Recommendation is a ranked candidate list. AdvisoryInPool is false when the
// advisory names a worker outside the ranked pool.
type Recommendation struct {
	SiteID         string          `json:"site_id"`
	Ranked         []RankedWorker  `json:"ranked"`
	Context        knowledge.Facts `json:"context"`
	Advisory       *ai.Advisory    `json:"advisory,omitempty"`
	AdvisoryStatus string          `json:"advisory_status"`
	AdvisoryInPool bool            `json:"advisory_in_pool"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

type RankOptions struct {
	Limit        int
	SkipAdvisory bool
}

// Ranker produces deterministic worker rankings for a site and optionally
// annotates them with an external advisory. The advisory never reorders the
// ranking and its failure never fails the call.
type Ranker struct {
	Store           SiteSnapshotter
	Knowledge       KnowledgeSource
	Advisor         ai.Advisor
	AdvisoryTimeout time.Duration
	AdvisoryRetries int
	AdvisoryBackoff time.Duration
	Logger          zerolog.Logger
	Now             func() time.Time
}

func (r *Ranker) Rank(ctx context.Context, siteID string, opts RankOptions) (Recommendation, error) {
	site, pool, err := r.Store.Snapshot(ctx, siteID)
	if err != nil {
		return Recommendation{}, err
	}
	eligible := activeWorkers(pool)

	start := time.Now()
	ranked := RankWorkers(site, eligible)
	metrics.RankingDuration.Observe(time.Since(start).Seconds())

	rec := Recommendation{
		SiteID:         site.ID,
		Ranked:         ranked,
		AdvisoryStatus: AdvisoryDisabled,
		GeneratedAt:    r.now(),
	}
	if r.Knowledge != nil {
		rec.Context = r.Knowledge.Lookup(site.Region, rec.GeneratedAt, site.PreferredSkills)
	}

	switch {
	case r.Advisor == nil:
	case opts.SkipAdvisory || len(eligible) == 0:
		rec.AdvisoryStatus = AdvisorySkipped
	default:
		adv, err := r.advise(ctx, ai.AdvisoryRequest{Site: site, Workers: eligible, Facts: rec.Context})
		if err != nil {
			rec.AdvisoryStatus = AdvisoryUnavailable
			r.Logger.Warn().Err(err).Str("site_id", site.ID).Str("code", string(apperr.CodeAdvisoryUnavailable)).Msg("ranking without advisory annotation")
		} else {
			rec.Advisory = &adv
			rec.AdvisoryStatus = AdvisoryOK
			rec.AdvisoryInPool = containsWorker(ranked, adv.WorkerID)
		}
	}
	metrics.RankingsComputed.WithLabelValues(rec.AdvisoryStatus).Inc()

	if opts.Limit > 0 && len(rec.Ranked) > opts.Limit {
		rec.Ranked = rec.Ranked[:opts.Limit]
	}
	return rec, nil
}

// RankWorkers scores every worker and sorts by composite descending. The sort
// is stable, so equal scores keep pool order.
func RankWorkers(site models.Site, workers []models.Worker) []RankedWorker {
	out := make([]RankedWorker, 0, len(workers))
	for _, w := range workers {
		out = append(out, RankedWorker{
			WorkerID: w.ID,
			Name:     w.Name,
			Score:    ScoreWorker(w, site),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score.Composite > out[j].Score.Composite
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func (r *Ranker) advise(ctx context.Context, req ai.AdvisoryRequest) (ai.Advisory, error) {
	timeout := r.AdvisoryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pause := r.AdvisoryBackoff
	if pause <= 0 {
		pause = 100 * time.Millisecond
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(pause), uint64(max(r.AdvisoryRetries, 0))),
		ctx,
	)

	attempt := 0
	adv, err := backoff.RetryWithData(func() (ai.Advisory, error) {
		attempt++
		if err := ctx.Err(); err != nil {
			return ai.Advisory{}, backoff.Permanent(err)
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		adv, err := r.Advisor.Recommend(callCtx, req)
		if err != nil {
			outcome := "error"
			if errors.Is(err, context.DeadlineExceeded) {
				outcome = "timeout"
			}
			metrics.AdvisoryCalls.WithLabelValues(outcome).Inc()
			r.Logger.Debug().Err(err).Int("attempt", attempt).Str("site_id", req.Site.ID).Msg("advisory attempt failed")
			return ai.Advisory{}, err
		}
		metrics.AdvisoryCalls.WithLabelValues("ok").Inc()
		return adv, nil
	}, policy)
	if err != nil {
		return ai.Advisory{}, apperr.AdvisoryUnavailable(err)
	}
	return adv, nil
}

func (r *Ranker) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func activeWorkers(workers []models.Worker) []models.Worker {
	return filterWorkers(workers, func(w models.Worker) bool { return w.Active })
}

func filterWorkers(workers []models.Worker, keep func(models.Worker) bool) []models.Worker {
	out := make([]models.Worker, 0, len(workers))
	for _, w := range workers {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func containsWorker(ranked []RankedWorker, id string) bool {
	for _, r := range ranked {
		if r.WorkerID == id {
			return true
		}
	}
	return false
}
