package seed

import (
	"context"
	"time"

	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/models"
)

type Dataset struct {
	Workers   []models.Worker
	Sites     []models.Site
	Customers []models.Customer
}

type Summary struct {
	Workers   int `json:"workers"`
	Sites     int `json:"sites"`
	Customers int `json:"customers"`
}

// Load upserts the dataset in one transaction. Existing records with the same
// id are replaced; assignments, tickets and invoices are left alone.
func Load(ctx context.Context, store *db.MemStore, ds Dataset, now time.Time) (Summary, error) {
	err := store.WithTx(ctx, func(tx *db.Tx) error {
		for _, w := range ds.Workers {
			if prev, ok := tx.Worker(w.ID); ok {
				w.ActiveAssignments = prev.ActiveAssignments
			}
			w.UpdatedAt = now
			tx.PutWorker(w)
		}
		for _, s := range ds.Sites {
			if prev, ok := tx.Site(s.ID); ok {
				s.Status = prev.Status
			}
			if s.Status == "" {
				s.Status = models.SiteOpen
			}
			if s.CreatedAt.IsZero() {
				s.CreatedAt = now
			}
			tx.PutSite(s)
		}
		for _, c := range ds.Customers {
			tx.PutCustomer(c)
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return Summary{Workers: len(ds.Workers), Sites: len(ds.Sites), Customers: len(ds.Customers)}, nil
}

// Demo returns a small fixed dataset around Chicago and Denver.
func Demo() Dataset {
	chicago := []string{"midwest"}
	return Dataset{
		Workers: []models.Worker{
			{
				ID:         "w-ana",
				Name:       "Ana Morales",
				Active:     true,
				Skills:     []string{"Mowing", "Edging", "Irrigation"},
				Location:   models.Location{Lat: 41.8827, Lng: -87.6233},
				Rating:     4.8,
				HourlyRate: 32,
				Performance: models.PerformanceMetrics{
					Efficiency:           0.92,
					QualityConsistency:   0.9,
					CustomerSatisfaction: 0.95,
					RegionalExpertise:    chicago,
				},
			},
			{
				ID:         "w-ben",
				Name:       "Ben Okafor",
				Active:     true,
				Skills:     []string{"Pest Control", "Fertilization", "Aeration"},
				Location:   models.Location{Lat: 41.9484, Lng: -87.6553},
				Rating:     4.5,
				HourlyRate: 38,
				Performance: models.PerformanceMetrics{
					Efficiency:           0.85,
					QualityConsistency:   0.88,
					CustomerSatisfaction: 0.9,
					SpecializationBonus:  map[string]float64{"pest_control": 0.1},
					RegionalExpertise:    chicago,
				},
			},
			{
				ID:         "w-cora",
				Name:       "Cora Lindqvist",
				Active:     true,
				Skills:     []string{"Tree Care", "Trimming", "Landscaping"},
				Location:   models.Location{Lat: 41.7943, Lng: -87.5907},
				Rating:     4.2,
				HourlyRate: 35,
			},
			{
				ID:          "w-dev",
				Name:        "Dev Patel",
				Active:      true,
				Skills:      []string{"Snow Removal", "Mowing", "Landscaping"},
				Location:    models.Location{Lat: 39.7392, Lng: -104.9903},
				Rating:      4.6,
				HourlyRate:  30,
				Performance: models.PerformanceMetrics{RegionalExpertise: []string{"mountain"}},
			},
			{
				ID:         "w-eli",
				Name:       "Eli Brooks",
				Skills:     []string{"Mowing"},
				Location:   models.Location{Lat: 41.88, Lng: -87.63},
				Rating:     3.9,
				HourlyRate: 24,
			},
		},
		Sites: []models.Site{
			{
				ID:                "s-lincoln-park",
				Address:           "2045 N Lincoln Park W, Chicago, IL",
				Region:            "midwest",
				Location:          models.Location{Lat: 41.9206, Lng: -87.6365},
				Difficulty:        0.4,
				PreferredSkills:   []string{"Mowing", "Edging"},
				EstimatedDuration: 2 * time.Hour,
				Property:          models.PropertyDetails{SizeSqFt: 12000, Terrain: "flat", GrassType: "kentucky bluegrass"},
			},
			{
				ID:                "s-hyde-park",
				Address:           "5700 S Lake Shore Dr, Chicago, IL",
				Region:            "midwest",
				Location:          models.Location{Lat: 41.7906, Lng: -87.5830},
				Difficulty:        0.7,
				PreferredSkills:   []string{"Pest Control", "Tree Care"},
				EstimatedDuration: 4 * time.Hour,
				Property:          models.PropertyDetails{SizeSqFt: 30000, Terrain: "sloped", GrassType: "fescue"},
				RegionalFactors:   []string{"lake-effect humidity"},
				History:           models.SiteHistory{AvgCompletionMinutes: 230, CostOverrunRatio: 0.12, AvgCustomerRating: 4.1},
			},
			{
				ID:                "s-wash-park",
				Address:           "701 S Franklin St, Denver, CO",
				Region:            "mountain",
				Location:          models.Location{Lat: 39.7000, Lng: -104.9700},
				Difficulty:        0.5,
				PreferredSkills:   []string{"Snow Removal"},
				EstimatedDuration: 90 * time.Minute,
				Property:          models.PropertyDetails{SizeSqFt: 8000, Terrain: "flat", GrassType: "paved"},
			},
		},
		Customers: []models.Customer{
			{ID: "c-maple", Name: "Maple Court HOA", Email: "board@maplecourt.example", Phone: "+1-312-555-0140", Address: "2045 N Lincoln Park W, Chicago, IL", Region: "midwest"},
			{ID: "c-quad", Name: "Quad Facilities", Email: "grounds@quad.example", Phone: "+1-773-555-0199", Address: "5700 S Lake Shore Dr, Chicago, IL", Region: "midwest"},
			{ID: "c-washpark", Name: "Wash Park Townhomes", Email: "office@washpark.example", Phone: "+1-303-555-0112", Address: "701 S Franklin St, Denver, CO", Region: "mountain"},
		},
	}
}
