package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenroute/backend/internal/apperr"
	"github.com/greenroute/backend/internal/db"
	"github.com/greenroute/backend/internal/events"
	"github.com/greenroute/backend/internal/geocode"
	"github.com/greenroute/backend/internal/models"
)

type SiteInput struct {
	Address           string
	Region            string
	Location          *models.Location
	Difficulty        float64
	PreferredSkills   []string
	EstimatedDuration time.Duration
	Property          models.PropertyDetails
	RegionalFactors   []string
}

type SiteService struct {
	Store    *db.MemStore
	Geocoder geocode.Geocoder
	Country  string
	Events   events.Emitter
	Logger   zerolog.Logger
	Now      func() time.Time
}

// CreateSite registers an open site. Sites without coordinates are geocoded
// from their address; the geocoder is called outside the store lock.
func (s *SiteService) CreateSite(ctx context.Context, in SiteInput) (models.Site, error) {
	if strings.TrimSpace(in.Address) == "" {
		return models.Site{}, apperr.Validation("address is required")
	}
	if in.Difficulty < 0 || in.Difficulty > 1 || math.IsNaN(in.Difficulty) {
		return models.Site{}, apperr.Validation("difficulty must be between 0 and 1")
	}

	site := models.Site{
		ID:                uuid.NewString(),
		Address:           strings.TrimSpace(in.Address),
		Region:            strings.TrimSpace(in.Region),
		Difficulty:        in.Difficulty,
		Status:            models.SiteOpen,
		PreferredSkills:   uniqueSkills(in.PreferredSkills),
		EstimatedDuration: in.EstimatedDuration,
		Property:          in.Property,
		RegionalFactors:   in.RegionalFactors,
		CreatedAt:         s.now(),
	}
	if in.Location != nil {
		if !validLocation(*in.Location) {
			return models.Site{}, apperr.Validation("location is out of range")
		}
		site.Location = *in.Location
	}

	if geocode.ShouldGeocode(site, false) {
		if s.Geocoder == nil {
			return models.Site{}, apperr.Validation("site location is required")
		}
		res, err := s.Geocoder.Geocode(ctx, geocode.BuildGeocodeQuery(s.Country, "", site.Address))
		if err != nil {
			s.Logger.Warn().Err(err).Str("address", site.Address).Msg("geocode failed")
			return models.Site{}, apperr.Validation("site location could not be resolved from address")
		}
		site.Location = res.Location
	}

	if err := s.Store.WithTx(ctx, func(tx *db.Tx) error {
		tx.PutSite(site)
		return nil
	}); err != nil {
		return models.Site{}, err
	}
	s.Events.Emit(ctx, events.SiteCreated, site.ID, map[string]any{
		"address": site.Address,
		"region":  site.Region,
	})
	return site, nil
}

func validLocation(l models.Location) bool {
	return !math.IsNaN(l.Lat) && !math.IsNaN(l.Lng) &&
		l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

func (s *SiteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
