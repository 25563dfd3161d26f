package geocode

import (
	"context"
	"errors"
	"strings"

	"github.com/greenroute/backend/internal/models"
)

var ErrNotFound = errors.New("geocode not found")

type Result struct {
	Location    models.Location
	DisplayName string
	Confidence  float64
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) (Result, error)
}

func BuildGeocodeQuery(country string, region string, address string) string {
	parts := []string{}
	for _, p := range []string{address, region, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ShouldGeocode reports whether a site needs coordinates resolved from its address.
func ShouldGeocode(site models.Site, force bool) bool {
	if strings.TrimSpace(site.Address) == "" {
		return false
	}
	if force {
		return true
	}
	return site.Location.Lat == 0 && site.Location.Lng == 0
}
