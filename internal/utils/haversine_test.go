package utils

import (
	"math"
	"testing"

	"github.com/greenroute/backend/internal/models"
)

func TestHaversineKmSamePoint(t *testing.T) {
	if d := HaversineKm(40.7128, -74.0060, 40.7128, -74.0060); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineKmKnownDistance(t *testing.T) {
	// New York to Los Angeles, ~3936 km on a 6371 km sphere.
	d := HaversineKm(40.7128, -74.0060, 34.0522, -118.2437)
	if math.Abs(d-3935.7) > 5 {
		t.Fatalf("unexpected distance: %f", d)
	}
}

func TestHaversineKmOneDegreeLatitude(t *testing.T) {
	d := HaversineKm(0, 0, 1, 0)
	want := earthRadiusKm * math.Pi / 180
	if math.Abs(d-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, d)
	}
}

func TestHaversineKmSymmetric(t *testing.T) {
	a := HaversineKm(30.2672, -97.7431, 30.3072, -97.7559)
	b := HaversineKm(30.3072, -97.7559, 30.2672, -97.7431)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric distance, got %f and %f", a, b)
	}
}

func TestHaversineKmNaNPropagates(t *testing.T) {
	if d := HaversineKm(math.NaN(), 0, 1, 1); !math.IsNaN(d) {
		t.Fatalf("expected NaN, got %f", d)
	}
}

func TestDistanceKm(t *testing.T) {
	a := models.Location{Lat: 0, Lng: 0}
	b := models.Location{Lat: 0, Lng: 1}
	if math.Abs(DistanceKm(a, b)-HaversineKm(0, 0, 0, 1)) > 1e-12 {
		t.Fatalf("DistanceKm disagrees with HaversineKm")
	}
}
