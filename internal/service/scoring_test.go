package service

import (
	"math"
	"testing"

	"github.com/greenroute/backend/internal/models"
)

const eps = 1e-9

func TestSkillMatchPartialOverlap(t *testing.T) {
	got := SkillMatch([]string{"Mowing", "Edging"}, []string{"Mowing", "Edging", "Trimming"})
	if math.Abs(got-2.0/3.0) > eps {
		t.Fatalf("expected 2/3, got %f", got)
	}
}

func TestSkillMatchNoPreferredSkillsIsNeutral(t *testing.T) {
	if got := SkillMatch([]string{"Mowing"}, nil); got != 0.5 {
		t.Fatalf("expected 0.5, got %f", got)
	}
	if got := SkillMatch(nil, []string{}); got != 0.5 {
		t.Fatalf("expected 0.5, got %f", got)
	}
}

func TestSkillMatchBounds(t *testing.T) {
	cases := []struct {
		worker    []string
		preferred []string
		want      float64
	}{
		{nil, []string{"Mowing"}, 0},
		{[]string{"Mowing"}, []string{"Mowing"}, 1},
		{[]string{" mowing "}, []string{"Mowing"}, 1},
		{[]string{"Mowing", "Edging", "Trimming"}, []string{"Mowing"}, 1},
		{[]string{"Mowing"}, []string{"Mowing", "mowing", "Edging"}, 0.5},
	}
	for _, c := range cases {
		got := SkillMatch(c.worker, c.preferred)
		if math.Abs(got-c.want) > eps {
			t.Fatalf("SkillMatch(%v, %v) = %f, want %f", c.worker, c.preferred, got, c.want)
		}
		if got < 0 || got > 1 {
			t.Fatalf("SkillMatch out of range: %f", got)
		}
	}
}

func TestDistanceScore(t *testing.T) {
	cases := map[float64]float64{
		0:   1,
		5:   0.75,
		10:  0.5,
		20:  0,
		25:  0,
		400: 0,
	}
	for km, want := range cases {
		if got := DistanceScore(km); math.Abs(got-want) > eps {
			t.Fatalf("DistanceScore(%v) = %f, want %f", km, got, want)
		}
	}
	if got := DistanceScore(math.NaN()); got != 0 {
		t.Fatalf("expected NaN distance to score 0, got %f", got)
	}
}

func TestDistanceScoreMonotonic(t *testing.T) {
	prev := DistanceScore(0)
	for km := 0.5; km <= 30; km += 0.5 {
		cur := DistanceScore(km)
		if cur > prev {
			t.Fatalf("distance score increased at %v km: %f > %f", km, cur, prev)
		}
		if cur < 0 {
			t.Fatalf("distance score negative at %v km", km)
		}
		prev = cur
	}
}

func TestAvailabilityScoreTiers(t *testing.T) {
	cases := map[int]float64{0: 1.0, 1: 0.7, 2: 0.7, 3: 0.3, 10: 0.3}
	for active, want := range cases {
		if got := AvailabilityScore(active); got != want {
			t.Fatalf("AvailabilityScore(%d) = %f, want %f", active, got, want)
		}
	}
}

func TestHistoricalScore(t *testing.T) {
	if got := HistoricalScore(4); math.Abs(got-0.8) > eps {
		t.Fatalf("expected 0.8, got %f", got)
	}
	if got := HistoricalScore(7); got != 1 {
		t.Fatalf("expected clamp to 1, got %f", got)
	}
	if got := HistoricalScore(-1); got != 0 {
		t.Fatalf("expected clamp to 0, got %f", got)
	}
}

func TestScoreWorkerComposite(t *testing.T) {
	site := models.Site{
		ID:              "s1",
		Location:        models.Location{Lat: 40.0, Lng: -75.0},
		PreferredSkills: []string{"Mowing", "Edging", "Trimming"},
	}
	w := models.Worker{
		ID:       "w1",
		Skills:   []string{"Mowing", "Edging"},
		Location: site.Location,
		Rating:   5,
	}
	b := ScoreWorker(w, site)
	want := 0.4*(2.0/3.0) + 0.3*1 + 0.2*1 + 0.1*1
	if math.Abs(b.Composite-want) > eps {
		t.Fatalf("expected composite %f, got %f", want, b.Composite)
	}
	if b.DistanceKm != 0 {
		t.Fatalf("expected zero distance, got %f", b.DistanceKm)
	}
}

func TestCompositeAlwaysInUnitInterval(t *testing.T) {
	site := models.Site{Location: models.Location{Lat: 30, Lng: -97}, PreferredSkills: []string{"Mowing"}}
	workers := []models.Worker{
		{Location: models.Location{Lat: 30, Lng: -97}, Skills: []string{"Mowing"}, Rating: 5},
		{Location: models.Location{Lat: 50, Lng: 10}, Rating: 0, ActiveAssignments: []string{"a", "b", "c", "d"}},
		{Location: models.Location{Lat: math.NaN(), Lng: 0}, Rating: 9},
	}
	for _, w := range workers {
		c := ScoreWorker(w, site).Composite
		if c < 0 || c > 1 || math.IsNaN(c) {
			t.Fatalf("composite out of range: %f", c)
		}
	}
}

func TestLoadDifferenceShiftsCompositeByFourteenHundredths(t *testing.T) {
	site := models.Site{Location: models.Location{Lat: 40, Lng: -75}, PreferredSkills: []string{"Mowing"}}
	idle := models.Worker{ID: "idle", Skills: []string{"Mowing"}, Location: models.Location{Lat: 40.01, Lng: -75}, Rating: 4}
	busy := idle
	busy.ID = "busy"
	busy.ActiveAssignments = []string{"a1", "a2", "a3"}

	si := ScoreWorker(idle, site)
	sb := ScoreWorker(busy, site)
	if math.Abs((si.AvailabilityScore-sb.AvailabilityScore)-0.7) > eps {
		t.Fatalf("expected availability difference 0.7, got %f", si.AvailabilityScore-sb.AvailabilityScore)
	}
	if math.Abs((si.Composite-sb.Composite)-0.14) > eps {
		t.Fatalf("expected composite difference 0.14, got %f", si.Composite-sb.Composite)
	}
}

func TestScoreWorkerUnresolvableDistance(t *testing.T) {
	site := models.Site{Location: models.Location{Lat: 30, Lng: -97}}
	w := models.Worker{Location: models.Location{Lat: math.NaN()}}
	b := ScoreWorker(w, site)
	if b.DistanceKm != -1 || b.DistanceScore != 0 {
		t.Fatalf("expected unresolved distance, got %+v", b)
	}
}
