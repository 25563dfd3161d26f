package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/greenroute/backend/internal/models"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent    = "greenroute-dispatch"
)

// NominatimGeocoder resolves site addresses through the OSM search API. The
// public instance allows one request per second, so calls are spaced by
// MinInterval. Hits and misses are both cached per normalized query.
type NominatimGeocoder struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Client      *http.Client

	once     sync.Once
	throttle *throttle
	mu       sync.Mutex
	cache    map[string]cachedLookup
}

type cachedLookup struct {
	res Result
	err error
}

type nominatimItem struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

func (g *NominatimGeocoder) setup() {
	g.once.Do(func() {
		if g.Client == nil {
			g.Client = &http.Client{Timeout: 10 * time.Second}
		}
		if g.BaseURL == "" {
			g.BaseURL = defaultNominatimURL
		}
		if g.UserAgent == "" {
			g.UserAgent = defaultUserAgent
		}
		if g.MinInterval <= 0 {
			g.MinInterval = time.Second
		}
		g.throttle = &throttle{interval: g.MinInterval}
		g.cache = map[string]cachedLookup{}
	})
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (Result, error) {
	g.setup()
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if key == "" {
		return Result{}, ErrNotFound
	}

	g.mu.Lock()
	hit, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return hit.res, hit.err
	}

	if err := g.throttle.wait(ctx); err != nil {
		return Result{}, err
	}
	res, err := g.search(ctx, query)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Result{}, err
	}

	g.mu.Lock()
	g.cache[key] = cachedLookup{res: res, err: err}
	g.mu.Unlock()
	return res, err
}

func (g *NominatimGeocoder) search(ctx context.Context, query string) (Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	endpoint := strings.TrimRight(g.BaseURL, "/") + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", g.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("nominatim http error: %s", resp.Status)
	}

	var items []nominatimItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return Result{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	return parseNominatimItems(items)
}

func parseNominatimItems(items []nominatimItem) (Result, error) {
	if len(items) == 0 {
		return Result{}, ErrNotFound
	}
	top := items[0]
	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("nominatim lat %q: %w", top.Lat, err)
	}
	lng, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("nominatim lon %q: %w", top.Lon, err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Result{}, fmt.Errorf("nominatim returned out of range point %f,%f", lat, lng)
	}
	if lat == 0 && lng == 0 && top.DisplayName == "" {
		return Result{}, ErrNotFound
	}
	return Result{
		Location:    models.Location{Lat: lat, Lng: lng},
		DisplayName: top.DisplayName,
		Confidence:  top.Importance,
	}, nil
}

// throttle spaces callers at least interval apart. Reservations are taken
// under the lock and slept outside it.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func (t *throttle) wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	t.next = slot.Add(t.interval)
	t.mu.Unlock()

	d := time.Until(slot)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
