package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/greenroute/backend/internal/models"
)

// ParseWorkersCSV reads workers with columns id, name, skills, lat, lng,
// rating, hourly_rate and optional regions. Skills and regions are separated
// by commas or semicolons.
func ParseWorkersCSV(r io.Reader) ([]models.Worker, []string) {
	var out []models.Worker
	errs := readCSV(r, func(rec []string, index map[string]int) error {
		w := models.Worker{
			ID:     getFieldAny(rec, index, "id", "worker_id"),
			Name:   getFieldAny(rec, index, "name", "full_name"),
			Skills: splitList(getFieldAny(rec, index, "skills")),
			Active: true,
		}
		var err error
		if w.Location, err = parseLocation(rec, index); err != nil {
			return err
		}
		if w.Rating, err = parseFloat(getFieldAny(rec, index, "rating"), 0); err != nil {
			return fmt.Errorf("rating: %w", err)
		}
		if w.Rating < 0 || w.Rating > 5 {
			return fmt.Errorf("rating %.2f out of range", w.Rating)
		}
		if w.HourlyRate, err = parseFloat(getFieldAny(rec, index, "hourly_rate", "rate"), 0); err != nil {
			return fmt.Errorf("hourly_rate: %w", err)
		}
		w.Performance.RegionalExpertise = splitList(getFieldAny(rec, index, "regions", "regional_expertise"))
		if v := getFieldAny(rec, index, "active"); v != "" {
			if w.Active, err = strconv.ParseBool(v); err != nil {
				return fmt.Errorf("active: %w", err)
			}
		}
		if w.ID == "" {
			w.ID = fmt.Sprintf("WRK-%03d", len(out)+1)
		}
		if w.Name == "" {
			return fmt.Errorf("worker %s: name required", w.ID)
		}
		out = append(out, w)
		return nil
	})
	return out, errs
}

// ParseSitesCSV reads sites with columns id, address, region, lat, lng,
// difficulty, skills and optional duration_minutes, size_sq_ft, terrain.
func ParseSitesCSV(r io.Reader) ([]models.Site, []string) {
	var out []models.Site
	errs := readCSV(r, func(rec []string, index map[string]int) error {
		s := models.Site{
			ID:              getFieldAny(rec, index, "id", "site_id"),
			Address:         getFieldAny(rec, index, "address"),
			Region:          strings.ToLower(getFieldAny(rec, index, "region")),
			Status:          models.SiteOpen,
			PreferredSkills: splitList(getFieldAny(rec, index, "skills", "preferred_skills")),
			RegionalFactors: splitList(getFieldAny(rec, index, "regional_factors", "factors")),
		}
		var err error
		if s.Location, err = parseLocation(rec, index); err != nil {
			return err
		}
		if s.Difficulty, err = parseFloat(getFieldAny(rec, index, "difficulty"), 0.5); err != nil {
			return fmt.Errorf("difficulty: %w", err)
		}
		if s.Difficulty < 0 || s.Difficulty > 1 {
			return fmt.Errorf("difficulty %.2f out of range", s.Difficulty)
		}
		minutes, err := parseFloat(getFieldAny(rec, index, "duration_minutes", "estimated_minutes"), 0)
		if err != nil {
			return fmt.Errorf("duration_minutes: %w", err)
		}
		s.EstimatedDuration = time.Duration(minutes * float64(time.Minute))
		if s.Property.SizeSqFt, err = parseFloat(getFieldAny(rec, index, "size_sq_ft", "sqft"), 0); err != nil {
			return fmt.Errorf("size_sq_ft: %w", err)
		}
		s.Property.Terrain = getFieldAny(rec, index, "terrain")
		s.Property.GrassType = getFieldAny(rec, index, "grass_type", "surface")
		if s.ID == "" {
			s.ID = fmt.Sprintf("SITE-%03d", len(out)+1)
		}
		if s.Address == "" {
			return fmt.Errorf("site %s: address required", s.ID)
		}
		out = append(out, s)
		return nil
	})
	return out, errs
}

func ParseCustomersCSV(r io.Reader) ([]models.Customer, []string) {
	var out []models.Customer
	errs := readCSV(r, func(rec []string, index map[string]int) error {
		c := models.Customer{
			ID:      getFieldAny(rec, index, "id", "customer_id"),
			Name:    getFieldAny(rec, index, "name"),
			Email:   getFieldAny(rec, index, "email"),
			Phone:   getFieldAny(rec, index, "phone"),
			Address: getFieldAny(rec, index, "address"),
			Region:  strings.ToLower(getFieldAny(rec, index, "region")),
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("CUST-%03d", len(out)+1)
		}
		if c.Name == "" {
			return fmt.Errorf("customer %s: name required", c.ID)
		}
		out = append(out, c)
		return nil
	})
	return out, errs
}

func readCSV(r io.Reader, row func(rec []string, index map[string]int) error) []string {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return []string{"failed to read header"}
	}
	index := headerIndex(headers)

	var errs []string
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := row(rec, index); err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", line, err))
		}
	}
	return errs
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}

func splitList(raw string) []string {
	raw = strings.ReplaceAll(raw, ";", ",")
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFloat(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func parseLocation(rec []string, index map[string]int) (models.Location, error) {
	lat, err := parseFloat(getFieldAny(rec, index, "lat", "latitude"), 0)
	if err != nil {
		return models.Location{}, fmt.Errorf("lat: %w", err)
	}
	lng, err := parseFloat(getFieldAny(rec, index, "lng", "lon", "longitude"), 0)
	if err != nil {
		return models.Location{}, fmt.Errorf("lng: %w", err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.Location{}, fmt.Errorf("location %.5f,%.5f out of range", lat, lng)
	}
	return models.Location{Lat: lat, Lng: lng}, nil
}
