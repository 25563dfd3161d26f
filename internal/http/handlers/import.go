package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenroute/backend/internal/seed"
)

type ImportSummary struct {
	Loaded seed.Summary `json:"loaded"`
	Errors []string     `json:"errors"`
}

// @Summary Import CSV data
// @Description Upload any of workers, sites and customers CSV files. Records are upserted by id.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param workers formData file false "workers.csv"
// @Param sites formData file false "sites.csv"
// @Param customers formData file false "customers.csv"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} ErrorResponse
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	files := map[string]*multipart.FileHeader{}
	for _, field := range []string{"workers", "sites", "customers"} {
		fh, err := c.FormFile(field)
		if err != nil {
			continue
		}
		if !validateExt(fh.Filename) {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", field+" file must be .csv", nil)
			return
		}
		files[field] = fh
	}
	if len(files) == 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "at least one of workers, sites, customers is required", nil)
		return
	}

	var (
		ds   seed.Dataset
		errs []string
	)
	if fh, ok := files["workers"]; ok {
		var e []string
		ds.Workers, e = parseUpload(fh, seed.ParseWorkersCSV)
		errs = append(errs, prefixed("workers", e)...)
	}
	if fh, ok := files["sites"]; ok {
		var e []string
		ds.Sites, e = parseUpload(fh, seed.ParseSitesCSV)
		errs = append(errs, prefixed("sites", e)...)
	}
	if fh, ok := files["customers"]; ok {
		var e []string
		ds.Customers, e = parseUpload(fh, seed.ParseCustomersCSV)
		errs = append(errs, prefixed("customers", e)...)
	}
	if len(errs) > 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "CSV validation errors", errs)
		return
	}

	sum, err := seed.Load(c.Request.Context(), h.Store, ds, h.now())
	if err != nil {
		h.writeAppError(c, err)
		return
	}
	h.Logger.Info().Int("workers", sum.Workers).Int("sites", sum.Sites).Int("customers", sum.Customers).Msg("csv import loaded")
	c.JSON(http.StatusOK, ImportSummary{Loaded: sum, Errors: []string{}})
}

func parseUpload[T any](fh *multipart.FileHeader, parse func(r io.Reader) ([]T, []string)) ([]T, []string) {
	f, err := fh.Open()
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()
	return parse(f)
}

func prefixed(name string, errs []string) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, name+": "+e)
	}
	return out
}

func validateExt(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".csv"
}
