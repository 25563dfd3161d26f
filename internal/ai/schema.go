package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const advisorySchema = `{
  "type": "object",
  "required": ["worker_id"],
  "properties": {
    "worker_id": {"type": "string", "minLength": 1},
    "rationale": {"type": ["string", "null"]},
    "alternative_worker_id": {"type": ["string", "null"]},
    "risk_factors": {
      "type": ["array", "null"],
      "items": {"type": "string"}
    }
  }
}`

var advisorySchemaLoader = gojsonschema.NewStringLoader(advisorySchema)

// decodeAdvisory validates raw against the advisory schema before decoding it.
func decodeAdvisory(raw []byte) (Advisory, error) {
	result, err := gojsonschema.Validate(advisorySchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Advisory{}, fmt.Errorf("advisory validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return Advisory{}, fmt.Errorf("advisory payload invalid: %s", strings.Join(errs, "; "))
	}

	var r recommendResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return Advisory{}, fmt.Errorf("decode advisory: %w", err)
	}
	if strings.TrimSpace(r.WorkerID) == "" {
		return Advisory{}, fmt.Errorf("advisory has no worker_id")
	}
	return Advisory{
		WorkerID:            r.WorkerID,
		Rationale:           r.Rationale,
		AlternativeWorkerID: r.AlternativeWorkerID,
		RiskFactors:         r.RiskFactors,
	}, nil
}
