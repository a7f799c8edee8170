// Package costaccounting parses and formats the per-request `cost="k=v
// k=v …"` annotation (spec.md §6.3): system/user/wall/end-to-end time,
// page reclaims/faults, values allocated, primitives and index entries
// read/written.
//
// Grounded on infrastructure/config/config.go's getEnv/getEnvInt
// key-lookup-with-default idiom (teacher repo 2lar-b2/backend2),
// generalized from "one key per call" to "one blob, many keys, unknown
// keys logged and ignored." Range validation uses
// github.com/go-playground/validator/v10, the pack's validation library
// (teacher go.mod), rather than hand-rolled bound checks.
package costaccounting

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"graphd/internal/engine"
)

// Cost is the decoded cost annotation. Time fields are microseconds
// ("milliseconds, with microseconds = ×1000" per spec.md §6.3); MS
// helpers convert to milliseconds for callers that want that unit.
type Cost struct {
	SysUS      int64 `validate:"gte=0"`
	UserUS     int64 `validate:"gte=0"`
	WallUS     int64 `validate:"gte=0"`
	EndToEndUS int64 `validate:"gte=0"`

	PageReclaims int64 `validate:"gte=0"`
	PageFaults   int64 `validate:"gte=0"`

	ValuesAllocated int64 `validate:"gte=0"`

	PrimitivesRead    int64 `validate:"gte=0"`
	PrimitivesWritten int64 `validate:"gte=0"`

	IndexEntriesRead    int64 `validate:"gte=0"`
	IndexEntriesWritten int64 `validate:"gte=0"`
	IndexExtentsRead    int64 `validate:"gte=0"`
}

// MS converts a microsecond field to milliseconds.
func MS(us int64) float64 { return float64(us) / 1000 }

var validate = validator.New()

// keyOrder is the canonical key emission order for Format.
var keyOrder = []string{"ts", "tu", "tr", "te", "pr", "pf", "va", "dr", "dw", "ir", "iw", "in"}

func fieldPtr(c *Cost, key string) *int64 {
	switch key {
	case "ts":
		return &c.SysUS
	case "tu":
		return &c.UserUS
	case "tr":
		return &c.WallUS
	case "te":
		return &c.EndToEndUS
	case "pr":
		return &c.PageReclaims
	case "pf":
		return &c.PageFaults
	case "va":
		return &c.ValuesAllocated
	case "dr":
		return &c.PrimitivesRead
	case "dw":
		return &c.PrimitivesWritten
	case "ir":
		return &c.IndexEntriesRead
	case "iw":
		return &c.IndexEntriesWritten
	case "in":
		return &c.IndexExtentsRead
	default:
		return nil
	}
}

// Parse decodes a `cost="k=v k=v …"` blob. Unknown keys are logged (via
// log, which may be nil) and ignored, never an error. A decimal overflow
// on a known key's value is a syntax error, returned as an
// *engine.Error with Outcome Syntax, per spec.md §6.3 and §7.
func Parse(blob string, log *zap.Logger) (*Cost, error) {
	c := &Cost{}
	for _, tok := range strings.Fields(blob) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		ptr := fieldPtr(c, key)
		if ptr == nil {
			if log != nil {
				log.Warn("cost annotation: unknown key", zap.String("key", key))
			}
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, engine.NewError(engine.Syntax, "cost annotation: "+key+"="+val+" does not parse: "+err.Error())
		}
		*ptr = n
	}
	if err := validate.Struct(c); err != nil {
		return nil, engine.NewError(engine.Syntax, "cost annotation: "+err.Error())
	}
	return c, nil
}

// Format renders c back to a `cost="k=v k=v …"` blob, omitting any field
// still at its zero value, in Parse's key order.
func Format(c *Cost) string {
	var parts []string
	for _, key := range keyOrder {
		v := *fieldPtr(c, key)
		if v == 0 {
			continue
		}
		parts = append(parts, key+"="+strconv.FormatInt(v, 10))
	}
	return strings.Join(parts, " ")
}
