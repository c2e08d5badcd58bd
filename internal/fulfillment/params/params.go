// Package params turns the slot values sent by the conversational platform
// into display strings.
package params

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gym-fulfillment/internal/models"
)

// NotAvailable is returned when no meaningful string can be produced.
const NotAvailable = "N/A"

// Parse classifies one JSON decoded value. Objects carrying "original" or
// "name" are person names ("original" wins unless blank), objects carrying "hours" or "minutes" are times of
// day, strings and other scalars are Scalar. Anything else is Unknown.
func Parse(raw interface{}) models.ParamValue {
	switch v := raw.(type) {
	case nil:
		return nil
	case models.ParamValue:
		return v
	case string:
		return models.Scalar(v)
	case bool:
		return models.Scalar(strconv.FormatBool(v))
	case float64:
		return models.Scalar(formatNumber(v))
	case int:
		return models.Scalar(strconv.Itoa(v))
	case int64:
		return models.Scalar(strconv.FormatInt(v, 10))
	case json.Number:
		return models.Scalar(v.String())
	case map[string]interface{}:
		return parseObject(v)
	default:
		return models.Unknown{Raw: raw}
	}
}

func parseObject(m map[string]interface{}) models.ParamValue {
	original, hasOriginal := m["original"].(string)
	name, hasName := m["name"].(string)
	switch {
	case hasOriginal && strings.TrimSpace(original) != "":
		return models.PersonName{Original: original}
	case hasName && strings.TrimSpace(name) != "":
		return models.PersonName{Original: name}
	case hasOriginal || hasName:
		return models.PersonName{Original: original}
	}

	_, hasHours := m["hours"]
	_, hasMinutes := m["minutes"]
	if hasHours || hasMinutes {
		hours, okH := toInt(m["hours"])
		minutes, okM := toInt(m["minutes"])
		if okH && okM {
			return models.TimeOfDay{Hours: hours, Minutes: minutes}
		}
	}
	return models.Unknown{Raw: m}
}

// ParseAll classifies every entry of a session parameter map. Nil values are
// dropped so that presence checks treat them as missing.
func ParseAll(raw map[string]interface{}) map[string]models.ParamValue {
	out := make(map[string]models.ParamValue, len(raw))
	for k, v := range raw {
		if pv := Parse(v); pv != nil {
			out[k] = pv
		}
	}
	return out
}

// Normalize renders a parameter as a display string. It never fails and
// never returns "".
func Normalize(v models.ParamValue) string {
	var s string
	switch t := v.(type) {
	case nil:
		return NotAvailable
	case models.Scalar:
		s = string(t)
	case models.PersonName:
		s = t.Original
	case models.TimeOfDay:
		s = fmt.Sprintf("%02d:%02d", t.Hours, t.Minutes)
	case models.Unknown:
		s = renderUnknown(t.Raw)
	}
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// NormalizeParam looks name up in req and normalizes it.
func NormalizeParam(req models.IntentRequest, name string) string {
	v, _ := req.Param(name)
	return Normalize(v)
}

func renderUnknown(raw interface{}) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(fmt.Stringer); ok {
		return s.String()
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return string(b)
}

// toInt accepts the encodings the platform uses for hours and minutes:
// JSON numbers, Go ints and numeric strings. Missing means 0.
func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true
	case float64:
		return int(t), true
	case float32:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
