// Package inputval parses and validates stringly-typed request inputs at the
// controller boundary. Every failure names the offending field so the client
// gets an actionable message; downstream code only ever sees typed values.
package inputval

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fieldworks/turfhub/internal/app/system/apperr"
)

// Float parses an optional numeric field. An empty value yields (nil, nil).
func Float(field, value string) (*float64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, apperr.Validation("field %q must be a number", field)
	}
	return &f, nil
}

// Int parses an optional integer field. An empty value yields (nil, nil).
func Int(field, value string) (*int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, apperr.Validation("field %q must be an integer", field)
	}
	return &n, nil
}

// StringList parses a field transmitted either as a JSON array
// (`["football","cricket"]`) or as a comma-separated list. An empty value
// yields (nil, nil).
func StringList(field, value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(value, "[") {
		var out []string
		if err := json.Unmarshal([]byte(value), &out); err != nil {
			return nil, apperr.Validation("field %q must be a JSON array of strings", field)
		}
		return out, nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// JSONObject parses a field carrying a JSON object into dst.
func JSONObject(field, value string, dst any) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return apperr.Validation("field %q must be a JSON object", field)
	}
	return nil
}

// Required fails when a trimmed string field is empty.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("field %q is required", field)
	}
	return nil
}

// ClockTime validates a 24h "HH:MM" string.
func ClockTime(field, value string) error {
	if len(value) != 5 || value[2] != ':' {
		return apperr.Validation("field %q must be in HH:MM format", field)
	}
	h, err1 := strconv.Atoi(value[:2])
	m, err2 := strconv.Atoi(value[3:])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return apperr.Validation("field %q must be in HH:MM format", field)
	}
	return nil
}

// IsValidEmail applies the pragmatic checks we care about: one @, non-empty
// local and domain parts, no spaces, no leading/trailing/double dots.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}
