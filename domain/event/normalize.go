package event

import (
	"strconv"
	"strings"
	"time"
)

// RejectReason classifies why a row was dropped during normalization.
type RejectReason string

const (
	RejectShapeMismatch    RejectReason = "shape_mismatch"
	RejectInvalidTimestamp RejectReason = "invalid_timestamp"
	RejectMissingUserModel RejectReason = "missing_user_or_model"
)

// NormalizeOptions tunes the leniency defaults.
type NormalizeOptions struct {
	// DefaultRequests is substituted when "Requests Used" is missing or
	// non-numeric. One request per row unless configured otherwise.
	DefaultRequests float64
	// DefaultMonthlyQuota is substituted when "Total Monthly Quota" is
	// missing or non-numeric.
	DefaultMonthlyQuota int
}

// DefaultNormalizeOptions returns the documented defaults (1 and 300).
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		DefaultRequests:     1,
		DefaultMonthlyQuota: DefaultMonthlyQuota,
	}
}

// Timestamp layouts accepted, tried in order. The export family is ISO-ish;
// anything else rejects the row.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a source timestamp field.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize maps one raw value row onto an Event.
//
// Rejections (shape mismatch, bad timestamp, empty user/model) return the
// reason and ok=false; they are counted by the caller, never fatal. Numeric
// parse failures are not rejections - they fall back to opts defaults, an
// intentional leniency policy.
func Normalize(header, values []string, opts NormalizeOptions) (Event, RejectReason, bool) {
	if len(values) != len(header) {
		return Event{}, RejectShapeMismatch, false
	}

	raw := make(map[string]string, len(header))
	for i, col := range header {
		raw[col] = values[i]
	}

	ts, ok := ParseTimestamp(raw[ColTimestamp])
	if !ok {
		return Event{}, RejectInvalidTimestamp, false
	}

	user := strings.TrimSpace(raw[ColUser])
	model := strings.TrimSpace(raw[ColModel])
	if user == "" || model == "" {
		return Event{}, RejectMissingUserModel, false
	}

	requests := opts.DefaultRequests
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw[ColRequests]), 64); err == nil && v >= 0 {
		requests = v
	}

	monthlyQuota := opts.DefaultMonthlyQuota
	if v, err := strconv.Atoi(strings.TrimSpace(raw[ColMonthlyQuota])); err == nil && v >= 0 {
		monthlyQuota = v
	}

	// Only the literal tokens TRUE and True count; anything else is false.
	flag := raw[ColExceedsQuota] == "TRUE" || raw[ColExceedsQuota] == "True"

	return Event{
		Timestamp:        ts,
		User:             user,
		Model:            model,
		Requests:         requests,
		MonthlyQuota:     monthlyQuota,
		ExceedsQuotaFlag: flag,
		Raw:              raw,
	}, "", true
}
