package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Rule is a parsed, timezone-aware recurrence definition for one event
// series. It is immutable after ParseRule and safe for concurrent use.
type Rule struct {
	// Start is DTSTART in the rule's declared zone.
	Start time.Time
	// Loc is the IANA zone the rule declared via TZID. All expansion
	// arithmetic happens in this zone.
	Loc *time.Location
	// Duration of each occurrence.
	Duration time.Duration
	// Bounded is true when the rule carries COUNT or UNTIL. Unbounded
	// rules rely on the caller's window to terminate expansion.
	Bounded bool

	raw string
	rr  *rrule.RRule
}

// ParseError reports a malformed recurrence rule. It is scoped to the one
// rule that failed; expansion of other events is unaffected.
type ParseError struct {
	Rule   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recurrence: invalid rule %q: %s: %v", e.Rule, e.Reason, e.Err)
	}
	return fmt.Sprintf("recurrence: invalid rule %q: %s", e.Rule, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(rule, reason string, err error) *ParseError {
	return &ParseError{Rule: rule, Reason: reason, Err: err}
}

// ParseRule parses an RFC5545-style rule string of the form
//
//	DTSTART;TZID=America/Chicago:20240102T100000
//	RRULE:FREQ=WEEKLY;COUNT=4
//
// into a Rule. FREQ is limited to DAILY, WEEKLY and MONTHLY. The TZID is
// mandatory: a floating or host-local DTSTART is rejected so that no
// computation ever depends on the server's clock.
func ParseRule(ruleStr string, duration time.Duration) (*Rule, error) {
	if duration <= 0 {
		return nil, parseErr(ruleStr, "duration must be positive", nil)
	}
	// Conflict windows assume an occurrence fits within one day.
	if duration > 24*time.Hour {
		return nil, parseErr(ruleStr, "duration exceeds 24 hours", nil)
	}

	var dtstartLine, rruleLine string
	for _, line := range strings.Split(strings.ReplaceAll(ruleStr, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "DTSTART"):
			dtstartLine = line
		case strings.HasPrefix(line, "RRULE:"):
			rruleLine = strings.TrimPrefix(line, "RRULE:")
		}
	}
	if dtstartLine == "" {
		return nil, parseErr(ruleStr, "missing DTSTART", nil)
	}
	if rruleLine == "" {
		return nil, parseErr(ruleStr, "missing RRULE", nil)
	}

	start, loc, err := parseDTStart(dtstartLine)
	if err != nil {
		return nil, parseErr(ruleStr, "bad DTSTART", err)
	}

	opt, err := rrule.StrToROptionInLocation(rruleLine, loc)
	if err != nil {
		return nil, parseErr(ruleStr, "bad RRULE", err)
	}

	switch opt.Freq {
	case rrule.DAILY, rrule.WEEKLY, rrule.MONTHLY:
	default:
		return nil, parseErr(ruleStr, "unsupported FREQ (want DAILY, WEEKLY or MONTHLY)", nil)
	}
	if opt.Count < 0 {
		return nil, parseErr(ruleStr, "negative COUNT", nil)
	}
	if opt.Count > maxOccurrences {
		return nil, parseErr(ruleStr, fmt.Sprintf("COUNT exceeds the %d-occurrence cap", maxOccurrences), nil)
	}
	if !opt.Until.IsZero() && opt.Until.Before(start) {
		return nil, parseErr(ruleStr, "UNTIL precedes DTSTART", nil)
	}

	opt.Dtstart = start
	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, parseErr(ruleStr, "bad RRULE", err)
	}

	return &Rule{
		Start:    start,
		Loc:      loc,
		Duration: duration,
		Bounded:  opt.Count > 0 || !opt.Until.IsZero(),
		raw:      ruleStr,
		rr:       rr,
	}, nil
}

// parseDTStart handles "DTSTART;TZID=<zone>:<yyyymmddThhmmss>". The TZID
// parameter is required.
func parseDTStart(line string) (time.Time, *time.Location, error) {
	rest := strings.TrimPrefix(line, "DTSTART")
	idx := strings.Index(rest, ":")
	if idx < 0 {
		return time.Time{}, nil, fmt.Errorf("missing value in %q", line)
	}
	params, value := rest[:idx], rest[idx+1:]

	tzid := ""
	for _, p := range strings.Split(strings.TrimPrefix(params, ";"), ";") {
		if strings.HasPrefix(p, "TZID=") {
			tzid = strings.TrimPrefix(p, "TZID=")
		}
	}
	if tzid == "" {
		return time.Time{}, nil, fmt.Errorf("missing TZID in %q", line)
	}

	loc, err := time.LoadLocation(tzid)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("unknown zone %q: %w", tzid, err)
	}

	start, err := time.ParseInLocation("20060102T150405", value, loc)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("bad DTSTART value %q: %w", value, err)
	}
	return start, loc, nil
}

// String returns the rule text the Rule was parsed from.
func (r *Rule) String() string { return r.raw }
