// Package core provides filtering, sorting, and lookup over toast history.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/toastbox/internal/history"
	"github.com/jmylchreest/toastbox/internal/toast"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // message, level, position, status, source, created, expiry
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	regex    *regexp.Regexp
	levelVal toast.Level
	cutoff   time.Time
	numVal   uint64
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies simple criteria for filtering records.
type FilterOptions struct {
	Since    time.Duration // Only records newer than now-since (0=all)
	Level    string        // Exact level token
	Position string        // Exact position token
	Status   string        // Exact status
	Limit    int           // Maximum results (0=unlimited)
}

// Filter filters records based on the provided options.
func Filter(records []history.Record, opts FilterOptions) []history.Record {
	return filterAt(records, opts, time.Now())
}

func filterAt(records []history.Record, opts FilterOptions, now time.Time) []history.Record {
	result := make([]history.Record, 0, len(records))
	for _, r := range records {
		if opts.Since > 0 && r.CreatedAt.Before(now.Add(-opts.Since)) {
			continue
		}
		if opts.Level != "" && r.Level != opts.Level {
			continue
		}
		if opts.Position != "" && r.Position != opts.Position {
			continue
		}
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		result = append(result, r)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 48h, 7d, 1w, 0 (all time)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
//
// Supported fields: message, level, position, status, source, created, expiry
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "level>=warn" - warnings and errors
//   - "message~deploy" - message contains "deploy"
//   - "status=dismissed,position=top_right"
//   - "created>1h" - raised in the last hour
//   - "expiry<1000" - expiry under a second
func ParseFilter(expr string) (*FilterExpr, error) {
	filter := &FilterExpr{}
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}
	return filter, nil
}

// parseCondition parses a single condition like "level=error".
func parseCondition(s string) (FilterCondition, error) {
	// Longest operators first so "!=" is not read as "=".
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
			}
			if err := cond.init(time.Now()); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init pre-parses and validates the condition value.
func (c *FilterCondition) init(now time.Time) error {
	switch c.Field {
	case "message", "msg", "body":
		c.Field = "message"
	case "level", "severity":
		c.Field = "level"
		l, err := toast.ParseLevel(strings.ToLower(c.Value))
		if err != nil {
			return err
		}
		c.levelVal = l
	case "position", "pos":
		c.Field = "position"
	case "status":
	case "source":
	case "created", "time", "ts":
		c.Field = "created"
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid created value: %w", err)
		}
		c.cutoff = now.Add(-dur)
	case "expiry":
		v, err := strconv.ParseUint(c.Value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid expiry value: %s", c.Value)
		}
		c.numVal = v
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}
	return nil
}

// Match tests if a record matches the filter expression.
func (f *FilterExpr) Match(r history.Record) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(r) {
			return false
		}
	}
	return true
}

// Match tests if a record matches this single condition.
func (c *FilterCondition) Match(r history.Record) bool {
	switch c.Field {
	case "message":
		return c.matchString(r.Message)
	case "position":
		return c.matchString(r.Position)
	case "status":
		return c.matchString(r.Status)
	case "source":
		return c.matchString(r.Source)
	case "level":
		l, err := toast.ParseLevel(r.Level)
		if err != nil {
			return false
		}
		return compare(c.Operator, int(l), int(c.levelVal))
	case "expiry":
		if r.Expiry == nil {
			// No expiry is longer than any expiry.
			return c.Operator == FilterOpNotEqual || c.Operator == FilterOpGreater || c.Operator == FilterOpGreaterEq
		}
		return compare(c.Operator, uint64(*r.Expiry), c.numVal)
	case "created":
		return c.matchTime(r.CreatedAt)
	default:
		return false
	}
}

func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

// matchTime compares against the cutoff: "created>1h" means newer than an hour ago.
func (c *FilterCondition) matchTime(t time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return t.After(c.cutoff)
	case FilterOpLess:
		return t.Before(c.cutoff)
	case FilterOpGreaterEq:
		return !t.Before(c.cutoff)
	case FilterOpLessEq:
		return !t.After(c.cutoff)
	default:
		return false
	}
}

func compare[T int | uint64](op FilterOp, a, b T) bool {
	switch op {
	case FilterOpEqual:
		return a == b
	case FilterOpNotEqual:
		return a != b
	case FilterOpGreater:
		return a > b
	case FilterOpLess:
		return a < b
	case FilterOpGreaterEq:
		return a >= b
	case FilterOpLessEq:
		return a <= b
	default:
		return false
	}
}

// FilterWithExpr filters records using a filter expression.
func FilterWithExpr(records []history.Record, expr *FilterExpr) []history.Record {
	if expr == nil || len(expr.Conditions) == 0 {
		return records
	}
	result := make([]history.Record, 0, len(records))
	for _, r := range records {
		if expr.Match(r) {
			result = append(result, r)
		}
	}
	return result
}
