// Package parsing turns free-text job search requests into a role, a location and search terms.
package parsing

import (
	"context"
	"strings"

	"github.com/jonathan/outreach-pipeline/internal/generation"
	"github.com/jonathan/outreach-pipeline/internal/prompts"
	"github.com/jonathan/outreach-pipeline/internal/types"
)

// Parsed is the role and location read from a query
type Parsed struct {
	Role     string
	Location string
	Fallback bool // true when the heuristic produced the result
}

// ParseQuery asks the generation adapter for the role and location in query.
// Any failure is returned as a *generation.AdapterError so callers can take
// the Fallback branch explicitly.
func ParseQuery(ctx context.Context, adapter generation.Adapter, query string) (Parsed, error) {
	if adapter == nil {
		return Parsed{}, &generation.AdapterError{Op: "extract", Message: "no generation adapter configured"}
	}

	var out struct {
		Role     string `json:"role"`
		Location string `json:"location"`
	}
	instructions := prompts.MustGet(prompts.QueryFile, prompts.KeyExtractJobQuery)
	if err := adapter.Extract(ctx, query, generation.JobQuerySchema(), instructions, &out); err != nil {
		return Parsed{}, err
	}

	role := strings.TrimSpace(out.Role)
	if role == "" {
		return Parsed{}, &generation.AdapterError{Op: "extract", Message: "extraction returned an empty role"}
	}

	return Parsed{
		Role:     role,
		Location: NormalizeLocation(out.Location),
	}, nil
}

// Fallback approximates the role by stripping a leading "find " and a
// trailing " roles" from the query. The location is always remote.
// It never fails and never returns an empty role for a non-empty query.
func Fallback(query string) Parsed {
	trimmed := strings.TrimSpace(query)

	role := trimmed
	if hasPrefixFold(role, "find ") {
		role = role[len("find "):]
	}
	role = strings.TrimSpace(role)
	if hasSuffixFold(role, " roles") {
		role = role[:len(role)-len(" roles")]
	}
	role = strings.TrimSpace(role)

	if role == "" {
		role = trimmed
	}

	return Parsed{
		Role:     role,
		Location: types.DefaultLocation,
		Fallback: true,
	}
}

// NormalizeLocation trims a location and maps empty or remote values to "remote"
func NormalizeLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" || strings.EqualFold(location, types.DefaultLocation) {
		return types.DefaultLocation
	}
	return location
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
