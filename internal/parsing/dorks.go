package parsing

import (
	"context"
	"strconv"
	"strings"

	"github.com/jonathan/outreach-pipeline/internal/generation"
	"github.com/jonathan/outreach-pipeline/internal/prompts"
)

// DorkBase restricts every search term to the startup job board
const DorkBase = "site:workatastartup.com"

const (
	// MaxDorks is the number of search term templates
	MaxDorks = 5
	// DefaultDorkCount applies when no positive limit is given
	DefaultDorkCount = 3
)

// dorkTemplates are filled with the role and location terms, in order
var dorkTemplates = []func(role, location string) string{
	func(r, l string) string { return join(DorkBase, r, l) },
	func(r, l string) string { return join(DorkBase, r, l, `"jobs"`) },
	func(r, l string) string { return join(DorkBase, r, `"we're hiring"`, l) },
	func(r, l string) string { return join(DorkBase, r, l, `"open role"`) },
	func(r, l string) string { return join(DorkBase, r, `"job listing"`, l) },
}

// GenerateDorks builds an ordered list of search terms for role and location.
// The result is deterministic, holds DorkCount(limit) entries and is empty
// only when role is empty.
func GenerateDorks(role, location string, limit int) []string {
	roleTerm := RoleTerm(role)
	if roleTerm == "" {
		return nil
	}
	locationTerm := quote(NormalizeLocation(location))

	count := DorkCount(limit)
	dorks := make([]string, 0, count)
	for _, tmpl := range dorkTemplates[:count] {
		dorks = append(dorks, tmpl(roleTerm, locationTerm))
	}
	return dorks
}

// DorkCount returns how many search terms a limit allows
func DorkCount(limit int) int {
	if limit <= 0 {
		return DefaultDorkCount
	}
	return min(limit, MaxDorks)
}

// RoleTerm renders a role for a search query, quoted when it has several words
func RoleTerm(role string) string {
	role = strings.Join(strings.Fields(strings.ReplaceAll(role, `"`, "")), " ")
	if role == "" {
		return ""
	}
	if strings.Contains(role, " ") {
		return quote(role)
	}
	return role
}

// SmartDorks asks the generation adapter for search terms.
// Callers fall back to GenerateDorks on error; the output has the same shape.
func SmartDorks(ctx context.Context, adapter generation.Adapter, role, location string, limit int) ([]string, error) {
	if adapter == nil {
		return nil, &generation.AdapterError{Op: "extract", Message: "no generation adapter configured"}
	}

	count := DorkCount(limit)
	location = NormalizeLocation(location)
	instructions := prompts.Format(prompts.MustGet(prompts.QueryFile, prompts.KeySmartDorks), map[string]string{
		"Limit":    strconv.Itoa(count),
		"Role":     role,
		"Location": location,
	})

	var out struct {
		Dorks []string `json:"dorks"`
	}
	input := "Role: " + role + "\nLocation: " + location
	if err := adapter.Extract(ctx, input, generation.DorkListSchema(), instructions, &out); err != nil {
		return nil, err
	}

	dorks := make([]string, 0, count)
	for _, d := range out.Dorks {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		dorks = append(dorks, d)
		if len(dorks) == count {
			break
		}
	}
	if len(dorks) == 0 {
		return nil, &generation.AdapterError{Op: "extract", Message: "no usable search terms returned"}
	}
	return dorks, nil
}

func quote(s string) string {
	return `"` + s + `"`
}

func join(parts ...string) string {
	return strings.Join(parts, " ")
}
