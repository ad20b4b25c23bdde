// Package seed provides demo-data upsert orchestration for local development
// and staging environments.
package seed

import "fmt"

// Result tracks counts and errors from a seeding operation.
type Result struct {
	UsersUpserted   int
	EntriesUpserted int
	RulesUpserted   int
	Errors          []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the seed operation.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"users=%d entries=%d rules=%d errors=%d",
		r.UsersUpserted, r.EntriesUpserted, r.RulesUpserted, len(r.Errors),
	)
}
