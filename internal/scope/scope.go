// Package scope builds the tenant-scoped WHERE clauses used by every
// household read in the store layer. A query that is not scoped to a
// household cannot be constructed through this package: missing identifiers
// fail closed before any SQL exists.
package scope

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrScope            = errors.New("scope violation")
	ErrMissingHousehold = fmt.Errorf("%w: missing household id", ErrScope)
	ErrMissingUser      = fmt.Errorf("%w: missing user id", ErrScope)
)

// Scope identifies the tenant (and optionally the owner) a query is
// restricted to.
type Scope struct {
	householdID int64
	userID      int64
	ownerScoped bool
}

// Household returns a scope restricted to one household. This is the
// shared-ledger view: every member's records are visible.
func Household(householdID int64) Scope {
	return Scope{householdID: householdID}
}

// Owner returns a scope restricted to one user's records within one
// household.
func Owner(householdID, userID int64) Scope {
	return Scope{householdID: householdID, userID: userID, ownerScoped: true}
}

// HouseholdID returns the household identifier the scope is bound to.
func (s Scope) HouseholdID() int64 { return s.householdID }

// Validate checks that the scope carries every identifier it requires.
func (s Scope) Validate() error {
	if s.householdID == 0 {
		return ErrMissingHousehold
	}
	if s.ownerScoped && s.userID == 0 {
		return ErrMissingUser
	}
	return nil
}

type clauseKind int

const (
	kindFilter clauseKind = iota
	kindSuffix
)

// Clause is an additional predicate or trailing fragment appended after the
// mandatory scope filters.
type Clause struct {
	kind clauseKind
	sql  string
	args []any
}

// Filter adds an AND predicate, e.g. Filter("kind = ?", "expense").
func Filter(sql string, args ...any) Clause {
	return Clause{kind: kindFilter, sql: sql, args: args}
}

// OrderBy adds a trailing ORDER BY fragment.
func OrderBy(expr string) Clause {
	return Clause{kind: kindSuffix, sql: "ORDER BY " + expr}
}

// Limit adds a trailing LIMIT fragment.
func Limit(n int) Clause {
	return Clause{kind: kindSuffix, sql: "LIMIT ?", args: []any{n}}
}

// Where renders the scope plus caller clauses to a WHERE fragment and its
// arguments. The household filter always comes first, the owner filter
// second when present, then caller filters in the order given, then
// trailing fragments. It returns an error and no SQL when the scope is
// incomplete.
func (s Scope) Where(extras ...Clause) (string, []any, error) {
	if err := s.Validate(); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("WHERE household_id = ?")
	args := []any{s.householdID}

	if s.ownerScoped {
		b.WriteString(" AND user_id = ?")
		args = append(args, s.userID)
	}

	for _, c := range extras {
		if c.kind != kindFilter {
			continue
		}
		b.WriteString(" AND ")
		b.WriteString(c.sql)
		args = append(args, c.args...)
	}
	for _, c := range extras {
		if c.kind != kindSuffix {
			continue
		}
		b.WriteString(" ")
		b.WriteString(c.sql)
		args = append(args, c.args...)
	}

	return b.String(), args, nil
}
