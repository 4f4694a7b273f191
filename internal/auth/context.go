package auth

import (
	"context"

	"github.com/munsif3/family-expense-tracker-sub001/internal/scope"
)

type contextKey struct{}

type AuthContext struct {
	UserID      int64
	HouseholdID int64
	Role        string
	SessionID   int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func HouseholdID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.HouseholdID
}

func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}

func IsAdmin(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return ac.Role == "admin"
}

// HouseholdScope returns the shared-ledger scope for the authenticated
// household. With no auth context the ids are zero and the scope fails
// closed at query-build time.
func HouseholdScope(ctx context.Context) scope.Scope {
	return scope.Household(HouseholdID(ctx))
}

// OwnerScope returns the scope restricted to the authenticated user's own
// records.
func OwnerScope(ctx context.Context) scope.Scope {
	return scope.Owner(HouseholdID(ctx), UserID(ctx))
}
