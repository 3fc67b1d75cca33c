package shared

import "context"

// Principal describes the authenticated actor attached to a request.
// It is produced by the auth middleware and consumed by every handler.
type Principal struct {
	UserID      string
	ShopID      string
	Role        string
	Permissions []string
}

// HasPermission reports whether the principal carries the permission.
// The SUPER_ADMIN role implicitly holds every permission.
func (p *Principal) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	if p.Role == "SUPER_ADMIN" {
		return true
	}
	for _, granted := range p.Permissions {
		if granted == perm {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, nil when absent.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ShopScope resolves the shop a request operates on. Shop-bound principals
// are always pinned to their own shop; a super admin must name one explicitly.
func ShopScope(p *Principal, requested string) (string, error) {
	if p == nil {
		return "", ErrForbidden
	}
	if p.Role == "SUPER_ADMIN" {
		if requested == "" {
			return "", ErrValidation
		}
		return requested, nil
	}
	if p.ShopID == "" {
		return "", ErrForbidden
	}
	if requested != "" && requested != p.ShopID {
		return "", ErrForbidden
	}
	return p.ShopID, nil
}
