package auth

import "time"

// Role is the closed set of actor tiers.
type Role string

const (
	// RoleSuperAdmin operates on shops themselves, never on shop contents.
	RoleSuperAdmin Role = "SUPER_ADMIN"
	// RoleShopOwner has the full per-shop permission set.
	RoleShopOwner Role = "SHOP_OWNER"
	// RoleShopManager runs day-to-day stock operations.
	RoleShopManager Role = "SHOP_MANAGER"
)

// Valid reports whether the role is a known tier.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleShopOwner, RoleShopManager:
		return true
	}
	return false
}

// Permission is an atomic capability granted to a user.
type Permission string

const (
	PermViewInventory     Permission = "VIEW_INVENTORY"
	PermAddProduct        Permission = "ADD_PRODUCT"
	PermEditProduct       Permission = "EDIT_PRODUCT"
	PermDeleteProduct     Permission = "DELETE_PRODUCT"
	PermManageStock       Permission = "MANAGE_STOCK"
	PermViewReports       Permission = "VIEW_REPORTS"
	PermManageSettings    Permission = "MANAGE_SETTINGS"
	PermCreateShopManager Permission = "CREATE_SHOP_MANAGER"
	PermManageMetalRates  Permission = "MANAGE_METAL_RATES"
	PermUpdateMetalRates  Permission = "UPDATE_METAL_RATES"
)

// DefaultPermissions maps each role to its default grant set. Super admins
// carry no explicit grants; the principal check treats the role as all-access.
func DefaultPermissions(role Role) []Permission {
	switch role {
	case RoleShopOwner:
		return []Permission{
			PermViewInventory,
			PermAddProduct,
			PermEditProduct,
			PermDeleteProduct,
			PermManageStock,
			PermViewReports,
			PermManageSettings,
			PermCreateShopManager,
			PermManageMetalRates,
			PermUpdateMetalRates,
		}
	case RoleShopManager:
		return []Permission{PermViewInventory, PermManageStock}
	default:
		return nil
	}
}

// User represents an account that can sign in.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	ShopID       string
	Permissions  []Permission
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
