package model

import "strings"

// RoleMain is the role of the shop's published theme.
const RoleMain = "MAIN"

// Theme is a storefront theme as reported by the Admin API.
type Theme struct {
	ID   string `json:"id"` // global id, e.g. gid://shopify/OnlineStoreTheme/123
	Name string `json:"name"`
	Role string `json:"role"`
}

// NumericID extracts the trailing numeric id from the global id
// (gid://shopify/Theme/123456789 -> 123456789).
func (t Theme) NumericID() string {
	if i := strings.LastIndex(t.ID, "/"); i >= 0 {
		return t.ID[i+1:]
	}
	return t.ID
}

// IsMain reports whether this is the published theme.
func (t Theme) IsMain() bool {
	return t.Role == RoleMain
}
