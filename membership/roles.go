package membership

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleSummary is the canonical form of a member role entry. Stored role
// arrays mix bare role-name strings with {id, name, isEmployee} objects;
// everything downstream works on this shape only.
type RoleSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsEmployee bool   `json:"isEmployee"`
}

// NormalizeRole canonicalizes one stored role entry. Returns false for
// entries that carry neither an id nor a name.
func NormalizeRole(v any) (RoleSummary, bool) {
	switch r := v.(type) {
	case string:
		if r == "" {
			return RoleSummary{}, false
		}
		return RoleSummary{ID: r, Name: r}, true
	case map[string]any:
		return fromMap(r)
	case primitive.M:
		return fromMap(r)
	case primitive.D:
		return fromMap(r.Map())
	case RoleSummary:
		return r, r.ID != "" || r.Name != ""
	default:
		return RoleSummary{}, false
	}
}

func fromMap(m map[string]any) (RoleSummary, bool) {
	rs := RoleSummary{}
	if id, ok := m["id"].(string); ok {
		rs.ID = id
	}
	if name, ok := m["name"].(string); ok {
		rs.Name = name
	}
	if emp, ok := m["isEmployee"].(bool); ok {
		rs.IsEmployee = emp
	}
	if rs.ID == "" && rs.Name == "" {
		return RoleSummary{}, false
	}
	if rs.ID == "" {
		rs.ID = rs.Name
	}
	if rs.Name == "" {
		rs.Name = rs.ID
	}
	return rs, true
}

// NormalizeRoles canonicalizes a stored role array, dropping malformed
// entries.
func NormalizeRoles(roles []any) []RoleSummary {
	out := make([]RoleSummary, 0, len(roles))
	for _, r := range roles {
		if rs, ok := NormalizeRole(r); ok {
			out = append(out, rs)
		}
	}
	return out
}

// HasEmployeeRole reports whether any role entry marks the member as staff.
func HasEmployeeRole(roles []any) bool {
	for _, rs := range NormalizeRoles(roles) {
		if rs.IsEmployee {
			return true
		}
	}
	return false
}
