package membership

import "testing"

func TestNormalizeRole(t *testing.T) {
	if rs, ok := NormalizeRole("front-desk"); !ok || rs.ID != "front-desk" || rs.Name != "front-desk" {
		t.Errorf("string role: got %+v ok=%v", rs, ok)
	}

	rs, ok := NormalizeRole(map[string]any{"id": "r1", "name": "Shop Lead", "isEmployee": true})
	if !ok || rs.ID != "r1" || rs.Name != "Shop Lead" || !rs.IsEmployee {
		t.Errorf("object role: got %+v ok=%v", rs, ok)
	}

	// name-only objects get the name as id
	rs, ok = NormalizeRole(map[string]any{"name": "Volunteer"})
	if !ok || rs.ID != "Volunteer" {
		t.Errorf("name-only role: got %+v ok=%v", rs, ok)
	}

	for _, bad := range []any{"", map[string]any{}, 42, nil} {
		if _, ok := NormalizeRole(bad); ok {
			t.Errorf("expected %v to be rejected", bad)
		}
	}
}

func TestHasEmployeeRole(t *testing.T) {
	roles := []any{
		"member",
		map[string]any{"id": "r2", "name": "Instructor", "isEmployee": true},
	}
	if !HasEmployeeRole(roles) {
		t.Error("expected employee role to be detected")
	}
	if HasEmployeeRole([]any{"member", "vip"}) {
		t.Error("bare strings never mark employees")
	}
}
