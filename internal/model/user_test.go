package model

import "testing"

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleManager, RoleUser} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "Admin", "owner", " user"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}

// Every route is gated by RoleAtLeast: reads need user, writes need
// manager, zone removal and account management need admin.
func TestRoleGates(t *testing.T) {
	gates := []struct {
		gate    string
		minimum string
		allowed []string
	}{
		{"read", RoleUser, []string{RoleUser, RoleManager, RoleAdmin}},
		{"write", RoleManager, []string{RoleManager, RoleAdmin}},
		{"admin", RoleAdmin, []string{RoleAdmin}},
	}

	for _, g := range gates {
		allowed := map[string]bool{}
		for _, role := range g.allowed {
			allowed[role] = true
		}
		for _, role := range []string{RoleUser, RoleManager, RoleAdmin, "", "auditor"} {
			if got := RoleAtLeast(role, g.minimum); got != allowed[role] {
				t.Errorf("%s gate: RoleAtLeast(%q, %q) = %v, want %v", g.gate, role, g.minimum, got, allowed[role])
			}
		}
	}

	if RoleAtLeast(RoleAdmin, "auditor") {
		t.Error("an unknown minimum role must deny everyone")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("hunter2"); err == nil {
		t.Error("expected a 7 character password to be rejected")
	}
	if err := ValidatePassword(""); err == nil {
		t.Error("expected an empty password to be rejected")
	}
	for _, pw := range []string{"8charsOK", "correct horse battery staple"} {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("ValidatePassword(%q): %v", pw, err)
		}
	}
}
