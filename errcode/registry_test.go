package errcode

import "testing"

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	err := New(ModuleCSRF, 1, "csrf", "CSRF_TOKEN_MISSING", "missing")

	if got := r.Register(err); got != err {
		t.Error("Register should return its argument")
	}
	// same module:key again is fine
	r.Register(New(ModuleCSRF, 1, "csrf", "CSRF_TOKEN_MISSING", "missing"))

	if len(r.All()) != 1 {
		t.Errorf("All() = %v", r.All())
	}
}

func TestRegistry_Conflict(t *testing.T) {
	r := NewRegistry()
	r.Register(New(ModuleCSRF, 1, "csrf", "a", "a"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on code conflict")
		}
	}()
	r.Register(New(ModuleCSRF, 1, "csrf", "b", "b"))
}

func TestRegistry_Locked(t *testing.T) {
	r := NewRegistry()
	r.Lock()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on locked registry")
		}
	}()
	r.Register(New(ModuleAuth, 1, "auth", "a", "a"))
}

func TestRegistry_AllIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register(New(ModuleAuth, 1, "auth", "a", "a"))

	all := r.All()
	all[999] = "x"
	if len(r.All()) != 1 {
		t.Error("All() should return a copy")
	}
}
