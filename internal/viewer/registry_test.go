package viewer

import "testing"

func TestAllocateIDReusesContainerID(t *testing.T) {
	r := NewRegistry(func() string { return "generated" })

	id := r.AllocateID(&fakeContainer{id: "panel-3"})
	if id != "panel-3" {
		t.Errorf("expected container id to be reused, got %q", id)
	}
}

func TestAllocateIDGeneratesWhenContainerHasNone(t *testing.T) {
	r := NewRegistry(func() string { return "generated" })

	id := r.AllocateID(&fakeContainer{})
	if id != "generated" {
		t.Errorf("expected generated id, got %q", id)
	}
}

func TestAllocateIDAvoidsLiveCollision(t *testing.T) {
	r := NewRegistry(func() string { return "generated" })
	r.Put("panel-3", &State{id: "panel-3"})

	id := r.AllocateID(&fakeContainer{id: "panel-3"})
	if id != "generated" {
		t.Errorf("expected fresh id for taken container id, got %q", id)
	}
}

func TestAllocateIDDefaultsToUUID(t *testing.T) {
	r := NewRegistry(nil)

	a := r.AllocateID(&fakeContainer{})
	b := r.AllocateID(&fakeContainer{})
	if a == "" || b == "" {
		t.Fatal("expected non-empty generated ids")
	}
	if a == b {
		t.Errorf("expected unique generated ids, got %q twice", a)
	}
}

func TestRegistryPutGetRemove(t *testing.T) {
	r := NewRegistry(nil)

	if _, ok := r.Get("x"); ok {
		t.Error("expected miss on empty registry")
	}

	st := &State{id: "x"}
	r.Put("x", st)

	got, ok := r.Get("x")
	if !ok || got != st {
		t.Error("expected stored state back")
	}
	if r.Len() != 1 {
		t.Errorf("expected length 1, got %d", r.Len())
	}

	r.Remove("x")
	if _, ok := r.Get("x"); ok {
		t.Error("expected entry removed")
	}

	// Removing an absent id is a no-op
	r.Remove("x")
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}
