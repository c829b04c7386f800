package di

import "testing"

type greeter struct{ name string }

func TestContainer_LazySingleton(t *testing.T) {
	c := NewContainer()
	calls := 0

	tok := NewToken[*greeter]("test.greeter")
	RegisterToken(c, tok, func(sr ServiceRegistry) *greeter {
		calls++
		return &greeter{name: sr.Get("name").(string)}
	})
	c.Register("name", "sentinel")

	first := GetToken(c, tok)
	second := GetToken(c, tok)

	if first != second {
		t.Error("expected same instance")
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
	if first.name != "sentinel" {
		t.Errorf("name = %q", first.name)
	}
}

func TestContainer_PanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewContainer().Get("missing")
}

func TestContainer_PanicsOnCycle(t *testing.T) {
	c := NewContainer()
	c.RegisterFactory("a", func(sr ServiceRegistry) any { return sr.Get("b") })
	c.RegisterFactory("b", func(sr ServiceRegistry) any { return sr.Get("a") })

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	c.Get("a")
}

func TestContainer_Has(t *testing.T) {
	c := NewContainer()
	if c.Has("x") {
		t.Error("unexpected registration")
	}
	c.Register("x", 1)
	if !c.Has("x") {
		t.Error("expected registration")
	}
}
