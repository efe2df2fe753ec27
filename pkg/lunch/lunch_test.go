package lunch

import (
	"testing"
)

func TestPickStaysOnMenu(t *testing.T) {
	menu := []string{"국밥", "김치찌개", "돈까스"}
	p := New(menu)

	onMenu := make(map[string]bool, len(menu))
	for _, m := range menu {
		onMenu[m] = true
	}

	for i := 0; i < 100; i++ {
		if got := p.Pick(); !onMenu[got] {
			t.Fatalf("Pick() = %q, not on the menu", got)
		}
	}
}

func TestPickEmptyMenu(t *testing.T) {
	if got := New(nil).Pick(); got != "" {
		t.Errorf("Pick() on empty menu = %q, want empty", got)
	}
}
