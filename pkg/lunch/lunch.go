// Package lunch picks a lunch menu at random so nobody has to decide.
package lunch

import (
	"math/rand"
)

// Picker picks from a fixed menu list.
type Picker struct {
	menu []string
}

// New creates a picker over the configured menu.
func New(menu []string) *Picker {
	return &Picker{menu: menu}
}

// Pick returns a random menu item, or an empty string when the menu is
// empty.
func (p *Picker) Pick() string {
	if len(p.menu) == 0 {
		return ""
	}
	return p.menu[rand.Intn(len(p.menu))]
}
