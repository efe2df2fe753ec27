// Package roster holds the closed set of parties the bot schedules for.
// The roster is data, not code: it is parsed once from configuration and
// never changes at runtime.
package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownParty is returned when a caller's identity does not resolve to
// a roster member. Unknown callers may run read-only queries but never
// mutate anything.
var ErrUnknownParty = errors.New("unknown party")

// Member is one roster entry: an internal key, the Telegram account it maps
// to, and a display name.
type Member struct {
	Key        string
	TelegramID int64
	Name       string
}

// Roster is the fixed party registry.
type Roster struct {
	members []Member
	byID    map[int64]string
	byKey   map[string]Member
}

// Parse builds a roster from a comma-separated list of
// "key:telegramID:displayName" entries, e.g.
// "youngjin:111111:영진,minsu:222222:민수".
func Parse(spec string) (*Roster, error) {
	r := &Roster{
		byID:  make(map[int64]string),
		byKey: make(map[string]Member),
	}

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("bad roster entry %q (want key:telegramID:name)", entry)
		}

		key := strings.TrimSpace(parts[0])
		id, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad telegram id in roster entry %q: %v", entry, err)
		}
		name := strings.TrimSpace(parts[2])

		if key == "" || name == "" {
			return nil, fmt.Errorf("bad roster entry %q (empty key or name)", entry)
		}
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate roster key %q", key)
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("duplicate telegram id %d in roster", id)
		}

		m := Member{Key: key, TelegramID: id, Name: name}
		r.members = append(r.members, m)
		r.byID[id] = key
		r.byKey[key] = m
	}

	if len(r.members) == 0 {
		return nil, errors.New("roster is empty")
	}

	return r, nil
}

// Keys returns the party keys in registry order.
func (r *Roster) Keys() []string {
	keys := make([]string, len(r.members))
	for i, m := range r.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns all roster entries in registry order.
func (r *Roster) Members() []Member {
	return append([]Member(nil), r.members...)
}

// Has reports whether key is a roster member.
func (r *Roster) Has(key string) bool {
	_, ok := r.byKey[key]
	return ok
}

// KeyForTelegramID resolves a Telegram account to a party key.
func (r *Roster) KeyForTelegramID(id int64) (string, bool) {
	key, ok := r.byID[id]
	return key, ok
}

// Name returns the display name for a party key, falling back to the key
// itself for unknown values.
func (r *Roster) Name(key string) string {
	if m, ok := r.byKey[key]; ok {
		return m.Name
	}
	return key
}
