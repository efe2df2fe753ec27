package models

import (
	"time"
)

// ResponseState is a single party's answer to a proposal.
type ResponseState string

const (
	// ResponsePending means the party has not answered yet.
	ResponsePending ResponseState = "PENDING"
	// ResponseAccept means the party can make it.
	ResponseAccept ResponseState = "ACCEPT"
	// ResponseDecline means the party cannot make it.
	ResponseDecline ResponseState = "DECLINE"
)

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	// StatusOpen means votes are still being collected.
	StatusOpen ProposalStatus = "OPEN"
	// StatusConfirmed means every party accepted. Terminal.
	StatusConfirmed ProposalStatus = "CONFIRMED"
	// StatusCancelled means at least one party declined. Terminal.
	StatusCancelled ProposalStatus = "CANCELLED"
)

// BusyInterval is a half-open time range on one date during which a party
// is unavailable.
type BusyInterval struct {
	ID        string    `json:"id"`
	OwnerKey  string    `json:"owner_key"`
	Date      string    `json:"date"`  // YYYY-MM-DD
	Start     string    `json:"start"` // HH:MM
	End       string    `json:"end"`   // HH:MM, "24:00" allowed
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Proposal is one candidate meeting window put to a unanimous vote.
type Proposal struct {
	ID              string                   `json:"id"`
	Date            string                   `json:"date"`
	Start           string                   `json:"start"`
	End             string                   `json:"end"`
	DurationMinutes int                      `json:"duration_minutes"`
	CreatorKey      string                   `json:"creator_key,omitempty"`
	Responses       map[string]ResponseState `json:"responses"`
	Status          ProposalStatus           `json:"status"`
	CreatedAt       time.Time                `json:"created_at"`
}

// Candidate is a feasible meeting window found by the availability search.
type Candidate struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Schedule is the full store of record: every busy interval and every
// proposal, in insertion order.
type Schedule struct {
	Busy      []BusyInterval `json:"busy"`
	Proposals []Proposal     `json:"proposals"`
}

// FindProposal returns a pointer into s.Proposals for the given id, or nil.
func (s *Schedule) FindProposal(id string) *Proposal {
	for i := range s.Proposals {
		if s.Proposals[i].ID == id {
			return &s.Proposals[i]
		}
	}
	return nil
}

// BusyOn returns the busy intervals on a date, optionally filtered to one
// owner, preserving insertion order.
func (s *Schedule) BusyOn(date, ownerKey string) []BusyInterval {
	var out []BusyInterval
	for _, b := range s.Busy {
		if b.Date != date {
			continue
		}
		if ownerKey != "" && b.OwnerKey != ownerKey {
			continue
		}
		out = append(out, b)
	}
	return out
}
