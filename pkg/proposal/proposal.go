// Package proposal runs the unanimous-vote state machine for candidate
// meeting windows. A proposal opens with every roster party PENDING,
// confirms only when all of them accept, and cancels as soon as any one of
// them declines. Terminal proposals never change again; late votes are a
// silent no-op returning the unchanged proposal.
package proposal

import (
	"errors"
	"fmt"
	"time"

	"github.com/seojinp/moyeora/pkg/gateway"
	"github.com/seojinp/moyeora/pkg/logger"
	"github.com/seojinp/moyeora/pkg/models"
	"github.com/seojinp/moyeora/pkg/roster"
	"github.com/seojinp/moyeora/pkg/timegrid"
	"github.com/seojinp/moyeora/pkg/util"
)

var (
	// ErrNotFound means no proposal has the given id.
	ErrNotFound = errors.New("proposal not found")
	// ErrInvalidWindow means the candidate window is malformed.
	ErrInvalidWindow = errors.New("invalid proposal window")
	// ErrInvalidResponse means the vote is neither ACCEPT nor DECLINE.
	ErrInvalidResponse = errors.New("invalid response")
)

// Engine manages proposal lifecycles.
type Engine struct {
	gw     *gateway.Gateway
	roster *roster.Roster
	logger *logger.Logger
}

// New creates a proposal engine.
func New(gw *gateway.Gateway, r *roster.Roster) *Engine {
	return &Engine{
		gw:     gw,
		roster: r,
		logger: logger.New("proposal"),
	}
}

// Create opens a proposal for the given window with every roster party
// PENDING. The creator need not be a roster member and does not count as a
// vote.
func (e *Engine) Create(creatorKey, date, start, end string) (*models.Proposal, error) {
	if !timegrid.ValidDate(date) {
		return nil, fmt.Errorf("%w: date %q", ErrInvalidWindow, date)
	}
	startM, err := timegrid.ToMinutes(start)
	if err != nil {
		return nil, err
	}
	endM, err := timegrid.ToMinutes(end)
	if err != nil {
		return nil, err
	}
	if startM >= endM {
		return nil, fmt.Errorf("%w: %s~%s", ErrInvalidWindow, start, end)
	}

	responses := make(map[string]models.ResponseState)
	for _, k := range e.roster.Keys() {
		responses[k] = models.ResponsePending
	}

	p := models.Proposal{
		ID:              util.NewShortID(),
		Date:            date,
		Start:           start,
		End:             end,
		DurationMinutes: endM - startM,
		CreatorKey:      creatorKey,
		Responses:       responses,
		Status:          models.StatusOpen,
		CreatedAt:       time.Now(),
	}

	err = e.gw.Atomically(func(sched *models.Schedule) error {
		sched.Proposals = append(sched.Proposals, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Created proposal %s for %s %s~%s", p.ID, date, start, end)
	return &p, nil
}

// RecordResponse applies one party's vote and derives the new status. A
// vote on a terminal proposal changes nothing and returns the proposal
// as-is.
func (e *Engine) RecordResponse(proposalID, partyKey string, response models.ResponseState) (*models.Proposal, error) {
	if !e.roster.Has(partyKey) {
		return nil, fmt.Errorf("%w: %q", roster.ErrUnknownParty, partyKey)
	}
	if response != models.ResponseAccept && response != models.ResponseDecline {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResponse, response)
	}

	var updated models.Proposal
	err := e.gw.Atomically(func(sched *models.Schedule) error {
		p := sched.FindProposal(proposalID)
		if p == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, proposalID)
		}

		// The terminal check lives inside the atomic update so a vote
		// racing the closing vote can never flip a settled outcome.
		if p.Status != models.StatusOpen {
			updated = clone(p)
			return nil
		}

		p.Responses[partyKey] = response
		p.Status = derive(e.roster.Keys(), p.Responses)
		updated = clone(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Proposal %s: %s voted %s, status %s", proposalID, partyKey, response, updated.Status)
	return &updated, nil
}

// Get returns the proposal with the given id.
func (e *Engine) Get(proposalID string) (*models.Proposal, error) {
	sched, err := e.gw.Load()
	if err != nil {
		return nil, err
	}

	p := sched.FindProposal(proposalID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, proposalID)
	}
	out := clone(p)
	return &out, nil
}

// Conflicts intersects the proposal's window with every party's current
// busy intervals on its date. The result is derived on every call, never
// stored, so busy edits show up immediately. Purely informational: a
// conflict does not block a vote.
func (e *Engine) Conflicts(p *models.Proposal) (map[string][]models.BusyInterval, error) {
	startM, err := timegrid.ToMinutes(p.Start)
	if err != nil {
		return nil, err
	}
	endM, err := timegrid.ToMinutes(p.End)
	if err != nil {
		return nil, err
	}

	sched, err := e.gw.Load()
	if err != nil {
		return nil, err
	}

	conflicts := make(map[string][]models.BusyInterval)
	for _, key := range e.roster.Keys() {
		for _, b := range sched.BusyOn(p.Date, key) {
			bs, err := timegrid.ToMinutes(b.Start)
			if err != nil {
				return nil, err
			}
			be, err := timegrid.ToMinutes(b.End)
			if err != nil {
				return nil, err
			}
			if timegrid.Overlaps(startM, endM, bs, be) {
				conflicts[key] = append(conflicts[key], b)
			}
		}
	}

	return conflicts, nil
}

// derive computes the status from the full response map: CONFIRMED needs
// every party's ACCEPT, a single DECLINE cancels regardless of anyone still
// PENDING.
func derive(keys []string, responses map[string]models.ResponseState) models.ProposalStatus {
	allAccepted := true
	anyDeclined := false
	for _, k := range keys {
		switch responses[k] {
		case models.ResponseAccept:
		case models.ResponseDecline:
			anyDeclined = true
			allAccepted = false
		default:
			allAccepted = false
		}
	}

	if allAccepted {
		return models.StatusConfirmed
	}
	if anyDeclined {
		return models.StatusCancelled
	}
	return models.StatusOpen
}

// clone copies a proposal, including its response map, so callers never
// hold references into the shared schedule.
func clone(p *models.Proposal) models.Proposal {
	out := *p
	out.Responses = make(map[string]models.ResponseState, len(p.Responses))
	for k, v := range p.Responses {
		out.Responses[k] = v
	}
	return out
}
