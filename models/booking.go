package models

import "time"

// BookingState is the lifecycle state of one reservation attempt.
type BookingState string

const (
	BookingPending                BookingState = "PENDING"
	BookingCancelled              BookingState = "CANCELLED"
	BookingAwaitingProviderAction BookingState = "AWAITING_PROVIDER_ACTION"
	BookingCompleted              BookingState = "COMPLETED"
	BookingNoShow                 BookingState = "NO_SHOW"
)

// bookingTransitions lists every forward edge of the reservation state machine.
var bookingTransitions = map[BookingState][]BookingState{
	BookingPending:                {BookingCancelled, BookingAwaitingProviderAction},
	BookingAwaitingProviderAction: {BookingCompleted, BookingNoShow},
}

// Valid reports whether s is a known state.
func (s BookingState) Valid() bool {
	switch s {
	case BookingPending, BookingCancelled, BookingAwaitingProviderAction, BookingCompleted, BookingNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s BookingState) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted || s == BookingNoShow
}

// CanTransitionTo reports whether s -> next is an edge of the state machine.
func (s BookingState) CanTransitionTo(next BookingState) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is one client's reservation attempt against a Slot. It lives inside
// the slot document's history and is never removed.
type Booking struct {
	ID             string       `bson:"id" json:"id"`
	ClientID       string       `bson:"clientId" json:"clientId"`
	State          BookingState `bson:"state" json:"state"`
	CreatedAt      time.Time    `bson:"createdAt" json:"createdAt"`
	LastChangeTime time.Time    `bson:"lastChangeTime" json:"lastChangeTime"`
}

// Transition moves the booking to next if the edge exists and stamps the change time.
func (b *Booking) Transition(next BookingState, at time.Time) bool {
	if !b.State.CanTransitionTo(next) {
		return false
	}
	b.State = next
	b.LastChangeTime = at
	return true
}
