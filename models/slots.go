package models

import "time"

// Slot is a provider's offered time window together with its booking log.
type Slot struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	StartTime  time.Time `bson:"startTime" json:"startTime"`
	EndTime    time.Time `bson:"endTime" json:"endTime"`
	Available  bool      `bson:"available" json:"available"`

	// Deactivated is set by the provider and never cleared. A deactivated slot
	// is not reopened by a cancellation.
	Deactivated bool `bson:"deactivated" json:"deactivated"`

	// BookingHistory is append-only in creation order.
	BookingHistory []Booking `bson:"bookingHistory" json:"bookingHistory"`
	// ActiveBookingID points at the most recently appended booking. That booking
	// is live only while its state is non-terminal.
	ActiveBookingID string `bson:"activeBookingId,omitempty" json:"activeBookingId,omitempty"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Overlaps reports whether [start, end) intersects the slot's window.
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}

// CurrentBooking returns the booking ActiveBookingID points at, or nil when the
// history is empty.
func (s *Slot) CurrentBooking() *Booking {
	if s.ActiveBookingID == "" {
		return nil
	}
	for i := range s.BookingHistory {
		if s.BookingHistory[i].ID == s.ActiveBookingID {
			return &s.BookingHistory[i]
		}
	}
	return nil
}

// LiveBooking returns the current booking only while it is non-terminal.
func (s *Slot) LiveBooking() *Booking {
	b := s.CurrentBooking()
	if b == nil || b.State.Terminal() {
		return nil
	}
	return b
}

// AppendBooking adds b to the history and makes it the current booking.
func (s *Slot) AppendBooking(b Booking) *Booking {
	s.BookingHistory = append(s.BookingHistory, b)
	s.ActiveBookingID = b.ID
	return &s.BookingHistory[len(s.BookingHistory)-1]
}

// HasBookingBy reports whether clientID appears anywhere in the history.
func (s *Slot) HasBookingBy(clientID string) bool {
	for _, b := range s.BookingHistory {
		if b.ClientID == clientID {
			return true
		}
	}
	return false
}

// LatestBookingBy returns clientID's booking with the latest change time.
func (s *Slot) LatestBookingBy(clientID string) *Booking {
	var latest *Booking
	for i := range s.BookingHistory {
		b := &s.BookingHistory[i]
		if b.ClientID != clientID {
			continue
		}
		if latest == nil || !b.LastChangeTime.Before(latest.LastChangeTime) {
			latest = b
		}
	}
	return latest
}

// Clone returns a deep copy, so callers can mutate without aliasing the history.
func (s *Slot) Clone() *Slot {
	c := *s
	if s.BookingHistory != nil {
		c.BookingHistory = make([]Booking, len(s.BookingHistory))
		copy(c.BookingHistory, s.BookingHistory)
	}
	return &c
}

// SlotSummary is an available slot joined with its provider's public card.
type SlotSummary struct {
	ID           string    `json:"id"`
	ProviderID   string    `json:"providerId"`
	ProviderName string    `json:"providerName"`
	HourlyRate   float64   `json:"hourlyRate"`
	Rating       float64   `json:"rating"`
	Subjects     []Subject `json:"subjects"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
}

// SlotFilter narrows a listing of available slots. Nil or empty fields are ignored.
type SlotFilter struct {
	Subject      string     `form:"subject" json:"subject,omitempty"`
	ProviderName string     `form:"providerName" json:"providerName,omitempty"`
	MinPrice     *float64   `form:"minPrice" json:"minPrice,omitempty"`
	MaxPrice     *float64   `form:"maxPrice" json:"maxPrice,omitempty"`
	MinRating    *float64   `form:"minRating" json:"minRating,omitempty"`
	MaxRating    *float64   `form:"maxRating" json:"maxRating,omitempty"`
	From         *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00" json:"from,omitempty"`
	To           *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00" json:"to,omitempty"`
}

// CreateSlotRequest is the payload for publishing a slot.
type CreateSlotRequest struct {
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
}

// ModifySlotRequest changes a slot's window. A nil field keeps the current value.
type ModifySlotRequest struct {
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}
