// File: mytutor/handlers/bundle.go
package handlers

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Slots    *SlotHandler
	Bookings *BookingHandler
	Reviews  *ReviewHandler
}
