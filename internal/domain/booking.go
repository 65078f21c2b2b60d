package domain

type BookingStatus string

const (
	BookingUpcoming  BookingStatus = "upcoming"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID              string        `json:"id"`
	DestinationID   string        `json:"destinationId,omitempty"`
	Destination     *Destination  `json:"destination,omitempty"`
	Date            string        `json:"date"`
	NumberOfGuests  int           `json:"numberOfGuests"`
	TotalPrice      float64       `json:"totalPrice"`
	SpecialRequests string        `json:"specialRequests,omitempty"`
	Status          BookingStatus `json:"status"`
}

type CreateBookingInput struct {
	DestinationID   string `json:"destinationId"`
	Date            string `json:"date"`
	NumberOfGuests  int    `json:"numberOfGuests"`
	SpecialRequests string `json:"specialRequests,omitempty"`
}
