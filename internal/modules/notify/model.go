// README: Notification events produced by dispatch transitions and the operator notice feed.
package notify

import (
	"time"

	"github.com/google/uuid"

	"limo/internal/types"
)

type Kind string

const (
	KindBookingRequested  Kind = "booking_requested"
	KindDriverAssigned    Kind = "driver_assigned"
	KindBookingConfirmed  Kind = "booking_confirmed"
	KindDriverUnassigned  Kind = "driver_unassigned"
	KindPaymentLinkIssued Kind = "payment_link_issued"
	KindBookingCancelled  Kind = "booking_cancelled"
	KindTripCancelled     Kind = "trip_cancelled"
)

type Audience string

const (
	AudienceClient   Audience = "client"
	AudienceDriver   Audience = "driver"
	AudienceOperator Audience = "operator"
)

// Event is one rendered message. Operator events carry no phone and are never sent.
type Event struct {
	ID        string
	Kind      Kind
	BookingID types.ID
	Audience  Audience
	Phone     string
	Message   string
	CreatedAt time.Time
}

func NewEvent(kind Kind, bookingID types.ID, audience Audience, phone, message string) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		BookingID: bookingID,
		Audience:  audience,
		Phone:     phone,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is an operator-facing entry: acknowledgements and delivery failures.
type Notice struct {
	EventID   string
	Kind      Kind
	BookingID types.ID
	Level     NoticeLevel
	Message   string
	At        time.Time
}
