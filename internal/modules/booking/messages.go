// README: SMS copy for booking events.
package booking

import (
	"fmt"
	"strings"
	"time"

	"limo/internal/types"
)

type messages struct {
	brand      string
	payBaseURL string
	layout     string
}

func (m messages) when(t time.Time) string {
	return t.Format(m.layout)
}

func (m messages) requested(b *Booking) string {
	return fmt.Sprintf("%s: Your booking request #%s for %s has been received. We'll send a confirmation once a driver is assigned.",
		m.brand, b.ID, m.when(b.PickupTime))
}

func (m messages) driverAssigned(b *Booking, client *Client) string {
	name := "a client"
	if client != nil && client.Name != "" {
		name = client.Name
	}
	return fmt.Sprintf("%s: New trip assigned! Booking #%s for %s. Pickup: %s on %s. Details: %s",
		m.brand, b.ID, name, b.Pickup, m.when(b.PickupTime), tripDetails(b))
}

func (m messages) confirmed(b *Booking, d *Driver) string {
	return fmt.Sprintf("%s: Your booking #%s is confirmed! Your driver, %s, will pick you up from %s on %s.",
		m.brand, b.ID, d.Name, b.Pickup, m.when(b.PickupTime))
}

func (m messages) unassigned(b *Booking, driverID types.ID) string {
	return fmt.Sprintf("Driver %s unassigned from booking #%s; booking is pending again.", driverID, b.ID)
}

func (m messages) paymentLink(b *Booking) string {
	return fmt.Sprintf("%s: Payment reminder for booking #%s (Total: %s). Please pay securely here: %s",
		m.brand, b.ID, b.TotalFare.String(), m.paymentURL(b.ID))
}

func (m messages) paymentURL(id types.ID) string {
	return m.payBaseURL + "/" + string(id)
}

func (m messages) cancelled(b *Booking) string {
	msg := fmt.Sprintf("%s: Your booking #%s for %s has been cancelled.", m.brand, b.ID, m.when(b.PickupTime))
	if b.CancelReason != nil && *b.CancelReason != "" {
		msg += " Reason: " + *b.CancelReason
	}
	return msg
}

func (m messages) tripCancelled(b *Booking) string {
	return fmt.Sprintf("%s: Trip #%s (pickup %s on %s) has been cancelled. No action needed.",
		m.brand, b.ID, b.Pickup, m.when(b.PickupTime))
}

func tripDetails(b *Booking) string {
	var sb strings.Builder
	switch it := b.Itinerary.(type) {
	case Hourly:
		fmt.Fprintf(&sb, "Hourly service for %d hours.", it.DurationHours)
	case PointToPoint:
		stops := "None"
		if len(it.Stops) > 0 {
			stops = strings.Join(it.Stops, " -> ")
		}
		fmt.Fprintf(&sb, "Stops: %s. Dropoff: %s.", stops, it.Dropoff)
	}
	if b.AirportPickup && b.FlightNumber != "" {
		fmt.Fprintf(&sb, " Airport pickup for flight %s %s.", b.Airline, b.FlightNumber)
	}
	return sb.String()
}
