// README: Rate card per booking kind and the advisory quote it produces.
package pricing

import (
	"time"

	"limo/internal/modules/booking"
	"limo/internal/types"
)

// Rate amounts are in minor units.
type Rate struct {
	Kind         booking.Kind
	BaseFare     int64
	PerHour      int64
	PerMile      int64
	MinimumHours int
	Currency     string
}

type Quote struct {
	BookingID types.ID
	Kind      booking.Kind
	Total     types.Money
	Hours     int
	Miles     float64
	Duration  time.Duration
	Breakdown map[string]int64
}
