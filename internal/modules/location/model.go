// README: Driver proximity result.
package location

import "limo/internal/types"

type DriverLocation struct {
	DriverID   types.ID
	Name       string
	Position   types.Point
	DistanceKm float64
}
