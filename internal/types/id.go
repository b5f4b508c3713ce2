// README: Identifier and geographic point shared by every module.
package types

type ID string

type Point struct {
	Lat float64
	Lng float64
}
