// README: Pure geographic and fee calculations shared by all modules.
package geo

import (
	"math"

	"khabar/internal/types"
)

const earthRadiusKm = 6371.0

// Params is the single source of truth for delivery time and fee constants.
// Every caller computes from the same values; per-zone overrides apply only
// to the fee schedule.
type Params struct {
	PrepMinutes   int
	AvgSpeedKmh   float64
	BufferMinutes int
	MinFee        int64
	MaxFee        int64
}

// FeeSchedule is a zone's fee parameters, amounts in paisa.
type FeeSchedule struct {
	BaseFee int64
	PerKm   int64
}

// ETA is an estimated delivery window in whole minutes.
type ETA struct {
	MinMinutes int
	MaxMinutes int
}

// DistanceKm returns the great-circle distance between two points in
// kilometres, rounded to two decimal places.
func DistanceKm(a, b types.Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	rLat1 := radians(a.Lat)
	rLat2 := radians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*100) / 100
}

// EstimateDelivery returns the delivery window for a trip of the given
// distance: preparation time plus travel at the assumed urban speed, rounded
// up to the next whole minute, widened by the buffer window.
func (p Params) EstimateDelivery(distanceKm float64) ETA {
	travel := int(math.Ceil(distanceKm / p.AvgSpeedKmh * 60))
	min := p.PrepMinutes + travel
	return ETA{MinMinutes: min, MaxMinutes: min + p.BufferMinutes}
}

// DeliveryFee computes base + ceil(km) * perKm, clamped to [MinFee, MaxFee].
func (p Params) DeliveryFee(distanceKm float64, fees FeeSchedule) types.Money {
	amount := fees.BaseFee + int64(math.Ceil(distanceKm))*fees.PerKm
	if amount < p.MinFee {
		amount = p.MinFee
	}
	if amount > p.MaxFee {
		amount = p.MaxFee
	}
	return types.Money{Amount: amount, Currency: "BDT"}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
