package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"rental-mngt-admin/internal/domain"
)

const millisPerDay = 24 * 60 * 60 * 1000

// RentalPeriod is the booked span of a rental. ReturnDate may be unset while
// the booking form is being filled.
type RentalPeriod struct {
	RentalDate   *time.Time
	ReturnDate   *time.Time
	WithShipping bool
}

// PricingInput groups everything needed to price a single rental.
type PricingInput struct {
	PricePerDay decimal.Decimal
	Period      RentalPeriod
	ShippingFee decimal.Decimal
}

// RentalCostBreakdown provides detailed cost breakdown
type RentalCostBreakdown struct {
	Days         int64           `json:"days"`
	DaysCost     decimal.Decimal `json:"days_cost"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// BillableDays returns the inclusive number of days between the two dates:
// a rental returned the day it started counts as one day.
//
// The span is not checked for sign. A return date before the rental date
// yields zero or a negative count; callers validate the period upstream.
func BillableDays(rentalDate, returnDate time.Time) int64 {
	ms := returnDate.Sub(rentalDate).Milliseconds()
	return int64(math.Floor(float64(ms)/millisPerDay)) + 1
}

// CalculateTotalPrice computes the total owed for a rental in the currency
// unit of pricePerDay. It returns zero when a date is missing or the daily
// price is zero.
func CalculateTotalPrice(pricePerDay decimal.Decimal, rentalDate, returnDate *time.Time, withShipping bool, shippingFee decimal.Decimal) decimal.Decimal {
	return CalculateRentalCostWithBreakdown(PricingInput{
		PricePerDay: pricePerDay,
		Period: RentalPeriod{
			RentalDate:   rentalDate,
			ReturnDate:   returnDate,
			WithShipping: withShipping,
		},
		ShippingFee: shippingFee,
	}).TotalCost
}

// Total is CalculateTotalPrice applied to the input.
func (in PricingInput) Total() decimal.Decimal {
	return CalculateRentalCostWithBreakdown(in).TotalCost
}

// CalculateRentalCostWithBreakdown prices a rental and keeps the intermediate values.
func CalculateRentalCostWithBreakdown(in PricingInput) RentalCostBreakdown {
	if in.Period.RentalDate == nil || in.Period.ReturnDate == nil || in.PricePerDay.IsZero() {
		return RentalCostBreakdown{
			DaysCost:     decimal.Zero,
			ShippingCost: decimal.Zero,
			TotalCost:    decimal.Zero,
		}
	}

	days := BillableDays(*in.Period.RentalDate, *in.Period.ReturnDate)
	daysCost := in.PricePerDay.Mul(decimal.NewFromInt(days))

	shipping := decimal.Zero
	if in.Period.WithShipping {
		shipping = in.ShippingFee
	}

	return RentalCostBreakdown{
		Days:         days,
		DaysCost:     daysCost,
		ShippingCost: shipping,
		TotalCost:    daysCost.Add(shipping),
	}
}

// QuoteRental prices a booked rental with the machine's current daily rate.
func QuoteRental(rental domain.RentalWithMachine, shippingFee decimal.Decimal) RentalCostBreakdown {
	return CalculateRentalCostWithBreakdown(PricingInput{
		PricePerDay: rental.MachineRented.PricePerDay,
		Period: RentalPeriod{
			RentalDate:   rental.RentalDate,
			ReturnDate:   rental.ReturnDate,
			WithShipping: rental.WithShipping,
		},
		ShippingFee: shippingFee,
	})
}
