package service

import (
	"fmt"

	"hotelops/internal/models"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// DiscountResult carries the three derived discount fields. FinalAmount is
// always base minus discount, clamped at zero; callers never edit it by hand.
type DiscountResult struct {
	DiscountAmount     decimal.Decimal
	DiscountPercentage decimal.Decimal
	FinalAmount        decimal.Decimal
}

// ComputeDiscount converts an operator discount into concrete amounts. It is
// a pure function: the same inputs always produce the same outputs, so a
// discount preview and the committed write cannot disagree.
func ComputeDiscount(base decimal.Decimal, discountType string, value decimal.Decimal) (DiscountResult, error) {
	if value.IsNegative() {
		return DiscountResult{}, fmt.Errorf("%w: value must not be negative, got %s", ErrInvalidDiscount, value)
	}

	var amount, percentage decimal.Decimal
	switch discountType {
	case models.DiscountTypePercentage:
		if value.GreaterThan(oneHundred) {
			return DiscountResult{}, fmt.Errorf("%w: percentage must not exceed 100, got %s", ErrInvalidDiscount, value)
		}
		amount = base.Mul(value).Div(oneHundred)
		percentage = value

	case models.DiscountTypeAmount:
		if value.GreaterThan(base) {
			return DiscountResult{}, fmt.Errorf("%w: amount %s exceeds base %s", ErrInvalidDiscount, value, base)
		}
		amount = value
		if base.IsZero() {
			percentage = decimal.Zero
		} else {
			percentage = value.Div(base).Mul(oneHundred)
		}

	default:
		return DiscountResult{}, fmt.Errorf("%w: unknown type %q", ErrInvalidDiscount, discountType)
	}

	final := base.Sub(amount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return DiscountResult{
		DiscountAmount:     amount,
		DiscountPercentage: percentage,
		FinalAmount:        final,
	}, nil
}
