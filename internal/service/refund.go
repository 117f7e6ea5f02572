package service

// RefundBreakdown is the result of the pure refund calculation.
type RefundBreakdown struct {
	RefundAmount     int64
	CancellationFee  int64
	RefundPercentage int
}

// CalculateRefund computes the refund for a cancelled booking. The caller's
// cancellation policy picks the percentage for the tier (time to showtime);
// this function only does the arithmetic, rounding half up, and has no side
// effects.
func CalculateRefund(originalAmount int64, refundPercentage int) (RefundBreakdown, error) {
	if originalAmount <= 0 {
		return RefundBreakdown{}, ErrInvalidAmount
	}
	if refundPercentage < 0 || refundPercentage > 100 {
		return RefundBreakdown{}, ErrInvalidRequest
	}

	refund := (originalAmount*int64(refundPercentage) + 50) / 100
	return RefundBreakdown{
		RefundAmount:     refund,
		CancellationFee:  originalAmount - refund,
		RefundPercentage: refundPercentage,
	}, nil
}
