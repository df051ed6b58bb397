package domain

type AdjustmentResult string

const (
	Applied AdjustmentResult = "applied"
	// Short means stock ran out before the full quantity could be taken.
	Short AdjustmentResult = "short"
)

// Adjustment records one product's stock decrement for an order.
type Adjustment struct {
	ProductID int64            `json:"product_id"`
	Requested int              `json:"requested"`
	Taken     int              `json:"taken"`
	Result    AdjustmentResult `json:"result"`
}

func NewAdjustment(productID int64, requested, available int) Adjustment {
	taken := min(requested, max(available, 0))
	res := Applied
	if taken < requested {
		res = Short
	}
	return Adjustment{ProductID: productID, Requested: requested, Taken: taken, Result: res}
}
