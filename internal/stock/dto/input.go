package dto

type ConsumeItem struct {
	PartNumber string  `json:"part_number"`
	Quantity   float64 `json:"quantity"`
}

type ConsumeInput struct {
	WorkOrderID string
	Technician  string
	Items       []ConsumeItem
}

type ReceiveInput struct {
	PartNumber string
	Quantity   float64
	Actor      string
	Reference  string
	Notes      string
}

// AdjustInput corrects a count. QuantityChange is signed; the resulting stock
// level may not go negative.
type AdjustInput struct {
	PartNumber     string
	QuantityChange float64
	Actor          string
	Reason         string
}
