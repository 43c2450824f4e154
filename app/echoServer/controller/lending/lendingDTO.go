package lending

type CreateLendingReq struct {
	ItemID    int64  `json:"item_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Message   string `json:"message" validate:"max=1000"`
}

type RejectReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CancelReq struct {
	Reason string `json:"reason" validate:"max=500"`
}
