package item

type CreateItemReq struct {
	Title           string  `json:"title" validate:"required,max=120"`
	Description     string  `json:"description" validate:"max=2000"`
	Category        string  `json:"category" validate:"required"`
	DailyRate       float64 `json:"daily_rate" validate:"gte=0"`
	SecurityDeposit float64 `json:"security_deposit" validate:"gte=0"`
}

type UpdateItemReq struct {
	Title           string  `json:"title" validate:"required,max=120"`
	Description     string  `json:"description" validate:"max=2000"`
	Category        string  `json:"category" validate:"required"`
	DailyRate       float64 `json:"daily_rate" validate:"gte=0"`
	SecurityDeposit float64 `json:"security_deposit" validate:"gte=0"`
	Availability    string  `json:"availability" validate:"required,oneof=AVAILABLE MAINTENANCE UNAVAILABLE"`
}
