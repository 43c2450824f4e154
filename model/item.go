package model

import "time"

type ItemAvailability string

const (
	ItemAvailable   ItemAvailability = "AVAILABLE"
	ItemRented      ItemAvailability = "RENTED"
	ItemMaintenance ItemAvailability = "MAINTENANCE"
	ItemUnavailable ItemAvailability = "UNAVAILABLE"
)

// ItemCategories is the fixed category set accepted on create/update.
var ItemCategories = []string{
	"electronics", "books", "sports", "tools", "music", "outdoors", "other",
}

func ValidCategory(c string) bool {
	for _, k := range ItemCategories {
		if k == c {
			return true
		}
	}
	return false
}

type Item struct {
	ID              int64            `json:"id"`
	OwnerID         int64            `json:"owner_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	DailyRate       float64          `json:"daily_rate"`
	SecurityDeposit float64          `json:"security_deposit"`
	Availability    ItemAvailability `json:"availability"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
