package model

import (
	"regexp"
	"strings"
)

// GeneralItemSuffix scopes an item key to the shared, non country-specific classification.
const GeneralItemSuffix = "general"

// Item is a traded good identified by its harmonized-system code.
type Item struct {
	ItemCode string `gorm:"type:varchar(20);column:item_code;primaryKey" json:"itemCode"` // HS code digits, leading zeros kept
	ItemName string `gorm:"type:varchar(255);column:item_name;not null;index" json:"itemName"` // Normalized key, e.g. "slipper156" or "shoegeneral"
}

func (i *Item) TableName() string {
	return "items"
}

// ItemAlias records an additional normalized key that classified to an already stored item code.
type ItemAlias struct {
	Alias    string `gorm:"type:varchar(255);column:alias;primaryKey" json:"alias"`
	ItemCode string `gorm:"type:varchar(20);column:item_code;not null;index" json:"itemCode"`
	Item     Item   `gorm:"foreignKey:ItemCode;references:ItemCode" json:"-"`
}

func (a *ItemAlias) TableName() string {
	return "item_aliases"
}

var digitsPattern = regexp.MustCompile(`[0-9]+`)

// DisplayName strips the country scope from the stored key.
func (i *Item) DisplayName() string {
	name := digitsPattern.ReplaceAllString(i.ItemName, "")
	return strings.TrimSuffix(name, GeneralItemSuffix)
}
