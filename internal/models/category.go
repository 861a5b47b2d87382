package models

// Category labels accepted for expenses.
const (
	CategoryFood           = "Food"
	CategoryShopping       = "Shopping"
	CategoryBills          = "Bills"
	CategoryEntertainment  = "Entertainment"
	CategoryTransportation = "Transportation"
	CategoryOthers         = "Others"
)

// CategoryDef defines the properties of a category.
type CategoryDef struct {
	Name  string
	Color string
}

// Categories lists the fixed category set in display order.
var Categories = []CategoryDef{
	{CategoryFood, "#fbc9c3"},
	{CategoryShopping, "#f0f4c3"},
	{CategoryBills, "#aed6f1"},
	{CategoryEntertainment, "#e3f2fd"},
	{CategoryTransportation, "#ffebee"},
	{CategoryOthers, "#fffde7"},
}

const fallbackColor = "#94a3b8"

// IsCategory reports whether name is one of the fixed labels.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CategoryColor returns the display colour for a category.
func CategoryColor(name string) string {
	for _, c := range Categories {
		if c.Name == name {
			return c.Color
		}
	}
	return fallbackColor
}
