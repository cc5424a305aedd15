package domain

type SortOrder string

const (
	SortByName      SortOrder = "name"
	SortByPriceLow  SortOrder = "price-low"
	SortByPriceHigh SortOrder = "price-high"

	// CategoryAll disables category filtering in a [ProductQuery].
	CategoryAll = "All"
)

// ParseSortOrder returns the zero order, which keeps catalog order, for
// unknown input.
func ParseSortOrder(s string) SortOrder {
	switch o := SortOrder(s); o {
	case SortByName, SortByPriceLow, SortByPriceHigh:
		return o
	}
	return ""
}

type ProductQuery struct {
	Category string
	Search   string
	Sort     SortOrder
}
