package cart

// Count returns the total number of units across all rows.
func Count(items []Item) int {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// Total returns the monetary total of the cart.
func Total(items []Item) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
