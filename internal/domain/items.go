package domain

// AddItem returns a new list with newItem merged in. An existing entry with
// the same ID has its quantity raised by newItem.Quantity, or by 1 when no
// quantity is given; its other fields are left as they were. A new entry is
// appended with quantity defaulted to 1.
func AddItem(items CartItems, newItem CartItem) CartItems {
	step := newItem.Quantity
	if step <= 0 {
		step = 1
	}

	out := items.Clone()
	if i := out.Find(newItem.ID); i >= 0 {
		out[i].Quantity += step
		return out
	}

	newItem.Quantity = step
	return append(out, newItem)
}

// RemoveItem returns a new list with the target's quantity lowered by one,
// dropping the entry when it reaches zero. A target that is not in the cart
// leaves the list unchanged.
func RemoveItem(items CartItems, target CartItem) CartItems {
	i := items.Find(target.ID)
	if i < 0 {
		return items
	}
	if items[i].Quantity > 1 {
		out := items.Clone()
		out[i].Quantity--
		return out
	}
	return without(items, i)
}

// ClearItem returns a new list without the target, whatever its quantity.
// A target that is not in the cart leaves the list unchanged.
func ClearItem(items CartItems, target CartItem) CartItems {
	i := items.Find(target.ID)
	if i < 0 {
		return items
	}
	return without(items, i)
}

// ItemCount returns the number of units in the cart.
func ItemCount(items CartItems) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// CartTotal returns the cart value in cents.
func CartTotal(items CartItems) Money {
	var total Money
	for _, item := range items {
		total += item.Price * Money(item.Quantity)
	}
	return total
}

func without(items CartItems, i int) CartItems {
	out := make(CartItems, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
