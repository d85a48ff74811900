package schema

import (
	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
)

// Mutation names a write operation callers may invoke.
type Mutation string

// Mutations.
const (
	ToggleCartHidden   Mutation = "toggleCartHidden"
	AddItemToCart      Mutation = "addItemToCart"
	RemoveItemFromCart Mutation = "removeItemFromCart"
	ClearItemFromCart  Mutation = "clearItemFromCart"
	SetCurrentUser     Mutation = "setCurrentUser"
)

var cartKeys = []Name{NameCartItems, NameItemCount, NameCartTotal}

var mutationWrites = map[Mutation][]Name{
	ToggleCartHidden:   {NameCartHidden},
	AddItemToCart:      cartKeys,
	RemoveItemFromCart: cartKeys,
	ClearItemFromCart:  cartKeys,
	SetCurrentUser:     {NameCurrentUser},
}

// Mutations returns every mutation in declaration order.
func Mutations() []Mutation {
	return []Mutation{ToggleCartHidden, AddItemToCart, RemoveItemFromCart, ClearItemFromCart, SetCurrentUser}
}

// ParseMutation validates a mutation name.
func ParseMutation(s string) (Mutation, error) {
	m := Mutation(s)
	if _, ok := mutationWrites[m]; !ok {
		return "", apperrors.NotFound("mutation", s)
	}
	return m, nil
}

// Writes returns the keys the mutation writes in its transaction.
func (m Mutation) Writes() []Name {
	w := mutationWrites[m]
	out := make([]Name, len(w))
	copy(out, w)
	return out
}

// TouchesCart reports whether the mutation rewrites the cart items and their
// derived values.
func (m Mutation) TouchesCart() bool {
	return m == AddItemToCart || m == RemoveItemFromCart || m == ClearItemFromCart
}

func (m Mutation) String() string { return string(m) }
