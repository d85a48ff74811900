// Package schema declares the contract between the state store and its
// callers: the query keys that can be read and the mutations that can be
// invoked.
package schema

import (
	"github.com/sugat009/ecommerce-site-with-graphql/internal/domain"
	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
)

// Name is the name a value is stored and read under.
type Name string

// Query key names.
const (
	NameCartHidden  Name = "cartHidden"
	NameCartItems   Name = "cartItems"
	NameItemCount   Name = "itemCount"
	NameCartTotal   Name = "cartTotal"
	NameCurrentUser Name = "currentUser"
)

var names = []Name{NameCartHidden, NameCartItems, NameItemCount, NameCartTotal, NameCurrentUser}

// Names returns every query key name in declaration order.
func Names() []Name {
	out := make([]Name, len(names))
	copy(out, names)
	return out
}

// ParseName validates a query key name.
func ParseName(s string) (Name, error) {
	for _, n := range names {
		if string(n) == s {
			return n, nil
		}
	}
	return "", apperrors.NotFound("query key", s)
}

// Key is a query key bound to the Go type of the value stored under it.
type Key[T any] struct {
	name Name
}

// Name returns the key's name.
func (k Key[T]) Name() Name { return k.name }

func (k Key[T]) String() string { return string(k.name) }

// The five query keys.
var (
	CartHidden  = Key[bool]{name: NameCartHidden}
	CartItems   = Key[domain.CartItems]{name: NameCartItems}
	ItemCount   = Key[int]{name: NameItemCount}
	CartTotal   = Key[domain.Money]{name: NameCartTotal}
	CurrentUser = Key[*domain.User]{name: NameCurrentUser}
)

// Snapshot holds the value of every key at one instant.
type Snapshot struct {
	domain.CartState
	CurrentUser *domain.User `json:"currentUser"`
}

// Defaults returns the snapshot every session starts from: a visible-toggle
// set to false, an empty cart, zero derived values and no signed-in user.
func Defaults() Snapshot {
	return Snapshot{
		CartState: domain.NewCartState(false, domain.CartItems{}),
	}
}

// Value returns the snapshot's value for a key name, or false if the name is
// not a query key.
func (s Snapshot) Value(n Name) (any, bool) {
	switch n {
	case NameCartHidden:
		return s.CartHidden, true
	case NameCartItems:
		return s.CartItems, true
	case NameItemCount:
		return s.ItemCount, true
	case NameCartTotal:
		return s.CartTotal, true
	case NameCurrentUser:
		return s.CurrentUser, true
	default:
		return nil, false
	}
}
