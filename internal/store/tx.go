package store

import "github.com/sugat009/ecommerce-site-with-graphql/internal/schema"

// Tx is a read-write transaction. It is only valid inside the function
// passed to Store.Update.
type Tx struct {
	values map[schema.Name]any
	staged map[schema.Name]any
	order  []schema.Name
}

// lookup sees the transaction's own staged writes first.
func (tx *Tx) lookup(n schema.Name) (any, bool) {
	if v, ok := tx.staged[n]; ok {
		return v, true
	}
	v, ok := tx.values[n]
	return v, ok
}

func (tx *Tx) assign(n schema.Name, v any) {
	if _, ok := tx.staged[n]; !ok {
		tx.order = append(tx.order, n)
	}
	tx.staged[n] = v
}
