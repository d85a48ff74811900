package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/store"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cartstate_mutations_total",
			Help: "Total number of state mutations by name and result",
		},
		[]string{"mutation", "result"},
	)

	itemCountGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cartstate_item_count",
		Help: "Units currently in the cart",
	})

	cartTotalGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cartstate_cart_total_cents",
		Help: "Current cart total in cents",
	})

	cartHiddenGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cartstate_cart_hidden",
		Help: "1 when the cart dropdown is hidden, 0 otherwise",
	})
)

// ObserveStore keeps the state gauges in step with st. The returned function
// stops observing.
func ObserveStore(st *store.Store) (cancel func()) {
	refresh := func() {
		if count, err := store.Read(st, schema.ItemCount); err == nil {
			itemCountGauge.Set(float64(count))
		}
		if total, err := store.Read(st, schema.CartTotal); err == nil {
			cartTotalGauge.Set(float64(total))
		}
		if hidden, err := store.Read(st, schema.CartHidden); err == nil {
			if hidden {
				cartHiddenGauge.Set(1)
			} else {
				cartHiddenGauge.Set(0)
			}
		}
	}

	refresh()
	return st.Subscribe(func(c store.Change) {
		if c.Has(schema.NameItemCount) || c.Has(schema.NameCartTotal) || c.Has(schema.NameCartHidden) {
			refresh()
		}
	})
}
