package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersPlacedTotal counts checkout outcomes.
	OrdersPlacedTotal *prometheus.CounterVec
	// OrderValue records totals of successfully placed orders in minor units.
	OrderValue prometheus.Histogram
	// CartOpsTotal counts cart mutations by operation.
	CartOpsTotal *prometheus.CounterVec
	// ContactMessagesTotal counts inbound contact form submissions by outcome.
	ContactMessagesTotal *prometheus.CounterVec
	// FreeShippingTotal counts quotes that resolved to free delivery.
	FreeShippingTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises the storefront collectors exactly
// once. Callers that never invoke it leave the package vars nil, and all
// increment sites nil-check before use.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersPlacedTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Count of checkout attempts by result.",
		}, []string{"result"}))
		OrderValue = register[prometheus.Histogram](reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_value",
			Help:      "Distribution of placed order totals in minor currency units.",
			Buckets:   prometheus.ExponentialBuckets(100_000, 4, 8),
		}))
		CartOpsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_ops_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"}))
		ContactMessagesTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_messages_total",
			Help:      "Count of contact form submissions by result.",
		}, []string{"result"}))
		FreeShippingTotal = register[prometheus.Counter](reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "free_shipping_quotes_total",
			Help:      "Number of shipping quotes resolved as free delivery.",
		}))
	})
}
