package ledger

// Default ledger configuration constants.
const defaultStripeCount = 32

type options struct {
	stripeCount int
}

func defaultOptions() options {
	return options{stripeCount: defaultStripeCount}
}

// Option applies a configuration option to the Ledger.
type Option func(*options)

// WithStripeCount sets the number of lock stripes for per-player
// serialization. More stripes reduce cross-player contention.
func WithStripeCount(count int) Option {
	return func(o *options) {
		if count > 0 {
			o.stripeCount = count
		}
	}
}
