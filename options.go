package xdr

// Option configures a Reader or Decoder.
type Option func(*options)

type options struct {
	lenientPadding bool
	limit          int64 // 0 = no limit beyond the source itself
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLenientPadding makes decoders consume alignment padding without
// checking that it is zero. Padding is verified by default.
func WithLenientPadding() Option {
	return func(o *options) { o.lenientPadding = true }
}

// WithLimit caps the number of bytes a Reader may consume. Length prefixes
// are checked against the remaining budget before any allocation, which
// matters for sources of unknown size such as network streams.
func WithLimit(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}
