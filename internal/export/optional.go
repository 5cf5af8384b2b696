package export

// Optional holds a value that may be absent. Absent and empty are different:
// an absent selection means "everything", an empty one selects nothing.
type Optional[T any] struct {
	value T
	set   bool
}

// Some wraps a present value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, set: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsPresent reports whether a value is set.
func (o Optional[T]) IsPresent() bool {
	return o.set
}

// OrElse returns the value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.set {
		return fallback
	}
	return o.value
}
