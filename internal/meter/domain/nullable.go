package domain

// Nullable tracks whether a field was present in a partial update and, if
// so, whether it was explicitly null.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](value T) Nullable[T] {
	return Nullable[T]{Set: true, Value: value}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

// Ptr returns nil for an absent or null field.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}
