package repokit

// Binder binds a domain repo to a Queryer, the pool or a running transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain function to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }
