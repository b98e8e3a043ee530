package repokit

import "context"

// BeginHook runs first inside every transaction, on the tx bound Queryer.
// Session settings such as statement_timeout belong here
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks wraps inner so each Tx runs hooks before fn. Statements
// outside a transaction pass through untouched
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	if len(hooks) == 0 {
		return inner
	}
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}
