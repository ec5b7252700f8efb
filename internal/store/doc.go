// Package store implements a guarded mutable-state container.
//
// A Store is seeded once with initial data, a set of synchronous mutation
// functions, and a set of possibly-asynchronous action functions. After
// construction all reads see live values, but every write must flow through
// a named mutation (via Commit) or a named action (via Action, which
// receives a restricted commit capability as its only way to change state).
//
// # Access model
//
//   - Get(key) reads the live value at key; reading the reserved "data" key
//     is a deliberate trap and always fails.
//   - Set(key, value) is always a silent no-op. It never mutates and never
//     errors, which guarantees the only mutation path is Commit.
//   - Commit(name, value) invokes a registered mutation as
//     mutation(data, value), then re-checks that no reserved word leaked
//     into the data keys.
//   - Action(ctx, name, value) invokes a registered action as
//     act(ctx, commit, value) and returns its result verbatim.
//
// # Reserved words
//
// The keys "data", "action", and "commit" are forbidden in every seed group
// and in data after any mutation runs.
//
// # Concurrency
//
// Mutations are synchronous and run to completion before Commit returns.
// Actions may block or spawn work; the store places no locking around data,
// so consistency of overlapping multi-step actions is the caller's
// responsibility. Each Store is fully independent: two stores never observe
// each other's keys.
package store
