package store

import "context"

// DispatchKind distinguishes trace records for commits and actions.
type DispatchKind string

const (
	DispatchCommit DispatchKind = "commit"
	DispatchAction DispatchKind = "action"
)

// TraceSink receives a record of every dispatch on a store. Implementations
// must treat the record as read-only; the sink is observational and cannot
// influence dispatch results.
type TraceSink interface {
	Dispatched(kind DispatchKind, name string, value, result any, err error)
}

// Commit looks up the named mutation and invokes it synchronously as
// mutation(data, value).
//
// After the mutation returns, the data keys are re-scanned: a mutation must
// not smuggle a reserved word into state, and doing so fails the commit with
// DontTouchMyReservedwords. The mutation has already run at that point; the
// data change is not rolled back.
//
// An unregistered name fails with NoSuchMutationError. On success the
// mutation's return value is handed back.
func (s *Store) Commit(name string, value any) (any, error) {
	result, err := s.commit(name, value)
	if s.sink != nil {
		s.sink.Dispatched(DispatchCommit, name, value, result, err)
	}
	return result, err
}

func (s *Store) commit(name string, value any) (any, error) {
	m, ok := s.mutations[name]
	if !ok {
		return nil, newNoSuchMutationError(name)
	}

	result := m(s.data, value)

	for k := range s.data {
		if isReservedWord(k) {
			return nil, newReservedWordError(groupData, k)
		}
	}
	return result, nil
}

// Action looks up the named action and invokes it as act(ctx, commit, value)
// where commit is this store's Commit. The action's result is returned
// verbatim; the dispatcher does not wrap, retry, or synchronize. Overlapping
// actions on one store are possible and the caller's concern.
//
// An unregistered name fails with NoSuchActionError.
func (s *Store) Action(ctx context.Context, name string, value any) (any, error) {
	act, ok := s.actions[name]
	if !ok {
		err := newNoSuchActionError(name)
		if s.sink != nil {
			s.sink.Dispatched(DispatchAction, name, value, nil, err)
		}
		return nil, err
	}

	result, err := act(ctx, s.Commit, value)
	if s.sink != nil {
		s.sink.Dispatched(DispatchAction, name, value, result, err)
	}
	return result, err
}
