package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/lineus/simplestore/internal/store"
)

// evaluateAssertions checks every assertion against the final store and the
// recorded trace, appending failures to the result.
func evaluateAssertions(r *Result, assertions []Assertion, s *store.Store) {
	for i, a := range assertions {
		switch a.Type {
		case "state":
			evaluateState(r, i, a, s)
		case "trace_count":
			evaluateTraceCount(r, i, a)
		}
	}
}

func evaluateState(r *Result, i int, a Assertion, s *store.Store) {
	if a.Absent {
		if s.Has(a.Key) {
			r.AddError(fmt.Sprintf("assertion %d: key %q should be absent", i+1, a.Key))
		}
		return
	}

	v, err := s.Get(a.Key)
	if err != nil {
		r.AddError(fmt.Sprintf("assertion %d: read %q: %s", i+1, a.Key, err))
		return
	}
	if !looseEqual(v, a.Equals) {
		r.AddError(fmt.Sprintf("assertion %d: key %q = %v, expected %v", i+1, a.Key, v, a.Equals))
	}
}

func evaluateTraceCount(r *Result, i int, a Assertion) {
	count := 0
	for _, ev := range r.Trace {
		if a.Kind != "" && ev.Kind != a.Kind {
			continue
		}
		if a.Name != "" && ev.Name != a.Name {
			continue
		}
		count++
	}
	if count != a.Count {
		r.AddError(fmt.Sprintf("assertion %d: %d matching trace events, expected %d", i+1, count, a.Count))
	}
}

// looseEqual compares two values through their JSON form, so YAML ints,
// CUE int64s, and Go floats with the same numeric value compare equal, and
// mappings compare by sorted keys. Falls back to DeepEqual for values JSON
// cannot express.
func looseEqual(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ja, jb)
}
