package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/lineus/simplestore/internal/store"
	"github.com/lineus/simplestore/internal/testutil"
)

// Builtin returns a registry preloaded with the generic mutations and
// actions available to file-driven seeds.
//
// Builtins take their arguments from the dispatch value, which must be a
// mapping:
//
//	set      {key, to}          write data[key] = to
//	unset    {key}              remove data[key]
//	inc      {key, by}          add by (default 1) to the number at key
//	merge    {<k>: <v>, ...}    write every pair into data
//	push     {key, item}        append item to the list at key
//
//	setLater {key, to, delay_ms}  wait, then commit set
//	transfer {from, to, amount}   commit inc twice, moving amount between keys
func Builtin() *Registry {
	r := New()

	// Registration of the fixed builtin set cannot collide.
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(r.RegisterMutation("set", setBuiltin))
	must(r.RegisterMutation("unset", unsetBuiltin))
	must(r.RegisterMutation("inc", incBuiltin))
	must(r.RegisterMutation("merge", mergeBuiltin))
	must(r.RegisterMutation("push", pushBuiltin))

	must(r.RegisterAction("setLater", setLaterBuiltin))
	must(r.RegisterAction("transfer", transferBuiltin))

	return r
}

func setBuiltin(data map[string]any, value any) any {
	args, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	key, ok := args["key"].(string)
	if !ok {
		return nil
	}
	data[key] = args["to"]
	return args["to"]
}

func unsetBuiltin(data map[string]any, value any) any {
	args, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	key, ok := args["key"].(string)
	if !ok {
		return nil
	}
	removed := data[key]
	delete(data, key)
	return removed
}

func incBuiltin(data map[string]any, value any) any {
	args, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	key, ok := args["key"].(string)
	if !ok {
		return nil
	}
	by := args["by"]
	if by == nil {
		by = 1
	}
	current := data[key]
	if current == nil {
		current = int64(0)
	}
	next, err := addNumbers(current, by)
	if err != nil {
		return nil
	}
	data[key] = next
	return next
}

func mergeBuiltin(data map[string]any, value any) any {
	args, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	for k, v := range args {
		data[k] = v
	}
	return len(args)
}

func pushBuiltin(data map[string]any, value any) any {
	args, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	key, ok := args["key"].(string)
	if !ok {
		return nil
	}
	list, _ := data[key].([]any)
	list = append(list, args["item"])
	data[key] = list
	return len(list)
}

func setLaterBuiltin(ctx context.Context, commit store.CommitFunc, value any) (any, error) {
	args, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("setLater: value must be a mapping with key/to")
	}
	delay := time.Duration(0)
	if ms, err := asInt(args["delay_ms"]); err == nil {
		delay = time.Duration(ms) * time.Millisecond
	}
	if err := testutil.Delay(ctx, delay); err != nil {
		return nil, err
	}
	return commit("set", map[string]any{"key": args["key"], "to": args["to"]})
}

func transferBuiltin(ctx context.Context, commit store.CommitFunc, value any) (any, error) {
	args, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("transfer: value must be a mapping with from/to/amount")
	}
	from, ok := args["from"].(string)
	if !ok {
		return nil, fmt.Errorf("transfer: from must be a string")
	}
	to, ok := args["to"].(string)
	if !ok {
		return nil, fmt.Errorf("transfer: to must be a string")
	}
	amount, err := asInt(args["amount"])
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	if _, err := commit("inc", map[string]any{"key": from, "by": -amount}); err != nil {
		return nil, err
	}
	return commit("inc", map[string]any{"key": to, "by": amount})
}

// addNumbers adds two numeric values, keeping an integer result when both
// operands are integers. CUE decodes integers as int64 and YAML as int, so
// both spellings must be accepted.
func addNumbers(a, b any) (any, error) {
	ai, aErr := asInt(a)
	bi, bErr := asInt(b)
	if aErr == nil && bErr == nil {
		return ai + bi, nil
	}

	af, aErr := asFloat(a)
	if aErr != nil {
		return nil, aErr
	}
	bf, bErr := asFloat(b)
	if bErr != nil {
		return nil, bErr
	}
	return af + bf, nil
}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	}
	return 0, fmt.Errorf("not an integer: %T", v)
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("not a number: %T", v)
}
