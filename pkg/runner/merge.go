package runner

// Apply merges update into state and returns state.
// Numbers accumulate, nested maps merge recursively, anything else is replaced.
func Apply(state, update map[string]any) map[string]any {
	if state == nil {
		state = make(map[string]any, len(update))
	}
	for key, uv := range update {
		cur, exists := state[key]
		if !exists {
			state[key] = copyValue(uv)
			continue
		}
		switch u := uv.(type) {
		case map[string]any:
			if cm, ok := cur.(map[string]any); ok {
				state[key] = Apply(cm, u)
				continue
			}
			state[key] = copyValue(u)
		default:
			if sum, ok := add(cur, uv); ok {
				state[key] = sum
				continue
			}
			state[key] = copyValue(uv)
		}
	}
	return state
}

// add sums two numbers, keeping int when both are integers.
func add(a, b any) (any, bool) {
	ai, aInt := toInt(a)
	bi, bInt := toInt(b)
	if aInt && bInt {
		return ai + bi, true
	}
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return af + bf, true
	}
	return nil, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = copyValue(vv)
		}
		return out
	case []float64:
		return append([]float64(nil), x...)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = copyValue(x[i])
		}
		return out
	}
	return v
}
