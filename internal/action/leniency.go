package action

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// entry is a single batch entry after the leniency pass: one canonical kind
// and its generic parameter value, ready for schema validation.
type entry struct {
	kind   Kind
	params interface{}
}

// normalizeEntry is the compatibility shim that runs ahead of strict typed
// construction. It absorbs the degenerate shapes models produce for marker
// actions:
//
//   - a bare null, "" or {} entry is a wait
//   - a bare "done" or "wait" string is that kind
//   - a done/wait value of null, "", {} or any non-object is present with
//     defaults; a non-empty string becomes the text
//   - any other kind with a null value is absent
//   - unknown keys are ignored, legacy aliases are mapped to canonical kinds
//
// Whatever survives must name exactly one kind.
func normalizeEntry(raw []byte, logger *zap.Logger) (entry, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return entry{}, fmt.Errorf("%w: entry is not valid JSON: %v", ErrMalformedBatch, err)
	}

	switch val := v.(type) {
	case nil:
		return entry{kind: KindWait, params: map[string]interface{}{}}, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return entry{kind: KindWait, params: map[string]interface{}{}}, nil
		}
		if k, ok := parseBareKind(val); ok {
			return entry{kind: k, params: map[string]interface{}{}}, nil
		}
		return entry{}, ErrEmptyAction
	case map[string]interface{}:
		if len(val) == 0 {
			return entry{kind: KindWait, params: map[string]interface{}{}}, nil
		}
		return normalizeObject(val, logger)
	default:
		return entry{}, ErrEmptyAction
	}
}

func normalizeObject(obj map[string]interface{}, logger *zap.Logger) (entry, error) {
	// Sorted so ambiguity errors and logs are stable.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		found     entry
		populated []string
	)

	for _, key := range keys {
		kind, ok := lookupKind(key)
		if !ok {
			logger.Debug("Ignoring unknown key in action entry.", zap.String("key", key))
			continue
		}

		params, present := markerOrValue(kind, obj[key])
		if !present {
			continue
		}

		// An alias and its canonical name in one entry count as two kinds.
		populated = append(populated, key)
		if len(populated) == 1 {
			found = entry{kind: kind, params: params}
		}
	}

	switch {
	case len(populated) > 1:
		return entry{}, &AmbiguousActionError{Keys: populated}
	case len(populated) == 0:
		return entry{}, ErrEmptyAction
	}
	return found, nil
}

// markerOrValue decides whether a key's value populates its kind, and returns
// the parameter value to validate.
func markerOrValue(kind Kind, value interface{}) (interface{}, bool) {
	if !kind.NoParams() {
		if value == nil {
			return nil, false
		}
		return value, true
	}

	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case string:
		if strings.TrimSpace(v) == "" {
			return map[string]interface{}{}, true
		}
		return map[string]interface{}{"text": v}, true
	default:
		// null, numbers, booleans and arrays all collapse to the default.
		return map[string]interface{}{}, true
	}
}
