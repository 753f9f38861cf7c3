package action

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// DecodeOptions tune batch-level policy. Per-entry rules are fixed.
type DecodeOptions struct {
	// Strict fails the whole batch when any entry fails to decode.
	Strict bool
	// Truncate keeps the first MaxBatchSize entries of an oversized batch
	// instead of rejecting it.
	Truncate bool
}

// Decoder turns raw model output into typed actions.
type Decoder struct {
	logger *zap.Logger
	opts   DecodeOptions
}

// NewDecoder creates a Decoder. A nil logger is replaced with a no-op one.
func NewDecoder(logger *zap.Logger, opts DecodeOptions) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{logger: logger.Named("action_decoder"), opts: opts}
}

var defaultDecoder = NewDecoder(nil, DecodeOptions{})

// Decode decodes one entry with default options.
func Decode(raw []byte) (Instance, error) {
	return defaultDecoder.Decode(raw)
}

// DecodeBatch decodes a batch with the given options and no logging.
func DecodeBatch(raw []byte, opts DecodeOptions) (Batch, []*EntryError, error) {
	return NewDecoder(nil, opts).DecodeBatch(raw)
}

// Decode validates a single batch entry and returns its typed instance.
func (d *Decoder) Decode(raw []byte) (Instance, error) {
	e, err := normalizeEntry(raw, d.logger)
	if err != nil {
		return nil, err
	}
	if err := validateParams(e.kind, e.params); err != nil {
		return nil, err
	}
	return buildInstance(e.kind, e.params)
}

// DecodeBatch decodes an ordered list of entries. The payload is either a
// JSON array or an envelope object carrying the array under "action" or
// "actions". Entry failures are isolated: the returned Batch holds every
// entry that decoded, in order, and the EntryErrors describe the rest. A
// non-nil error means the batch as a whole was rejected.
func (d *Decoder) DecodeBatch(raw []byte) (Batch, []*EntryError, error) {
	entries, err := splitEntries(raw)
	if err != nil {
		return nil, nil, err
	}

	if len(entries) > MaxBatchSize {
		if !d.opts.Truncate {
			return nil, nil, fmt.Errorf("%w: %d entries, limit is %d", ErrBatchTooLarge, len(entries), MaxBatchSize)
		}
		d.logger.Warn("Truncating oversized action batch.",
			zap.Int("entries", len(entries)),
			zap.Int("limit", MaxBatchSize))
		entries = entries[:MaxBatchSize]
	}

	batch := make(Batch, 0, len(entries))
	var failures []*EntryError

	for i, raw := range entries {
		inst, err := d.Decode(raw)
		if err != nil {
			ee := &EntryError{Index: i, Err: err}
			if d.opts.Strict {
				return nil, []*EntryError{ee}, fmt.Errorf("strict batch rejected: %w", ee)
			}
			d.logger.Debug("Dropping undecodable action entry.", zap.Int("index", i), zap.Error(err))
			failures = append(failures, ee)
			continue
		}
		batch = append(batch, inst)
	}
	return batch, failures, nil
}

// SourceIndexes maps each of the decoded instances DecodeBatch returned back
// to its position in the submitted payload. failures must be the EntryErrors
// from the same call.
func SourceIndexes(decoded int, failures []*EntryError) []int {
	out := make([]int, 0, decoded)
	f := 0
	for i := 0; len(out) < decoded; i++ {
		if f < len(failures) && failures[f].Index == i {
			f++
			continue
		}
		out = append(out, i)
	}
	return out
}

func splitEntries(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
		}
		inner, ok := envelope["action"]
		if !ok {
			inner, ok = envelope["actions"]
		}
		if !ok {
			return nil, fmt.Errorf("%w: object has no \"action\" list", ErrMalformedBatch)
		}
		return splitEntries(inner)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	return entries, nil
}

// checker is implemented by payloads with rules the schema cannot express.
type checker interface {
	check() error
}

func buildInstance(k Kind, params interface{}) (Instance, error) {
	factory, ok := payloadFactories[k]
	if !ok {
		return nil, invalidParams(k, "", "unsupported action kind")
	}
	buf, err := json.Marshal(params)
	if err != nil {
		return nil, invalidParams(k, "", "%v", err)
	}
	ptr := factory()
	if err := json.Unmarshal(buf, ptr); err != nil {
		return nil, invalidParams(k, "", "%v", err)
	}
	inst := derefPayload(ptr)
	if c, ok := inst.(checker); ok {
		if err := c.check(); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// check rejects repeated keys; a combo needs distinct keys to mean anything.
func (p PressCombo) check() error {
	seen := make(map[string]string, 3)
	for i, key := range p.Keys() {
		norm := strings.ToLower(strings.TrimSpace(key))
		field := fmt.Sprintf("key%d", i+1)
		if norm == "" {
			return invalidParams(KindPressCombo, field, "key name is blank")
		}
		if prev, dup := seen[norm]; dup {
			return invalidParams(KindPressCombo, field, "duplicates %s (%q)", prev, key)
		}
		seen[norm] = field
	}
	return nil
}

// Encode returns the canonical serialized form of an instance: a single-key
// object naming the kind. Decoding the result yields an equal instance.
func Encode(inst Instance) ([]byte, error) {
	if inst == nil {
		return nil, fmt.Errorf("%w: nil instance", ErrEmptyAction)
	}
	return json.Marshal(map[string]Instance{string(inst.Kind()): inst})
}

// EncodeBatch serializes a batch as a JSON array of canonical entries.
func EncodeBatch(b Batch) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(b))
	for i, inst := range b {
		enc, err := Encode(inst)
		if err != nil {
			return nil, fmt.Errorf("action[%d]: %w", i, err)
		}
		out = append(out, enc)
	}
	return json.Marshal(out)
}
