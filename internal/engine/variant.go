package engine

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/roach88/turnkit/internal/ir"
)

// Variant is a tagged value: a discriminant Type plus named fields.
//
// The wire form is a flat JSON object, {"type": "Roll", "player": 1}.
// A "type" key inside Fields is ignored; Type always wins.
type Variant struct {
	Type   string
	Fields ir.IRObject
}

// Get returns the named field, or nil if absent.
func (v Variant) Get(key string) ir.IRValue {
	return v.Fields[key]
}

// IR returns the flat IR form of the variant.
func (v Variant) IR() ir.IRObject {
	out := make(ir.IRObject, len(v.Fields)+1)
	for k, f := range v.Fields {
		out[k] = f
	}
	out["type"] = ir.IRString(v.Type)
	return out
}

// MarshalJSON implements json.Marshaler using the flat wire form.
func (v Variant) MarshalJSON() ([]byte, error) {
	return v.IR().MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler for the flat wire form.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var obj ir.IRObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	parsed, err := variantFromIR(obj)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Decode copies the variant's fields into out, a pointer to a struct or map.
// Struct fields are matched by their json tag; "type" is included.
func (v Variant) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(ir.ToGo(v.IR())); err != nil {
		return fmt.Errorf("decode %s: %w", v.Type, err)
	}
	return nil
}

// String renders the variant as its flat JSON form.
func (v Variant) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return v.Type
	}
	return string(data)
}

// variantFromIR splits a flat object into tag and fields.
func variantFromIR(val ir.IRValue) (Variant, error) {
	obj, ok := val.(ir.IRObject)
	if !ok {
		return Variant{}, fmt.Errorf("variant must be an object, got %T", val)
	}
	tag, ok := obj["type"].(ir.IRString)
	if !ok || tag == "" {
		return Variant{}, fmt.Errorf("variant has no string \"type\"")
	}

	fields := make(ir.IRObject, len(obj)-1)
	for k, f := range obj {
		if k != "type" {
			fields[k] = f
		}
	}
	return Variant{Type: string(tag), Fields: fields}, nil
}

func newVariant(tag string, fields []ir.IRPair) Variant {
	return Variant{Type: tag, Fields: ir.NewIRObjectFromPairs(fields...)}
}

// Decision describes the input the engine currently expects.
type Decision struct{ Variant }

// Choice is a player's validated answer to a Decision.
type Choice struct{ Variant }

// Interrupt is an automatic transition that needs no player input.
type Interrupt struct{ Variant }

// NewDecision builds a Decision from a tag and fields.
func NewDecision(tag string, fields ...ir.IRPair) Decision {
	return Decision{newVariant(tag, fields)}
}

// NewChoice builds a Choice from a tag and fields.
func NewChoice(tag string, fields ...ir.IRPair) Choice {
	return Choice{newVariant(tag, fields)}
}

// NewInterrupt builds an Interrupt from a tag and fields.
func NewInterrupt(tag string, fields ...ir.IRPair) Interrupt {
	return Interrupt{newVariant(tag, fields)}
}

// EntryKind discriminates pending queue entries.
type EntryKind string

const (
	// KindDecision entries are adopted as-is when drained.
	KindDecision EntryKind = "decision"
	// KindInterrupt entries are resolved by their interrupt reducer.
	KindInterrupt EntryKind = "interrupt"
)

// NextEntry is a pending queue item.
type NextEntry struct {
	Kind  EntryKind `json:"kind"`
	Value Variant   `json:"value"`
}

// IR returns the IR form of the entry.
func (n NextEntry) IR() ir.IRObject {
	return ir.IRObject{
		"kind":  ir.IRString(n.Kind),
		"value": n.Value.IR(),
	}
}

// Queueable is implemented by Decision and Interrupt, the two things a
// reducer may schedule.
type Queueable interface {
	nextEntry() NextEntry
}

func (d Decision) nextEntry() NextEntry  { return NextEntry{Kind: KindDecision, Value: d.Variant} }
func (i Interrupt) nextEntry() NextEntry { return NextEntry{Kind: KindInterrupt, Value: i.Variant} }

// Entries converts scheduled items into queue entries, preserving order.
func Entries(items ...Queueable) []NextEntry {
	out := make([]NextEntry, len(items))
	for i, item := range items {
		out[i] = item.nextEntry()
	}
	return out
}

// Result is what a reducer returns: an optional Decision to adopt now and
// entries to append to the pending queue.
//
// The zero Result is "no progress": nothing adopted, nothing scheduled.
type Result struct {
	Decision *Decision
	Next     []NextEntry
}

// Decide adopts d and schedules next behind the existing queue.
func Decide(d Decision, next ...Queueable) Result {
	return Result{Decision: &d, Next: Entries(next...)}
}

// Defer adopts nothing and schedules next.
func Defer(next ...Queueable) Result {
	return Result{Next: Entries(next...)}
}

// NoProgress returns the empty Result.
func NoProgress() Result {
	return Result{}
}
