// Package types implements the type lattice consumed by the analyser and
// code generator: ABI classifications, stack-item classifications, and the
// composite (sequence/mapping/optional) type builders described in the
// compiler's data model.
//
// Grounded on original_source/boa3/model/type/{itype,primitivetype}.py and
// primitive/{inttype,strtype}.py: each primitive is a singleton descriptor
// with a stable identifier, a default value, and the two Neo-specific
// classifications (ABIType, StackItemType).
package types

import (
	"fmt"
	"strings"
)

// ABIKind is the ABI-facing classification of a type, as it appears in the
// manifest's parameter/return type strings.
type ABIKind string

const (
	ABIAny       ABIKind = "Any"
	ABIInteger   ABIKind = "Integer"
	ABIBoolean   ABIKind = "Boolean"
	ABIString    ABIKind = "String"
	ABIByteArray ABIKind = "ByteArray"
	ABIArray     ABIKind = "Array"
	ABIMap       ABIKind = "Map"
	ABIVoid      ABIKind = "Void"
	ABIInterop   ABIKind = "InteropInterface"
)

// StackItemKind is the runtime stack-item classification. The byte values
// mirror boa3/neo/vm/type/StackItem.py's StackItemType enum so interop
// descriptors and the manifest agree with the VM's own encoding.
type StackItemKind byte

const (
	StackAny              StackItemKind = 0x00
	StackPointer          StackItemKind = 0x10
	StackBoolean          StackItemKind = 0x20
	StackInteger          StackItemKind = 0x21
	StackByteString       StackItemKind = 0x28
	StackBuffer           StackItemKind = 0x30
	StackArray            StackItemKind = 0x40
	StackStruct           StackItemKind = 0x41
	StackMap              StackItemKind = 0x48
	StackInteropInterface StackItemKind = 0x60
)

func (k StackItemKind) String() string {
	switch k {
	case StackAny:
		return "Any"
	case StackPointer:
		return "Pointer"
	case StackBoolean:
		return "Boolean"
	case StackInteger:
		return "Integer"
	case StackByteString:
		return "ByteString"
	case StackBuffer:
		return "Buffer"
	case StackArray:
		return "Array"
	case StackStruct:
		return "Struct"
	case StackMap:
		return "Map"
	case StackInteropInterface:
		return "InteropInterface"
	default:
		return fmt.Sprintf("StackItemKind(%#x)", byte(k))
	}
}

// Capabilities bundles the flags the analyser and code generator consult
// when deciding whether a value may be reassigned, boxed, or iterated.
type Capabilities struct {
	CanReassignValues bool
	IsPrimitive       bool
	IsSequence        bool
}

// Type is a type descriptor in the lattice. Composite types (sequence,
// mapping, optional) carry a non-nil Element/Value and compare structurally
// through Identifier, which a Build call recomputes.
type Type struct {
	id           string
	defaultValue any
	abi          ABIKind
	stackItem    StackItemKind
	caps         Capabilities

	// Element is set for sequence/optional composites (list[T], T | None).
	Element *Type
	// Value is set for mapping composites (Map[K, V]); Element holds K.
	Value *Type
}

// Identifier is the stable, structurally-derived name used for equality,
// diagnostics messages, and manifest parameter type strings.
func (t *Type) Identifier() string {
	if t == nil {
		return None.id
	}
	return t.id
}

func (t *Type) DefaultValue() any          { return t.defaultValue }
func (t *Type) ABI() ABIKind               { return t.abi }
func (t *Type) StackItem() StackItemKind   { return t.stackItem }
func (t *Type) Capabilities() Capabilities { return t.caps }

// Equal is structural equality: same identifier, and (for composites) equal
// element/value types. None.Equal(None) is true; None is never equal to a
// resolved type, matching its role as the bottom "absent" sentinel.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.id != other.id {
		return false
	}
	if !t.Element.Equal(other.Element) {
		return false
	}
	return t.Value.Equal(other.Value)
}

func (t *Type) String() string { return t.Identifier() }

// IsNone reports whether t is the bottom sentinel (unresolved/absent).
func (t *Type) IsNone() bool { return t == nil || t == None }

func primitive(id string, abi ABIKind, stack StackItemKind, def any) *Type {
	return &Type{
		id:           id,
		defaultValue: def,
		abi:          abi,
		stackItem:    stack,
		caps:         Capabilities{CanReassignValues: true, IsPrimitive: true},
	}
}

// The supported primitive lattice. None is the bottom sentinel: an
// unresolved or absent type. It is intentionally excluded from IsPrimitive
// so that a failed resolution can never silently pass as a valid operand
// type.
var (
	None = &Type{id: "none", abi: ABIVoid, stackItem: StackAny}

	Int = primitive("int", ABIInteger, StackInteger, 0)
	Str = primitive("str", ABIString, StackByteString, "")
	// Bool is deliberately NOT a subtype of Int for operator lookup: bool
	// and int are distinct lattice members, and only operator descriptors
	// that name Bool explicitly accept it, so an operator valid for int
	// does not silently accept a bool operand.
	Bool  = primitive("bool", ABIBoolean, StackBoolean, false)
	Bytes = primitive("bytes", ABIByteArray, StackByteString, []byte{})
	Any   = &Type{id: "Any", abi: ABIAny, stackItem: StackAny, caps: Capabilities{CanReassignValues: true}}
)

// BuildSequence constructs the parameterised list[element] composite.
func BuildSequence(element *Type) *Type {
	return &Type{
		id:        "list[" + element.Identifier() + "]",
		abi:       ABIArray,
		stackItem: StackArray,
		caps:      Capabilities{CanReassignValues: true, IsSequence: true},
		Element:   element,
	}
}

// BuildStruct is identical to BuildSequence except for its stack-item kind:
// Neo distinguishes mutable Array from by-value Struct at the VM level,
// even though both are sequence types in the source language.
func BuildStruct(element *Type) *Type {
	t := BuildSequence(element)
	t.id = "struct[" + element.Identifier() + "]"
	t.stackItem = StackStruct
	return t
}

// BuildMapping constructs the parameterised Map[key, value] composite.
func BuildMapping(key, value *Type) *Type {
	return &Type{
		id:        "Map[" + key.Identifier() + ", " + value.Identifier() + "]",
		abi:       ABIMap,
		stackItem: StackMap,
		caps:      Capabilities{CanReassignValues: true},
		Element:   key,
		Value:     value,
	}
}

// BuildOptional constructs the `element | None` composite.
func BuildOptional(element *Type) *Type {
	if element.IsNone() {
		return None
	}
	t := *element
	t.id = element.Identifier() + " | None"
	t.Element = element
	return &t
}

// FromIdentifier resolves a source-level type annotation name against the
// primitive lattice. It does not resolve composite or user-defined types;
// callers fall back to the symbol table for those.
func FromIdentifier(id string) (*Type, bool) {
	switch id {
	case "int":
		return Int, true
	case "str":
		return Str, true
	case "bool":
		return Bool, true
	case "bytes":
		return Bytes, true
	case "Any":
		return Any, true
	case "None":
		return None, true
	default:
		return nil, false
	}
}

// ParseAnnotation resolves a source-level type annotation, including the
// composite forms FromIdentifier does not handle: list[T], Map[K, V],
// Optional[T], and T | None. Unresolvable inner types fail the whole
// annotation rather than silently degrading to Any, so a typo inside a
// composite still reaches the analyser as InvalidType.
func ParseAnnotation(id string) (*Type, bool) {
	if t, ok := FromIdentifier(id); ok {
		return t, true
	}
	if rest, ok := strings.CutSuffix(id, " | None"); ok {
		if t, ok := ParseAnnotation(rest); ok {
			return BuildOptional(t), true
		}
		return nil, false
	}
	open := strings.IndexByte(id, '[')
	if open < 0 || !strings.HasSuffix(id, "]") {
		return nil, false
	}
	base, inner := id[:open], id[open+1:len(id)-1]
	switch base {
	case "list", "List":
		if t, ok := ParseAnnotation(inner); ok {
			return BuildSequence(t), true
		}
	case "Optional":
		if t, ok := ParseAnnotation(inner); ok {
			return BuildOptional(t), true
		}
	case "Map", "dict", "Dict":
		parts := strings.SplitN(inner, ",", 2)
		if len(parts) != 2 {
			return nil, false
		}
		key, keyOK := ParseAnnotation(strings.TrimSpace(parts[0]))
		val, valOK := ParseAnnotation(strings.TrimSpace(parts[1]))
		if keyOK && valOK {
			return BuildMapping(key, val), true
		}
	}
	return nil, false
}

// AssignableTo reports whether a value of type src may be assigned to a
// location of type dst — identity, or src flowing into Any/optional(dst).
func AssignableTo(src, dst *Type) bool {
	if dst.IsNone() {
		return src.IsNone()
	}
	if dst == Any {
		return true
	}
	if src.Equal(dst) {
		return true
	}
	if dst.Element != nil && dst.id == src.Identifier()+" | None" {
		return true
	}
	return false
}
