package types

import "testing"

func TestPrimitivesAreDistinctFromBool(t *testing.T) {
	if Int.Equal(Bool) {
		t.Fatal("int and bool must not compare equal")
	}
}

func TestNoneIsBottomSentinel(t *testing.T) {
	if !None.Equal(None) {
		t.Fatal("None must equal itself")
	}
	if None.Equal(Int) || Int.Equal(None) {
		t.Fatal("None must not equal any resolved type")
	}
}

func TestBuildSequenceIdentifierAndEquality(t *testing.T) {
	a := BuildSequence(Int)
	b := BuildSequence(Int)
	if a.Identifier() != "list[int]" {
		t.Fatalf("unexpected identifier: %s", a.Identifier())
	}
	if !a.Equal(b) {
		t.Fatal("two list[int] composites must compare equal structurally")
	}
	if a.Equal(BuildSequence(Str)) {
		t.Fatal("list[int] must not equal list[str]")
	}
}

func TestBuildStructHasStructStackItem(t *testing.T) {
	s := BuildStruct(Int)
	if s.StackItem() != StackStruct {
		t.Fatalf("expected StackStruct, got %s", s.StackItem())
	}
}

func TestBuildOptionalOfNoneCollapsesToNone(t *testing.T) {
	if BuildOptional(None) != None {
		t.Fatal("Optional[None] must collapse to None")
	}
}

func TestParseAnnotationPrimitives(t *testing.T) {
	for _, id := range []string{"int", "str", "bool", "bytes", "Any", "None"} {
		if _, ok := ParseAnnotation(id); !ok {
			t.Fatalf("expected %q to resolve", id)
		}
	}
}

func TestParseAnnotationSequence(t *testing.T) {
	ty, ok := ParseAnnotation("list[int]")
	if !ok {
		t.Fatal("expected list[int] to resolve")
	}
	if !ty.Equal(BuildSequence(Int)) {
		t.Fatalf("unexpected type: %s", ty)
	}
}

func TestParseAnnotationOptional(t *testing.T) {
	viaSuffix, ok := ParseAnnotation("int | None")
	if !ok {
		t.Fatal("expected 'int | None' to resolve")
	}
	viaGeneric, ok := ParseAnnotation("Optional[int]")
	if !ok {
		t.Fatal("expected Optional[int] to resolve")
	}
	if !viaSuffix.Equal(viaGeneric) {
		t.Fatalf("'int | None' and Optional[int] should be structurally equal, got %s vs %s", viaSuffix, viaGeneric)
	}
}

func TestParseAnnotationMapping(t *testing.T) {
	ty, ok := ParseAnnotation("Map[str, int]")
	if !ok {
		t.Fatal("expected Map[str, int] to resolve")
	}
	if !ty.Equal(BuildMapping(Str, Int)) {
		t.Fatalf("unexpected type: %s", ty)
	}
}

func TestParseAnnotationRejectsUnknownInnerType(t *testing.T) {
	if _, ok := ParseAnnotation("list[bogus]"); ok {
		t.Fatal("expected list[bogus] to fail rather than silently degrade to Any")
	}
}

func TestAssignableToAnyAcceptsEverything(t *testing.T) {
	if !AssignableTo(Int, Any) {
		t.Fatal("every type must be assignable to Any")
	}
}

func TestAssignableToOptionalAcceptsUnderlyingType(t *testing.T) {
	opt := BuildOptional(Int)
	if !AssignableTo(Int, opt) {
		t.Fatal("int must be assignable to int | None")
	}
}
