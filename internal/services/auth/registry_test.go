package auth

import (
	"reflect"
	"testing"
)

func TestContainsToken(t *testing.T) {
	tokens := []string{"a", "b", "c"}

	if !ContainsToken(tokens, "b") {
		t.Fatal("expected b to be present")
	}
	if ContainsToken(tokens, "d") {
		t.Fatal("did not expect d to be present")
	}
	if ContainsToken(nil, "a") {
		t.Fatal("nil list contains nothing")
	}
}

func TestAppendTokenPreservesOrderAndInput(t *testing.T) {
	original := []string{"a", "b"}

	got := AppendToken(original, "c")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(original, want) {
		t.Fatalf("input mutated: %v", original)
	}
}

func TestRemoveTokenDropsFirstMatchOnly(t *testing.T) {
	original := []string{"a", "b", "a", "c"}

	got := RemoveToken(original, "a")
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if want := []string{"a", "b", "a", "c"}; !reflect.DeepEqual(original, want) {
		t.Fatalf("input mutated: %v", original)
	}
}

func TestRemoveTokenMissingIsNoop(t *testing.T) {
	got := RemoveToken([]string{"a", "b"}, "z")
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
