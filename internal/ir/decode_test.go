package ir

import (
	"reflect"
	"testing"
)

func TestTokenizeRespectsQuotedStrings(t *testing.T) {
	got := Tokenize(`WRITEFILE "data.txt" "hello world"`)
	want := []string{"WRITEFILE", `"data.txt"`, `"hello world"`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeHandlesEscapedQuotes(t *testing.T) {
	got := Tokenize(`OUTPUT "say \"hi\""`)
	want := []string{"OUTPUT", `"say \"hi\""`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDecodeLabel(t *testing.T) {
	in := Decode("Lstart:")
	if !in.IsLabel() || in.Label != "Lstart" {
		t.Fatalf("expected label Lstart, got %+v", in)
	}
}

func TestDecodeBinaryAssignment(t *testing.T) {
	in := Decode("T1 = 1 + 2")
	if in.Op != "=" || !reflect.DeepEqual(in.Args, []string{"T1", "1", "+", "2"}) {
		t.Fatalf("unexpected decode: %+v", in)
	}
}

func TestDecodeArrayAssignment(t *testing.T) {
	in := Decode("A[I] = 10")
	if in.Op != "=" || in.Args[0] != "A[I]" {
		t.Fatalf("unexpected decode: %+v", in)
	}
}

func TestDecodeFieldAssignment(t *testing.T) {
	in := Decode("P.X = 5")
	if in.Op != "=" || in.Args[0] != "P.X" {
		t.Fatalf("unexpected decode: %+v", in)
	}
}

func TestDecodeNonAssignment(t *testing.T) {
	in := Decode("IFZ T1 GOTO Lend")
	if in.Op != "IFZ" || !reflect.DeepEqual(in.Args, []string{"T1", "GOTO", "Lend"}) {
		t.Fatalf("unexpected decode: %+v", in)
	}
}

func TestIsTemp(t *testing.T) {
	cases := map[string]bool{
		"T1":    true,
		"T23":   true,
		"Total": false,
		"T":     false,
		"Tx1":   false,
	}
	for tok, want := range cases {
		if got := IsTemp(tok); got != want {
			t.Errorf("IsTemp(%q) = %v, want %v", tok, got, want)
		}
	}
}
