package fragment

import (
	"reflect"
	"testing"
)

func TestArgvSplitSimple(t *testing.T) {
	got, err := ArgvSplit("A B")
	if err != nil {
		t.Fatalf("ArgvSplit() error = %v", err)
	}
	want := []string{"A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgvSplit() = %v, want %v", got, want)
	}
}

func TestArgvSplitBackslashPassesThroughOutsideQuotes(t *testing.T) {
	got, err := ArgvSplit(`A\ B`)
	if err != nil {
		t.Fatalf("ArgvSplit() error = %v", err)
	}
	want := []string{`A\ B`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgvSplit() = %v, want %v", got, want)
	}
}

func TestArgvSplitDoubleQuoted(t *testing.T) {
	got, err := ArgvSplit(`"A B"`)
	if err != nil {
		t.Fatalf("ArgvSplit() error = %v", err)
	}
	want := []string{"A B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgvSplit() = %v, want %v", got, want)
	}
}

func TestArgvSplitSingleQuotedKeepsBackslash(t *testing.T) {
	got, err := ArgvSplit(`'A\B'`)
	if err != nil {
		t.Fatalf("ArgvSplit() error = %v", err)
	}
	want := []string{`A\B`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgvSplit() = %v, want %v", got, want)
	}
}

func TestArgvSplitDoubleQuoteEscapes(t *testing.T) {
	got, err := ArgvSplit(`"A\"B\\C\nD"`)
	if err != nil {
		t.Fatalf("ArgvSplit() error = %v", err)
	}
	want := []string{`A"B\C\nD`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgvSplit() = %v, want %v", got, want)
	}
}

func TestArgvSplitUnterminatedSingleQuote(t *testing.T) {
	if _, err := ArgvSplit(`'A B`); err == nil {
		t.Error("ArgvSplit() error = nil, want unterminated-quote error")
	}
}

func TestArgvSplitUnterminatedDoubleQuote(t *testing.T) {
	if _, err := ArgvSplit(`"A B`); err == nil {
		t.Error("ArgvSplit() error = nil, want unterminated-quote error")
	}
}

func TestArgvSplitEmptyFromWhitespace(t *testing.T) {
	got, err := ArgvSplit("   \t  ")
	if err != nil {
		t.Fatalf("ArgvSplit() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ArgvSplit() = %v, want empty", got)
	}
}

func TestArgvSplitEmptyQuotedWordSurvives(t *testing.T) {
	got, err := ArgvSplit(`''`)
	if err != nil {
		t.Fatalf("ArgvSplit() error = %v", err)
	}
	want := []string{""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgvSplit() = %v, want %v", got, want)
	}
}

func TestArgvSplitMultipleWords(t *testing.T) {
	got, err := ArgvSplit(`-I/usr/include -L/usr/lib -lfoo`)
	if err != nil {
		t.Fatalf("ArgvSplit() error = %v", err)
	}
	want := []string{"-I/usr/include", "-L/usr/lib", "-lfoo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ArgvSplit() = %v, want %v", got, want)
	}
}
