package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"0.5", 50, false},
		{"7", 700, false},
		{".99", 99, false},
		{"12.345", 1235, false}, // rounds up on third decimal
		{"12.344", 1234, false}, // rounds down on third decimal
		{"0", 0, false},
		{"0.00", 0, false},
		{"", 0, true},
		{"  ", 0, true},
		{"-5.00", 0, true},
		{"+5.00", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"12a.50", 0, true},
	}

	for i, tt := range tests {
		got, err := ParseMoney(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("case %d (%q): expected error, got %d cents", i, tt.input, got.Cents)
			}
			continue
		}
		if err != nil {
			t.Fatalf("case %d (%q): unexpected error: %v", i, tt.input, err)
		}
		if got.Cents != tt.want {
			t.Fatalf("case %d (%q): got %d cents, want %d", i, tt.input, got.Cents, tt.want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 100}).Validate(); err != nil {
		t.Fatalf("positive amount should validate: %v", err)
	}
	if err := (Money{}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if err := (Money{Cents: -1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{-305, "-3.05"},
		{5, "0.05"},
		{0, "0.00"},
		{100000, "1000.00"},
	}
	for i, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tt.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	// Marshals as a decimal string.
	b, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"12.34"` {
		t.Fatalf("got %s, want \"12.34\"", b)
	}

	// Accepts both string and bare number on input.
	for _, input := range []string{`"12.34"`, `12.34`} {
		var m Money
		if err := json.Unmarshal([]byte(input), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if m.Cents != 1234 {
			t.Fatalf("unmarshal %s: got %d cents, want 1234", input, m.Cents)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`true`), &m); err == nil {
		t.Fatal("expected error for non-numeric JSON value")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 250}
	if got := a.Add(b).Cents; got != 1250 {
		t.Fatalf("Add: got %d, want 1250", got)
	}
	if got := b.Sub(a).Cents; got != -750 {
		t.Fatalf("Sub: got %d, want -750", got)
	}
}
