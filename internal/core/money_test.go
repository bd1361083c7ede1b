package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		1230:   "12.30",
		100000: "1000.00",
		-250:   "-2.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Fatalf("%d cents: expected %q, got %q", cents, want, got)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Money{Cents: 1999}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"amount":19.99}` {
		t.Fatalf("unexpected json %s", out)
	}

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12.5, "b": "3,20"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.A.Cents != 1250 || in.B.Cents != 320 {
		t.Fatalf("unexpected cents %d %d", in.A.Cents, in.B.Cents)
	}

	if err := json.Unmarshal([]byte(`{"a": -1}`), &in); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}
