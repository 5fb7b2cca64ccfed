package textutil

import "testing"

func TestDigitsOnly(t *testing.T) {
	cases := map[string]string{
		"(770) 555-1212":  "7705551212",
		"555.1212 ext 9":  "55512129",
		"no digits":       "",
		"":                "",
		"１２３ fullwidth": "",
	}
	for in, want := range cases {
		if got := DigitsOnly(in); got != want {
			t.Errorf("DigitsOnly(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := "Large Deep Dish Pizza with Pepperoni, Sausage, Bacon"
	got := Truncate(long, 40, "...")
	if len([]rune(got)) != 40 {
		t.Fatalf("expected 40 runes, got %d (%q)", len([]rune(got)), got)
	}
	if got != long[:37]+"..." {
		t.Fatalf("unexpected truncation %q", got)
	}

	exact := "1234567890123456789012345678901234567890"
	if Truncate(exact, 40, "...") != exact {
		t.Fatalf("exactly 40 characters must not be truncated")
	}
	if Truncate("abcdef", 2, "...") != ".." {
		t.Fatalf("marker longer than limit should be cut to the limit")
	}
	if Truncate("abc", 0, "...") != "" {
		t.Fatalf("zero limit should yield empty string")
	}
}

func TestTrimFields(t *testing.T) {
	a, b := "  x ", "\ty\n"
	TrimFields(&a, &b, nil)
	if a != "x" || b != "y" {
		t.Fatalf("TrimFields left %q %q", a, b)
	}
}
