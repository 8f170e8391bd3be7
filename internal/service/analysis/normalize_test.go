package analysis_test

import (
	"testing"

	"github.com/mbodji/fueltrack/internal/service/analysis"
)

func TestNormalizeInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Chicken Breast", "chicken breast"},
		{"strips punctuation", "Chicken, 200g!", "chicken 200g"},
		{"collapses whitespace", "  chicken   200g \t rice ", "chicken 200g rice"},
		{"empty", "", ""},
		{"whitespace only", "   \n\t", ""},
		{"punctuation only", "?!,.;", ""},
		{"mixed", "2 Eggs (fried) + Toast!!", "2 eggs fried toast"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := analysis.NormalizeInput(tc.input); got != tc.want {
				t.Fatalf("NormalizeInput(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeInputIsStableAcrossVariants(t *testing.T) {
	t.Parallel()

	variants := []string{
		"chicken 200g",
		"Chicken, 200g!",
		"  CHICKEN   200G  ",
		"chicken... 200g???",
	}

	want := analysis.NormalizeInput(variants[0])
	for _, v := range variants[1:] {
		if got := analysis.NormalizeInput(v); got != want {
			t.Fatalf("NormalizeInput(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNormalizeInputIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Chicken, 200g!", "2 Eggs (fried)", "oatmeal with honey"}
	for _, in := range inputs {
		once := analysis.NormalizeInput(in)
		if twice := analysis.NormalizeInput(once); twice != once {
			t.Fatalf("normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
