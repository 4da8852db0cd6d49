package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"lowercases and trims", "  Cement Bags  ", "cement bag"},
		{"hyphens become spaces", "cement-bag", "cement bag"},
		{"underscores become spaces", "cement_bag", "cement bag"},
		{"collapses inner whitespace", "cement   bag", "cement bag"},
		{"strips straight quotes", `6" nails`, "6 nail"},
		{"strips curly quotes", "workers’ hats", "workers hat"},
		{"oes plural", "Tomatoes", "tomato"},
		{"ies plural", "Cherries", "cherry"},
		{"ves plural", "Leaves", "leaf"},
		{"sibilant es plural", "Boxes", "box"},
		{"ches plural", "Benches", "bench"},
		{"shes plural", "Brushes", "brush"},
		{"double s kept", "Grass", "grass"},
		{"us kept", "Citrus", "citrus"},
		{"plain s plural", "apples", "apple"},
		{"short words untouched", "gas", "gas"},
		{"only trailing word singularized", "nails box", "nails box"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestKeySpellingsConverge(t *testing.T) {
	variants := []string{"Apple", "apples", "APPLE", " apple ", "apple's"}
	for _, v := range variants {
		assert.Equal(t, "apple", Key(v), "variant %q", v)
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{"Tomatoes", "cement-bags", "Boxes", "workers’ hats", "Grass"}
	for _, in := range inputs {
		once := Key(in)
		assert.Equal(t, once, Key(once), "input %q", in)
	}
}
