package trie

import (
	"reflect"
	"testing"
)

func TestInsertAndContains(t *testing.T) {
	tr := New()
	tr.Insert("apple")
	tr.Insert("app")

	if !tr.Contains("apple") {
		t.Error("expected Contains(apple) = true")
	}
	if !tr.Contains("app") {
		t.Error("expected Contains(app) = true")
	}
	if tr.Contains("appl") {
		t.Error("prefix of an inserted word must not count as a word")
	}
	if tr.Contains("") {
		t.Error("empty string must not be contained")
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
}

func TestInsertCaseFoldsAndDedupes(t *testing.T) {
	tr := New()
	tr.Insert("Apple")
	tr.Insert("APPLE")
	tr.Insert("apple")

	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after duplicate inserts", tr.Len())
	}
	got := tr.Autocomplete("app", 10)
	if !reflect.DeepEqual(got, []string{"apple"}) {
		t.Errorf("Autocomplete(app) = %v, want [apple]", got)
	}
}

func TestInsertEmptyIsNoop(t *testing.T) {
	tr := New()
	tr.Insert("")
	if tr.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tr.Len())
	}
}

func TestAutocomplete(t *testing.T) {
	tr := New()
	for _, w := range []string{"apple", "application", "apply", "banana", "app"} {
		tr.Insert(w)
	}

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{"sorted_order", "app", 10, []string{"app", "apple", "application", "apply"}},
		{"limit_applied", "app", 2, []string{"app", "apple"}},
		{"exact_word", "banana", 10, []string{"banana"}},
		{"unknown_prefix", "zebra", 10, []string{}},
		{"empty_prefix", "", 10, []string{}},
		{"case_folded_prefix", "APP", 3, []string{"app", "apple", "application"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Autocomplete(tt.prefix, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Autocomplete(%q, %d) = %v, want %v", tt.prefix, tt.limit, got, tt.want)
			}
		})
	}
}

func TestAutocompleteOnlyTruePrefixes(t *testing.T) {
	tr := New()
	for _, w := range []string{"car", "card", "care", "dog"} {
		tr.Insert(w)
	}
	for _, got := range tr.Autocomplete("car", 10) {
		if len(got) < 3 || got[:3] != "car" {
			t.Errorf("result %q does not start with prefix car", got)
		}
	}
}

func TestWords(t *testing.T) {
	tr := New()
	for _, w := range []string{"cherry", "apple", "banana"} {
		tr.Insert(w)
	}
	want := []string{"apple", "banana", "cherry"}
	if got := tr.Words(); !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}
