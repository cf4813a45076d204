package grammeme

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/morfo/internal/model"
)

func TestCodesOmitsBlankSelections(t *testing.T) {
	got := Codes(model.TraitSelection{Case: "Родительный"})
	if diff := cmp.Diff([]string{"gent"}, got); diff != "" {
		t.Fatalf("unexpected codes (-want +got):\n%s", diff)
	}
}

func TestCodesOrderAndAliases(t *testing.T) {
	got := Codes(model.TraitSelection{Gender: "femn", Number: "Множественное", Case: "loct"})
	if diff := cmp.Diff([]string{"femn", "plur", "loct"}, got); diff != "" {
		t.Fatalf("unexpected codes (-want +got):\n%s", diff)
	}
	if got := Codes(model.TraitSelection{}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCodesDropsUnknown(t *testing.T) {
	got := Codes(model.TraitSelection{Gender: "что-то", Case: "datv"})
	if diff := cmp.Diff([]string{"datv"}, got); diff != "" {
		t.Fatalf("unexpected codes (-want +got):\n%s", diff)
	}
	if err := Validate(model.TraitSelection{Gender: "что-то"}); err == nil {
		t.Fatalf("expected validation error for unknown gender")
	}
	if err := Validate(model.TraitSelection{Number: "sing", Case: "Винительный"}); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestTableShape(t *testing.T) {
	sizes := map[Category]int{Gender: 3, Number: 2, Case: 6}
	for _, c := range Categories() {
		if got := len(Values(c)); got != sizes[c] {
			t.Fatalf("expected %d %s values, got %d", sizes[c], c, got)
		}
	}
}
