// Package grammeme maps grammatical trait labels to service codes.
package grammeme

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/morfo/internal/model"
)

// Category is one of the three selectable trait groups.
type Category string

// Trait categories.
const (
	Gender Category = "gender"
	Number Category = "number"
	Case   Category = "case"
)

// Trait is a selectable value with its display label and service code.
type Trait struct {
	Label string
	Code  string
}

var table = map[Category][]Trait{
	Gender: {
		{Label: "Мужской", Code: "masc"},
		{Label: "Женский", Code: "femn"},
		{Label: "Средний", Code: "neut"},
	},
	Number: {
		{Label: "Единственное", Code: "sing"},
		{Label: "Множественное", Code: "plur"},
	},
	Case: {
		{Label: "Именительный", Code: "nomn"},
		{Label: "Родительный", Code: "gent"},
		{Label: "Дательный", Code: "datv"},
		{Label: "Винительный", Code: "accs"},
		{Label: "Творительный", Code: "ablt"},
		{Label: "Предложный", Code: "loct"},
	},
}

// Categories returns the categories in selection order.
func Categories() []Category {
	return []Category{Gender, Number, Case}
}

// Values returns the traits of a category in display order.
func Values(c Category) []Trait {
	return append([]Trait(nil), table[c]...)
}

// Lookup finds a trait by label or code within a category.
func Lookup(c Category, value string) (Trait, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Trait{}, false
	}
	for _, t := range table[c] {
		if t.Label == value || t.Code == value || strings.EqualFold(t.Label, value) {
			return t, true
		}
	}
	return Trait{}, false
}

// Codes maps a selection to service codes in gender, number, case order.
// Blank or unmapped selections are omitted.
func Codes(sel model.TraitSelection) []string {
	codes := make([]string, 0, 3)
	for _, pair := range selectionValues(sel) {
		if t, ok := Lookup(pair.category, pair.value); ok {
			codes = append(codes, t.Code)
		}
	}
	return codes
}

// Validate reports selections that are neither blank nor known.
func Validate(sel model.TraitSelection) error {
	for _, pair := range selectionValues(sel) {
		if strings.TrimSpace(pair.value) == "" {
			continue
		}
		if _, ok := Lookup(pair.category, pair.value); !ok {
			return fmt.Errorf("unknown %s %q (known: %s)", pair.category, pair.value, strings.Join(known(pair.category), ", "))
		}
	}
	return nil
}

type categoryValue struct {
	category Category
	value    string
}

func selectionValues(sel model.TraitSelection) []categoryValue {
	return []categoryValue{
		{category: Gender, value: sel.Gender},
		{category: Number, value: sel.Number},
		{category: Case, value: sel.Case},
	}
}

func known(c Category) []string {
	out := make([]string, 0, len(table[c])*2)
	for _, t := range table[c] {
		out = append(out, t.Code, t.Label)
	}
	return out
}
