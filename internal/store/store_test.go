package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/morfo/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "morfo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestDictionaryMirrorRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.LoadDictionary(ctx); err != nil || ok {
		t.Fatalf("expected no mirror yet, got ok=%v err=%v", ok, err)
	}

	d := model.Dictionary{
		"стол": model.NewEntry("ст", "ол", []string{"муж.р.", "ед.ч."}),
		"и":    {Features: []string{}},
	}
	if err := st.SaveDictionary(ctx, d); err != nil {
		t.Fatalf("save dictionary: %v", err)
	}
	got, ok, err := st.LoadDictionary(ctx)
	if err != nil || !ok {
		t.Fatalf("load dictionary: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Fatalf("mirror mismatch (-want +got):\n%s", diff)
	}

	if err := st.SaveDictionary(ctx, model.Dictionary{}); err != nil {
		t.Fatalf("save empty dictionary: %v", err)
	}
	got, ok, err = st.LoadDictionary(ctx)
	if err != nil || !ok {
		t.Fatalf("load dictionary: ok=%v err=%v", ok, err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mirror, got %v", got)
	}
}

func TestLookupHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	lookups := []model.Lookup{
		{Kind: model.LookupDecompose, Input: "мама мыла раму", Result: "3 lexemes", OK: true, CreatedAt: base},
		{Kind: model.LookupMorph, Input: "дом", Traits: []string{"gent"}, Result: "дома", OK: true, CreatedAt: base.Add(time.Minute)},
		{Kind: model.LookupMorph, Input: "кот", Traits: []string{"plur"}, Result: "service down", OK: false, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, l := range lookups {
		if err := st.RecordLookup(ctx, l); err != nil {
			t.Fatalf("record lookup: %v", err)
		}
	}

	morphs, err := st.ListLookups(ctx, model.HistoryConfig{Kind: model.LookupMorph})
	if err != nil {
		t.Fatalf("list lookups: %v", err)
	}
	if len(morphs) != 2 || morphs[0].Input != "дом" || morphs[1].OK {
		t.Fatalf("unexpected morph history: %+v", morphs)
	}
	if diff := cmp.Diff([]string{"gent"}, morphs[0].Traits); diff != "" {
		t.Fatalf("unexpected traits (-want +got):\n%s", diff)
	}

	since := base.Add(30 * time.Second)
	last, err := st.ListLookups(ctx, model.HistoryConfig{Since: &since, Last: 1})
	if err != nil {
		t.Fatalf("list lookups: %v", err)
	}
	if len(last) != 1 || last[0].Input != "кот" {
		t.Fatalf("unexpected filtered history: %+v", last)
	}

	counts, err := st.CountLookups(ctx)
	if err != nil {
		t.Fatalf("count lookups: %v", err)
	}
	want := []model.LookupCount{
		{Kind: model.LookupDecompose, Total: 1, Failed: 0},
		{Kind: model.LookupMorph, Total: 2, Failed: 1},
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("unexpected counts (-want +got):\n%s", diff)
	}
}
