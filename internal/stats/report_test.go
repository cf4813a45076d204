package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/morfo/internal/model"
	"github.com/verte-zerg/morfo/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "morfo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lookups := []model.Lookup{
		{Kind: model.LookupMorph, Input: "дом", Traits: []string{"gent"}, Result: "дома", OK: true, CreatedAt: now.Add(-time.Hour)},
		{Kind: model.LookupMorph, Input: "кот", Result: "unavailable", CreatedAt: now.AddDate(0, 0, -1)},
		{Kind: model.LookupDecompose, Input: "мама мыла раму", Result: "3 lexemes", OK: true, CreatedAt: now.AddDate(0, 0, -2)},
		{Kind: model.LookupDecompose, Input: "старое", OK: true, CreatedAt: now.AddDate(0, 0, -30)},
	}
	for _, l := range lookups {
		if err := st.RecordLookup(ctx, l); err != nil {
			t.Fatalf("record lookup: %v", err)
		}
	}

	d := model.Dictionary{
		"стол": model.NewEntry("ст", "ол", []string{"муж.р."}),
		"дом":  {Features: []string{"муж.р."}},
	}
	report, err := BuildReport(ctx, st, d, ReportConfig{Top: 5, Days: 3, Now: now})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Summary.Entries != 2 || report.Summary.WithStem != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	wantCounts := []model.LookupCount{
		{Kind: model.LookupDecompose, Total: 2, Failed: 0},
		{Kind: model.LookupMorph, Total: 2, Failed: 1},
	}
	if diff := cmp.Diff(wantCounts, report.Lookups); diff != "" {
		t.Fatalf("unexpected counts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 1, 1}, report.Activity); diff != "" {
		t.Fatalf("unexpected activity (-want +got):\n%s", diff)
	}

	var out bytes.Buffer
	if err := report.Render(&out); err != nil {
		t.Fatalf("render report: %v", err)
	}
	for _, want := range []string{"Entries: 2", "муж.р.", "decompose", "Activity (3 days, 3 lookups)"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in report:\n%s", want, out.String())
		}
	}
}
