package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/morfo/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestDecomposeKeepsServiceOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/decompose" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Sentence string `json:"sentence"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Sentence != "мама мыла раму" {
			t.Errorf("unexpected sentence %q", body.Sentence)
		}
		_, _ = w.Write([]byte(`{"result": {"мама": "сущ., жен.р.", "мыла": "глаг.", "раму": ["сущ.", "вин.п."]}}`))
	})

	got, err := c.Decompose(context.Background(), "мама мыла раму")
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	want := []model.Analysis{
		{Lexeme: "мама", Description: "сущ., жен.р."},
		{Lexeme: "мыла", Description: "глаг."},
		{Lexeme: "раму", Description: `["сущ.","вин.п."]`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected analyses (-want +got):\n%s", diff)
	}
}

func TestMorphSendsOnlySelectedTraits(t *testing.T) {
	var gotTraits json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Word   string          `json:"word"`
			Traits json.RawMessage `json:"traits"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotTraits = body.Traits
		_, _ = w.Write([]byte(`{"result": "дома"}`))
	})

	morphed, err := c.Morph(context.Background(), "дом", []string{"gent"})
	if err != nil {
		t.Fatalf("Morph failed: %v", err)
	}
	if morphed != "дома" {
		t.Fatalf("expected дома, got %q", morphed)
	}
	if string(gotTraits) != `["gent"]` {
		t.Fatalf("expected traits [\"gent\"], got %s", gotTraits)
	}

	if _, err := c.Morph(context.Background(), "дом", nil); err != nil {
		t.Fatalf("Morph failed: %v", err)
	}
	if string(gotTraits) != `[]` {
		t.Fatalf("expected empty traits array, got %s", gotTraits)
	}
}

func TestWordInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result": ["основа: ст", "окончание: ол", "муж.р.", "ед.ч.", "им.п."]}`))
	})
	got, err := c.WordInfo(context.Background(), "стол")
	if err != nil {
		t.Fatalf("WordInfo failed: %v", err)
	}
	if diff := cmp.Diff([]string{"основа: ст", "окончание: ол", "муж.р.", "ед.ч.", "им.п."}, got); diff != "" {
		t.Fatalf("unexpected traits (-want +got):\n%s", diff)
	}
}

func TestDictRoundTrip(t *testing.T) {
	var stored json.RawMessage = []byte(`{}`)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/updatedict":
			var body struct {
				NewDictionary json.RawMessage `json:"newDictionary"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			stored = body.NewDictionary
			w.WriteHeader(http.StatusOK)
		case "/dict":
			if r.Method != http.MethodGet {
				t.Errorf("expected GET, got %s", r.Method)
			}
			_, _ = w.Write([]byte(`{"result": ` + string(stored) + `}`))
		default:
			http.NotFound(w, r)
		}
	})

	d := model.Dictionary{
		"стол": model.NewEntry("ст", "ол", []string{"муж.р."}),
		"и":    {Features: []string{"союз"}},
	}
	ctx := context.Background()
	if err := c.UpdateDict(ctx, d); err != nil {
		t.Fatalf("UpdateDict failed: %v", err)
	}
	if !json.Valid(stored) || !strings.Contains(string(stored), `"основа":"ст"`) {
		t.Fatalf("unexpected wire format: %s", stored)
	}
	got, err := c.Dict(ctx)
	if err != nil {
		t.Fatalf("Dict failed: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFailuresWrapErrUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wordinfo" {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	ctx := context.Background()
	if _, err := c.Decompose(ctx, "x"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for status error, got %v", err)
	}
	if _, err := c.WordInfo(ctx, "x"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for decode error, got %v", err)
	}

	down, err := New("http://127.0.0.1:1", 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := down.Dict(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for transport error, got %v", err)
	}
}

func TestNewValidatesURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://host", "://bad"} {
		if _, err := New(raw, 0); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
