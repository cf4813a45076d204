package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/morfo/internal/config"
	"github.com/verte-zerg/morfo/internal/model"
	"github.com/verte-zerg/morfo/internal/workflow"
)

type fakeServer struct {
	mu      sync.Mutex
	dict    model.Dictionary
	pushes  []model.Dictionary
	morphed map[string]string
	info    map[string][]string
}

func newFakeServer(t *testing.T, dict model.Dictionary) (*fakeServer, string) {
	t.Helper()
	fs := &fakeServer{
		dict:    dict,
		morphed: map[string]string{},
		info:    map[string][]string{},
	}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv.URL
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var body struct {
		Sentence      string           `json:"sentence"`
		Word          string           `json:"word"`
		NewDictionary model.Dictionary `json:"newDictionary"`
	}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	var result any
	switch r.URL.Path {
	case "/dict":
		result = fs.dict
	case "/updatedict":
		fs.pushes = append(fs.pushes, body.NewDictionary)
		fs.dict = body.NewDictionary
		result = "ok"
	case "/decompose":
		result = map[string]string{"кот": "сущ."}
	case "/morph":
		result = fs.morphed[body.Word]
	case "/wordinfo":
		traits, ok := fs.info[body.Word]
		if !ok {
			http.Error(w, "unknown word", http.StatusNotFound)
			return
		}
		result = traits
	default:
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
}

func (fs *fakeServer) lastPush() (model.Dictionary, int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.pushes) == 0 {
		return nil, 0
	}
	return fs.pushes[len(fs.pushes)-1], len(fs.pushes)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func TestDictAddPushesNewEntry(t *testing.T) {
	isolateHome(t)
	fs, url := newFakeServer(t, model.Dictionary{})
	fs.info["бежать"] = []string{"основа: беж", "окончание: ать", "глаг."}

	out, err := runCLI(t, "--server", url, "dict", "add", "бежать")
	if err != nil {
		t.Fatalf("dict add failed: %v", err)
	}
	if !strings.Contains(out, "основа: беж, окончание: ать, глаг.") {
		t.Fatalf("unexpected output %q", out)
	}
	pushed, n := fs.lastPush()
	if n != 1 {
		t.Fatalf("expected one push, got %d", n)
	}
	want := model.Dictionary{"бежать": model.NewEntry("беж", "ать", []string{"глаг."})}
	if diff := cmp.Diff(want, pushed); diff != "" {
		t.Fatalf("unexpected push (-want +got):\n%s", diff)
	}
}

func TestDictEditReplacesLexeme(t *testing.T) {
	isolateHome(t)
	fs, url := newFakeServer(t, model.Dictionary{
		"бежать": model.NewEntry("беж", "ать", []string{"глаг."}),
	})
	fs.morphed["бежать"] = "бежал"
	fs.info["бежал"] = []string{"основа: беж", "окончание: ал", "глаг.", "прош."}

	out, err := runCLI(t, "--server", url, "dict", "edit", "бежать", "--gender", "masc")
	if err != nil {
		t.Fatalf("dict edit failed: %v", err)
	}
	if !strings.Contains(out, "бежать -> бежал") {
		t.Fatalf("unexpected output %q", out)
	}
	pushed, _ := fs.lastPush()
	want := model.Dictionary{"бежал": model.NewEntry("беж", "ал", []string{"глаг.", "прош."})}
	if diff := cmp.Diff(want, pushed); diff != "" {
		t.Fatalf("unexpected push (-want +got):\n%s", diff)
	}
}

func TestDictDeleteUnknownLexeme(t *testing.T) {
	isolateHome(t)
	fs, url := newFakeServer(t, model.Dictionary{})

	_, err := runCLI(t, "--server", url, "dict", "delete", "кот")
	if !errors.Is(err, workflow.ErrUnknownLexeme) {
		t.Fatalf("expected ErrUnknownLexeme, got %v", err)
	}
	if _, n := fs.lastPush(); n != 0 {
		t.Fatalf("expected no push, got %d", n)
	}
}

func TestDictListFallsBackToMirror(t *testing.T) {
	isolateHome(t)
	_, url := newFakeServer(t, model.Dictionary{
		"кот": model.NewEntry("кот", "", []string{"сущ."}),
	})
	if _, err := runCLI(t, "--server", url, "dict", "pull"); err != nil {
		t.Fatalf("dict pull failed: %v", err)
	}

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	out, err := runCLI(t, "--server", down.URL, "dict", "list")
	if err != nil {
		t.Fatalf("dict list failed: %v", err)
	}
	if !strings.Contains(out, "кот") || !strings.Contains(out, "сущ.") {
		t.Fatalf("expected mirrored entry, got %q", out)
	}
}

func TestDecomposeRecordsHistory(t *testing.T) {
	isolateHome(t)
	_, url := newFakeServer(t, model.Dictionary{})

	out, err := runCLI(t, "--server", url, "decompose", "кот")
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if !strings.Contains(out, `"кот": сущ.`) {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runCLI(t, "history", "--kind", "decompose")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "decompose") || !strings.Contains(out, "кот") {
		t.Fatalf("expected recorded lookup, got %q", out)
	}
}

func TestMorphRejectsUnknownTrait(t *testing.T) {
	isolateHome(t)
	if _, err := runCLI(t, "morph", "кот", "--case", "dative-ish"); err == nil {
		t.Fatal("expected error for unknown case")
	}
}

func TestHistoryConfigValidation(t *testing.T) {
	historyKind, historyLast, historySince = "bogus", 0, ""
	if _, err := historyConfig(); err == nil {
		t.Fatal("expected error for bogus kind")
	}

	historyKind, historyLast, historySince = "morph", 5, "2026-01-02"
	hc, err := historyConfig()
	if err != nil {
		t.Fatalf("historyConfig failed: %v", err)
	}
	if hc.Kind != "morph" || hc.Last != 5 || hc.Since == nil {
		t.Fatalf("unexpected config %+v", hc)
	}
	if got := hc.Since.Format("2006-01-02"); got != "2026-01-02" {
		t.Fatalf("unexpected since %s", got)
	}

	historySince = "02/01/2026"
	if _, err := historyConfig(); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestConfigOverridesDefaults(t *testing.T) {
	isolateHome(t)
	path := config.DefaultConfigPath()
	writeConfig(t, path, "[server]\nurl = \"http://example.test:9000\"\ntimeout = \"3s\"\n\n[dictionary]\nmirror = false\n")

	cmd := newRootCmd()
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		t.Fatalf("loadSettings failed: %v", err)
	}
	want := model.Config{ServerURL: "http://example.test:9000", Timeout: 3 * time.Second}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestFlagsWinOverConfig(t *testing.T) {
	isolateHome(t)
	writeConfig(t, config.DefaultConfigPath(), "[server]\nurl = \"http://example.test:9000\"\n")

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--server", "http://flag.test"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, _, err := loadSettings(cmd)
	if err != nil {
		t.Fatalf("loadSettings failed: %v", err)
	}
	if cfg.ServerURL != "http://flag.test" {
		t.Fatalf("expected flag to win, got %q", cfg.ServerURL)
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var fc config.FileConfig
	md, err := toml.Decode(defaultConfigTemplate(), &fc)
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		t.Fatalf("unexpected keys %v", undecoded)
	}
	if fc.Server.URL != nil || fc.Dictionary.Mirror != nil {
		t.Fatalf("expected every value commented out, got %+v", fc)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(model.Config{ServerURL: " "}); err == nil {
		t.Fatal("expected error for empty server")
	}
	if err := validateConfig(model.Config{ServerURL: remoteURL, Timeout: -time.Second}); err == nil {
		t.Fatal("expected error for negative timeout")
	}
	if err := validateConfig(model.Config{ServerURL: remoteURL}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

const remoteURL = "http://127.0.0.1:5000"

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
