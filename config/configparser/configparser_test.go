package configparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "e900.cfg")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
# ALGOL pass one
reader=algol/tape1
store=".store"
verbose = 1

jump=8181
`)
	options, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []Option{
		{"reader", "algol/tape1"},
		{"store", ".store"},
		{"verbose", "1"},
		{"jump", "8181"},
	}
	if len(options) != len(want) {
		t.Fatalf("got %d options expected %d", len(options), len(want))
	}
	for i, w := range want {
		if options[i] != w {
			t.Errorf("option %d: got %v expected %v", i, options[i], w)
		}
	}
}

func TestQuotedValueKeepsSpaces(t *testing.T) {
	path := writeConfig(t, "plot=\"my plots/run one.png\"\n")
	options, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if options[0].Value != "my plots/run one.png" {
		t.Errorf("got %q", options[0].Value)
	}
}

func TestUppercaseNamesFold(t *testing.T) {
	path := writeConfig(t, "READER=tape\n")
	options, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if options[0].Name != "reader" {
		t.Errorf("got %q", options[0].Name)
	}
}

func TestMalformedLineReportsLineNumber(t *testing.T) {
	path := writeConfig(t, "reader=tape\nnot a setting\n")
	_, err := LoadConfigFile(path)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Errorf("error %q does not carry line number", err)
	}
}

func TestUnterminatedQuote(t *testing.T) {
	path := writeConfig(t, "reader=\"tape\n")
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "nosuch")); err == nil {
		t.Fatal("expected an error")
	}
}
