package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/imweb/config"
)

func TestRunRendersDemo(t *testing.T) {
	cfg, err := config.Load(filepath.Join("examples", "imweb.yaml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, format := range []string{"pdf", "png"} {
		cfg.Output.Format = format
		r, err := newRenderer(cfg)
		if err != nil {
			t.Fatalf("renderer: %v", err)
		}
		out := filepath.Join(t.TempDir(), "demo."+format)
		data := map[string]any{"user": map[string]any{"name": "ada"}}
		if err := run(filepath.Join("examples", "demo.scene"), out, cfg, data, r); err != nil {
			t.Fatalf("run %s: %v", format, err)
		}
		got, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		magic := map[string][]byte{"pdf": []byte("%PDF"), "png": []byte("\x89PNG")}[format]
		if !bytes.HasPrefix(got, magic) {
			t.Fatalf("%s output has wrong header %q", format, got[:min(8, len(got))])
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	r, err := newRenderer(config.Default())
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	if err := run(filepath.Join(t.TempDir(), "nope.scene"), filepath.Join(t.TempDir(), "x.pdf"), config.Default(), nil, r); err == nil {
		t.Fatalf("expected error for missing input")
	}
}
