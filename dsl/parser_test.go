package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/imweb/dsl"
)

const sampleScene = `
scene Demo v1 {
  meta {
    title: "Greeting"
    language: en-US
    tags: [
      "demo"
      "internal"
    ]
  }

  fonts {
    font Body family "sans-serif" size 16px weight 400
    font Title family "serif" size 18pt weight 700 style italic
  }

  // 一帧绘制
  frame 640 480 {
    text Body at 10 20 color #0F62FE { "Hello, ${user.name}!" }
    marker disc Body at 10 40 12 12 color #f00
    image "logo.png" at 0 0 64 64; caption "Demo"
  }
}
`

func TestParseScene(t *testing.T) {
	scene, err := dsl.ParseString(sampleScene)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if scene.Name != "Demo" || scene.Version != "v1" {
		t.Fatalf("unexpected header %s %s", scene.Name, scene.Version)
	}
	if len(scene.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(scene.Sections))
	}
	kinds := []string{}
	for _, s := range scene.Sections {
		kinds = append(kinds, s.Kind())
	}
	if strings.Join(kinds, ",") != "meta,fonts,frame" {
		t.Fatalf("unexpected section kinds %v", kinds)
	}

	meta := scene.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" || title.Value.Text() != "Greeting" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	lang := meta.Block.Statements[1].Assignment
	if lang == nil || lang.Value.Text() != "en-US" {
		t.Fatalf("expected bare language value, got %+v", meta.Block.Statements[1])
	}
	tags := meta.Block.Statements[2].Assignment
	if tags == nil || tags.Value.Array == nil || len(tags.Value.Array.Values) != 2 {
		t.Fatalf("expected tags array")
	}

	fonts := scene.Sections[1].Fonts
	if len(fonts.Block.Statements) != 2 {
		t.Fatalf("expected 2 font declarations, got %d", len(fonts.Block.Statements))
	}
	body := fonts.Block.Statements[0].Command
	if body == nil || body.Name != "font" || body.Args[0].Value != "Body" {
		t.Fatalf("unexpected font command %+v", body)
	}
	if body.Args[2].Value != "sans-serif" || body.Args[4].Value != "16px" {
		t.Fatalf("unexpected font args %+v", body.Args)
	}

	frame := scene.Sections[2].Frame
	if frame.Width != "640" || frame.Height != "480" {
		t.Fatalf("unexpected frame size %sx%s", frame.Width, frame.Height)
	}
	if len(frame.Block.Statements) != 4 {
		t.Fatalf("expected 4 frame statements, got %d", len(frame.Block.Statements))
	}
	text := frame.Block.Statements[0].Command
	if text == nil || text.Name != "text" || text.Block == nil {
		t.Fatalf("expected text command with body")
	}
	if got := text.Args[len(text.Args)-1]; got.Type != "Color" || got.Value != "#0F62FE" {
		t.Fatalf("expected six-digit color token, got %+v", got)
	}
	if got := string(text.Block.Statements[0].Text.Value); got != "Hello, ${user.name}!" {
		t.Fatalf("unexpected text literal %q", got)
	}
	caption := frame.Block.Statements[3].Command
	if caption == nil || caption.Name != "caption" || caption.Args[0].Value != "Demo" {
		t.Fatalf("statements separated by ';' must parse, got %+v", caption)
	}
}

func TestParseRejectsMissingHeader(t *testing.T) {
	if _, err := dsl.ParseString(`frame 10 10 { }`); err == nil {
		t.Fatalf("expected error without scene header")
	}
}
