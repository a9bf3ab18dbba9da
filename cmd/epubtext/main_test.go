package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/yuanying/epubtext/internal/extract"
)

var testFiles = map[string]string{
	"META-INF/container.xml": `<?xml version="1.0"?>
<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container" version="1.0">
  <rootfiles><rootfile full-path="content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
	"content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Alice</dc:title>
    <dc:creator>Carroll</dc:creator>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx"><itemref idref="c1"/></spine>
</package>`,
	"toc.ncx": `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1"><navLabel><text>Ch1</text></navLabel><content src="c1.xhtml"/></navPoint>
  </navMap>
</ncx>`,
	"c1.xhtml": `<html xmlns="http://www.w3.org/1999/xhtml"><body><h1>Title</h1><p>Some <b>bold</b> text.</p></body></html>`,
}

func createTestEPUB(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := zip.NewWriter(f)
	for _, name := range []string{"META-INF/container.xml", "content.opf", "toc.ncx", "c1.xhtml"} {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(testFiles[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--log-level", "none"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestReadCLIOptions_Defaults(t *testing.T) {
	cmd := newRootCmd()
	opts, err := readCLIOptions(cmd, nil)
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if opts.Format != extract.FormatText {
		t.Fatalf("Format = %v, want text", opts.Format)
	}
	if opts.Config.Cover.Width != 300 {
		t.Fatalf("Cover.Width = %d, want 300", opts.Config.Cover.Width)
	}
	if opts.Logger == nil {
		t.Fatal("Logger is nil, want non-nil")
	}
	if !opts.Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("Logger should be enabled at INFO level by default")
	}
	if opts.Logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("Logger should not be enabled at DEBUG level by default")
	}
}

func TestReadCLIOptions_ConfigAndFlags(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "epubtext.yaml")
	cfg := "chapter:\n  format: markdown\ncover:\n  width: 120\nlogging:\n  console:\n    level: none\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"cover"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if err := cmd.ParseFlags([]string{"--config", cfgPath, "--width", "64", "--log-level", "debug"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	opts, err := readCLIOptions(cmd, []string{"book.epub"})
	if err != nil {
		t.Fatalf("readCLIOptions() error = %v", err)
	}
	if opts.Format != extract.FormatMarkdown {
		t.Fatalf("Format = %v, want markdown", opts.Format)
	}
	if opts.Config.Cover.Width != 64 {
		t.Fatalf("Cover.Width = %d, want 64", opts.Config.Cover.Width)
	}
	if !opts.Logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("Logger should be enabled at DEBUG level when --log-level debug is set")
	}
}

func TestReadCLIOptions_Invalid(t *testing.T) {
	tests := []struct {
		command string
		args    []string
		want    string
	}{
		{"meta", []string{"--log-level", "trace"}, "--log-level"},
		{"chapter", []string{"--format", "pdf"}, "--format"},
		{"import", []string{"--format", "md"}, "--format"},
		{"cover", []string{"--width", "0"}, "--width"},
	}
	for _, tt := range tests {
		t.Run(tt.command+" "+strings.Join(tt.args, " "), func(t *testing.T) {
			cmd, _, err := newRootCmd().Find([]string{tt.command})
			if err != nil {
				t.Fatal(err)
			}
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}
			_, err = readCLIOptions(cmd, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %s validation error, got %v", tt.want, err)
			}
		})
	}
}

func TestMetaCommand(t *testing.T) {
	out, err := runCLI(t, "meta", createTestEPUB(t))
	if err != nil {
		t.Fatalf("meta error = %v", err)
	}
	var got extract.MetaResponse
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Title != "Alice" || got.Author != "Carroll" || len(got.Toc) != 1 || got.Toc[0].ContentSrc != "c1.xhtml" {
		t.Errorf("meta = %+v", got)
	}
}

func TestMetaCommand_NotAnArchive(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.epub")
	if err := os.WriteFile(p, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "meta", p)
	if err == nil || !strings.HasPrefix(err.Error(), "archive:") {
		t.Fatalf("meta error = %v, want archive failure", err)
	}
	if !strings.Contains(out, `"toc": []`) {
		t.Errorf("output = %q, want empty shape", out)
	}
}

func TestChapterCommand(t *testing.T) {
	out, err := runCLI(t, "chapter", createTestEPUB(t), "0")
	if err != nil {
		t.Fatalf("chapter error = %v", err)
	}
	var got extract.ContentResponse
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.ChapterContent != "Title\nSome bold text." {
		t.Errorf("chapterContent = %q", got.ChapterContent)
	}

	_, err = runCLI(t, "chapter", createTestEPUB(t), "5")
	if err == nil || !strings.HasPrefix(err.Error(), "chapter-index:") {
		t.Errorf("chapter error = %v, want chapter-index failure", err)
	}
}

func TestEntriesCommand(t *testing.T) {
	out, err := runCLI(t, "entries", createTestEPUB(t))
	if err != nil {
		t.Fatalf("entries error = %v", err)
	}
	want := "META-INF/container.xml\nc1.xhtml\ncontent.opf\ntoc.ncx\n"
	if out != want {
		t.Errorf("entries = %q, want %q", out, want)
	}
}

func TestImportAndBooksCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")

	out, err := runCLI(t, "import", "--db", db, createTestEPUB(t))
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatal("import printed no book id")
	}

	out, err = runCLI(t, "books", "--db", db)
	if err != nil {
		t.Fatalf("books error = %v", err)
	}
	if want := id + "\tAlice\tCarroll\t1\n"; out != want {
		t.Errorf("books = %q, want %q", out, want)
	}
}
