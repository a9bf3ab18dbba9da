package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/book.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Alice</dc:title>
    <dc:creator opf:role="aut">Carroll</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="uid">urn:uuid:1234</dc:identifier>
    <meta name="cover" content="cover-img"/>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="cover-img" href="images/cover.png" media-type="image/png"/>
    <item id="ch1" href="text/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch3" href="text/ch3.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
    <itemref idref="ch3"/>
  </spine>
</package>`

const testNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
    <meta name="dtb:uid" content="urn:uuid:1234"/>
  </head>
  <docTitle><text>Alice</text></docTitle>
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text>Ch1</text></navLabel>
      <content src="text/ch1.xhtml"/>
    </navPoint>
    <navPoint id="np2" playOrder="2">
      <navLabel><text>Ch2</text></navLabel>
      <content src="text/ch2.xhtml#start"/>
    </navPoint>
  </navMap>
</ncx>`

func testChapter(title, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>` + title + `</title><style>p { color: red; }</style></head>
<body>` + body + `</body>
</html>`
}

// testBookFiles returns the files of a complete three chapter book.
func testBookFiles() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainerXML,
		"OEBPS/book.opf":         testOPF,
		"OEBPS/toc.ncx":          testNCX,
		"OEBPS/text/ch1.xhtml":   testChapter("One", `<h1>Down the Rabbit-Hole</h1><p>Alice was beginning</p><p>to get very tired.</p>`),
		"OEBPS/text/ch2.xhtml":   testChapter("Two", `<h1 id="start">The Pool of Tears</h1><p>Curiouser and curiouser!</p>`),
		"OEBPS/text/ch3.xhtml":   testChapter("Three", `<h1>A Caucus-Race</h1>`),
	}
}

// createTestEPUB writes files into a zip archive in a temp dir and returns
// its path. The mimetype entry, when present, is written first and stored.
func createTestEPUB(t *testing.T, files map[string]string) string {
	t.Helper()
	epubPath := filepath.Join(t.TempDir(), "test.epub")
	f, err := os.Create(epubPath)
	if err != nil {
		t.Fatalf("failed to create test epub: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)

	if mt, ok := files["mimetype"]; ok {
		mw, err := w.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
		if err != nil {
			t.Fatalf("failed to create mimetype: %v", err)
		}
		if _, err := mw.Write([]byte(mt)); err != nil {
			t.Fatalf("failed to write mimetype: %v", err)
		}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		if name != "mimetype" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(files[name])); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return epubPath
}

func openTestArchive(t *testing.T, files map[string]string) *Archive {
	t.Helper()
	a, err := OpenArchive(createTestEPUB(t, files))
	if err != nil {
		t.Fatalf("OpenArchive() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func withFiles(base map[string]string, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
