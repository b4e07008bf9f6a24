package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"bookmerge/common"
	"bookmerge/config"
	"bookmerge/diag"
	"bookmerge/merge"
	"bookmerge/model"
	"bookmerge/tagstore"
)

// testDocument has primary page of two lines, paragraph A anchored after the
// first line and paragraph B in fallback block dated 1904.
func testDocument(t *testing.T) *merge.Document {
	t.Helper()

	primary := model.NewBook("pri", []*model.Page{{
		Book: "pri", BookName: "Primary", Number: 1, Chapter: "Opening",
		Lines: []model.Line{{Number: 1, Text: "First line."}, {Number: 2, Text: "Second line."}},
	}})
	secondary := model.NewBook("sec", []*model.Page{{
		Book: "sec", BookName: "Secondary", Number: 1, Chapter: "Letters",
		Lines: []model.Line{{Number: 1, Text: "Alpha one. Alpha two."}, {Number: 2, Text: "Bravo."}},
	}})
	year := 1904
	diags := diag.NewList(zaptest.NewLogger(t))
	in := &merge.Input{
		Primary:   primary,
		Secondary: secondary,
		Paragraphs: []model.Paragraph{
			{ID: "A", Book: "sec", Sources: []model.Span{{Page: 1, LineStart: 1, LineEnd: 1}}, Text: "Alpha one. Alpha two.", OrderIndex: 1},
			{ID: "B", Book: "sec", Sources: []model.Span{{Page: 1, LineStart: 2, LineEnd: 2}}, Text: "Bravo.", OrderIndex: 2},
		},
		InsertionPoints: []model.InsertionPoint{
			{ParagraphID: "A", AnchorBook: "pri", AnchorPage: 1, AnchorLine: 1, Reason: "same day", Confidence: 0.9},
		},
		Tags: tagstore.New([]model.LineTag{{Book: "sec", Page: 1, LineStart: 2, LineEnd: 2, Year: &year, Confidence: 0.6}}, diags),
	}
	diags.Report(&diag.CoverageGapWarning{Book: "pri", Page: 1, Lines: []int{1, 2}})

	doc, err := merge.New(merge.Options{Primary: "pri", Secondary: "sec"}, zaptest.NewLogger(t)).Merge(in, diags)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	return doc
}

func TestEncode_Text(t *testing.T) {
	doc := testDocument(t)

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Encode(&buf, doc, Options{Format: common.OutputFmtText}); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		want := "First line.\nAlpha one. Alpha two.\nSecond line.\nBravo.\n"
		if buf.String() != want {
			t.Errorf("Encode() = %q, want %q", buf.String(), want)
		}
	})

	t.Run("headers", func(t *testing.T) {
		cfg, err := config.LoadConfiguration("")
		if err != nil {
			t.Fatalf("LoadConfiguration() error = %v", err)
		}
		var buf bytes.Buffer
		opts := Options{Format: common.OutputFmtText, Headers: true, HeaderTemplate: cfg.Output.HeaderTemplate}
		if err := Encode(&buf, doc, opts); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		want := []string{
			"First line.",
			"[Secondary - Letters, page 1, lines 1-1 | same day]",
			"Alpha one. Alpha two.",
			"Second line.",
			"[Secondary - Letters, page 1, lines 2-2]",
			"Bravo.",
		}
		if strings.Join(lines, "|") != strings.Join(want, "|") {
			t.Errorf("Encode() =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
		}
	})

	t.Run("custom header", func(t *testing.T) {
		var buf bytes.Buffer
		opts := Options{Format: common.OutputFmtText, Headers: true, HeaderTemplate: `-- {{ .BookName }} {{ .Year | default "?" }} {{ upper .ParagraphID }}`}
		if err := Encode(&buf, doc, opts); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		for _, want := range []string{"-- Secondary ? A\n", "-- Secondary 1904 B\n"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("Encode() = %q, missing %q", buf.String(), want)
			}
		}
	})

	t.Run("header without book name", func(t *testing.T) {
		cfg, err := config.LoadConfiguration("")
		if err != nil {
			t.Fatalf("LoadConfiguration() error = %v", err)
		}
		got, err := expandTemplate(config.HeaderTemplateFieldName, cfg.Output.HeaderTemplate,
			HeaderValues{Book: "sec", Page: 3, LineStart: 1, LineEnd: 2})
		if err != nil {
			t.Fatalf("expandTemplate() error = %v", err)
		}
		if want := "[sec, page 3, lines 1-2]"; got != want {
			t.Errorf("header = %q, want %q", got, want)
		}
	})

	t.Run("bad header", func(t *testing.T) {
		opts := Options{Format: common.OutputFmtText, Headers: true, HeaderTemplate: "{{ .Nope"}
		if err := Encode(&bytes.Buffer{}, doc, opts); err == nil {
			t.Error("Encode() expected template error")
		}
	})
}

func TestEncode_JSON(t *testing.T) {
	doc := testDocument(t)

	var buf bytes.Buffer
	if err := Encode(&buf, doc, Options{Format: common.OutputFmtJson, Sentences: true}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		Segments []struct {
			Origin      string `json:"origin"`
			ParagraphID string `json:"paragraph_id"`
			Fallback    bool   `json:"fallback"`
			Year        *int   `json:"year"`
		} `json:"segments"`
		Entries   []map[string]any `json:"entries"`
		Sentences []struct {
			Start, End, Entry int
		} `json:"sentences"`
		Diagnostics []struct {
			Severity string `json:"severity"`
			Kind     string `json:"kind"`
		} `json:"diagnostics"`
		Stats merge.Stats `json:"stats"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if got.ID != doc.ID().String() || got.Text != doc.Text {
		t.Errorf("id/text mismatch: %q", got.ID)
	}
	if len(got.Segments) != 4 || len(got.Entries) != 4 {
		t.Fatalf("segments = %d, entries = %d, want 4", len(got.Segments), len(got.Entries))
	}
	last := got.Segments[3]
	if last.Origin != "paragraph" || last.ParagraphID != "B" || !last.Fallback || last.Year == nil || *last.Year != 1904 {
		t.Errorf("last segment = %+v", last)
	}
	if len(got.Sentences) != 4 {
		t.Errorf("sentences = %d, want 4 (no tokenizer, one per segment)", len(got.Sentences))
	}
	if len(got.Diagnostics) != 1 || got.Diagnostics[0].Severity != "warning" || got.Diagnostics[0].Kind != "coverage_gap" {
		t.Errorf("diagnostics = %+v", got.Diagnostics)
	}
	if got.Stats.Anchored != 1 || got.Stats.Fallback != 1 || len(got.Stats.Years) != 1 {
		t.Errorf("stats = %+v", got.Stats)
	}
}

func TestEncode_XML(t *testing.T) {
	doc := testDocument(t)

	var buf bytes.Buffer
	if err := Encode(&buf, doc, Options{Format: common.OutputFmtXml, Sentences: true}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	x := etree.NewDocument()
	if err := x.ReadFromBytes(buf.Bytes()); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	root := x.SelectElement("merged")
	if root == nil || root.SelectAttrValue("primary", "") != "pri" {
		t.Fatal("no merged root element")
	}
	segments := root.FindElements("./segments/segment")
	if len(segments) != 4 {
		t.Fatalf("segments = %d, want 4", len(segments))
	}
	a := segments[1]
	if a.SelectAttrValue("paragraph", "") != "A" || a.SelectAttrValue("anchor", "") != "1:1" || a.SelectAttrValue("reason", "") != "same day" {
		t.Errorf("anchored segment attributes = %v", a.Attr)
	}
	if txt := a.SelectElement("text"); txt == nil || txt.Text() != "Alpha one. Alpha two." {
		t.Error("anchored segment text is wrong")
	}
	if segments[0].Text() != "First line." {
		t.Errorf("line segment text = %q", segments[0].Text())
	}
	if n := len(root.FindElements("./sentences/sentence")); n != 4 {
		t.Errorf("sentences = %d, want 4", n)
	}
	if n := len(root.FindElements("./diagnostics/diagnostic")); n != 1 {
		t.Errorf("diagnostics = %d, want 1", n)
	}
}

func TestEncode_SQLiteIsNotStreamed(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, testDocument(t), Options{Format: common.OutputFmtSqlite}); err == nil {
		t.Error("Encode() expected error for sqlite")
	}
}

func TestSave_SQLite(t *testing.T) {
	doc := testDocument(t)
	path := filepath.Join(t.TempDir(), "out", "merged.sqlite")

	// stale database must be replaced
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := Options{Format: common.OutputFmtSqlite, Sentences: true}
	if err := Save(path, doc, opts, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	if err != nil {
		t.Fatalf("unable to open database: %v", err)
	}
	defer conn.Close()

	count := func(query string) int64 {
		t.Helper()
		var n int64
		err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt64(0)
			return nil
		}})
		if err != nil {
			t.Fatalf("query %q: %v", query, err)
		}
		return n
	}
	if n := count(`SELECT count(*) FROM segments`); n != 4 {
		t.Errorf("segments = %d, want 4", n)
	}
	if n := count(`SELECT count(*) FROM segments WHERE fallback = 1 AND year = 1904`); n != 1 {
		t.Errorf("dated fallback segments = %d, want 1", n)
	}
	if n := count(`SELECT count(*) FROM sources`); n != 2 {
		t.Errorf("sources = %d, want 2", n)
	}
	if n := count(`SELECT count(*) FROM sentences`); n != 4 {
		t.Errorf("sentences = %d, want 4", n)
	}
	if n := count(`SELECT count(*) FROM diagnostics`); n != 1 {
		t.Errorf("diagnostics = %d, want 1", n)
	}

	var text, id string
	err = sqlitex.Execute(conn, `SELECT key, value FROM meta WHERE key IN ('text', 'id')`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			switch stmt.ColumnText(0) {
			case "text":
				text = stmt.ColumnText(1)
			case "id":
				id = stmt.ColumnText(1)
			}
			return nil
		}})
	if err != nil {
		t.Fatalf("query meta: %v", err)
	}
	if text != doc.Text || id != doc.ID().String() {
		t.Errorf("meta text/id mismatch: %q %q", text, id)
	}

	// offsets of segment A point into stored text
	var start, end int64
	err = sqlitex.Execute(conn, `SELECT start_offset, end_offset FROM segments WHERE paragraph_id = ?`, &sqlitex.ExecOptions{
		Args: []any{"A"},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			start, end = stmt.ColumnInt64(0), stmt.ColumnInt64(1)
			return nil
		}})
	if err != nil {
		t.Fatalf("query segment: %v", err)
	}
	if got := text[start:end]; got != "Alpha one. Alpha two.\n" {
		t.Errorf("segment A text by offsets = %q", got)
	}
}

func TestSave_Replaces(t *testing.T) {
	doc := testDocument(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "merged.json")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Save(path, doc, Options{Format: common.OutputFmtJson}, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("saved file is not JSON")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	bad := Options{Format: common.OutputFmtText, Headers: true, HeaderTemplate: "{{ .Nope"}
	if err := Save(filepath.Join(dir, "bad.txt"), doc, bad, zaptest.NewLogger(t)); err == nil {
		t.Error("Save() expected error")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("failed save left files behind: %v", entries)
	}
}

func TestNewOptions(t *testing.T) {
	log := zaptest.NewLogger(t)
	tests := []struct {
		name         string
		cfg          config.OutputConfig
		wantSplitter bool
	}{
		{"english", config.OutputConfig{Language: "en-US", Sentences: true}, true},
		{"hebrew", config.OutputConfig{Language: "he", Sentences: true}, false},
		{"off", config.OutputConfig{Language: "en", Sentences: false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions(&tt.cfg, log)
			if (opts.Splitter != nil) != tt.wantSplitter {
				t.Errorf("NewOptions() splitter = %v, want %v", opts.Splitter != nil, tt.wantSplitter)
			}
			if opts.Sentences != tt.cfg.Sentences {
				t.Errorf("NewOptions() sentences = %v", opts.Sentences)
			}
		})
	}
}
