package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"bookmerge/diag"
)

func TestUnion(t *testing.T) {
	tag := func(s string) []json.RawMessage { return []json.RawMessage{json.RawMessage(s)} }

	a := &TagFile{Pages: []PageRecord{
		{BookID: "b2", PageNumber: 1, LineTags: tag(`{"line_start":1,"line_end":1,"year":1900}`)},
		{BookID: "b1", PageNumber: 2},
		{BookID: "b1", PageNumber: 1, LineTags: tag(`{"line_start":1,"line_end":1}`)},
	}}
	b := &TagFile{Pages: []PageRecord{
		{BookID: "b1", PageNumber: 2, LineTags: tag(`{"line_start":1,"line_end":2}`)},
		{BookID: "b2", PageNumber: 1, LineTags: tag(`{"line_start": 1, "line_end": 1, "year": 1900}`)},
		{BookID: "b1", PageNumber: 1, LineTags: tag(`{"line_start":1,"line_end":1,"year":1}`)},
		{BookID: "b1", PageNumber: 3},
	}}

	diags := diag.NewList(zaptest.NewLogger(t))
	got := Union([]*TagFile{a, nil, b}, diags)

	var order []string
	for _, p := range got.Pages {
		order = append(order, p.BookID+"/"+string(rune('0'+p.PageNumber)))
	}
	if strings.Join(order, " ") != "b1/1 b1/2 b1/3 b2/1" {
		t.Errorf("Union() order = %v", order)
	}
	if !got.Pages[1].Tagged() {
		t.Error("untagged page must be replaced by tagged copy")
	}
	if string(got.Pages[0].LineTags[0]) != `{"line_start":1,"line_end":1}` {
		t.Errorf("first tagging must be kept, got %s", got.Pages[0].LineTags[0])
	}
	// whitespace difference is not a conflict
	if n := diags.Count("page_conflict"); n != 1 {
		t.Errorf("page_conflict count = %d, want 1", n)
	}
	if got.Metadata["partial_snapshots"] != 2 {
		t.Errorf("metadata = %v", got.Metadata)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f := &TagFile{Pages: []PageRecord{{BookID: "b<1>", PageNumber: 1, Lines: []LineRecord{{Number: 1, Text: "שלום"}}}}}
	if err := WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("b<1>")) || !bytes.Contains(data, []byte("שלום")) {
		t.Errorf("WriteFile() escaped content: %s", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	var back TagFile
	if err := Unmarshal("out.json", data, &back); err != nil || len(back.Pages) != 1 {
		t.Errorf("Unmarshal() = %+v, %v", back, err)
	}
}
