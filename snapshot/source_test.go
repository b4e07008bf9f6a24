package snapshot

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const (
	tagsDoc       = `{"pages": [{"book_id": "b1", "page_number": 1, "lines": [{"line_number": 1, "text": "x"}], "line_tags": []}]}`
	paragraphsDoc = `{"paragraphs": [{"paragraph_id": "p1", "source_pages": [{"page": 1, "line_start": 1, "line_end": 1}], "text": "t", "order_index": 0}]}`
	insertionDoc  = `{"insertion_points": [{"paragraph_id": "p1", "anchor_page": 1, "anchor_line": 1}]}`
)

func writeBundle(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s in zip: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write zip: %v", err)
	}
}

func TestOpen_Directory(t *testing.T) {
	dir := t.TempDir()
	files := DefaultFiles()
	// BOM must be tolerated
	if err := os.WriteFile(filepath.Join(dir, files.Tags), append([]byte{0xEF, 0xBB, 0xBF}, tagsDoc...), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, files.Paragraphs), []byte(paragraphsDoc), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	src, err := Open(ctx, dir, files)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	tags, err := src.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags() error = %v", err)
	}
	if len(tags.Pages) != 1 {
		t.Errorf("Tags() pages = %d, want 1", len(tags.Pages))
	}
	paras, err := src.Paragraphs(ctx)
	if err != nil || len(paras.Paragraphs) != 1 {
		t.Errorf("Paragraphs() = %v, %v", paras, err)
	}
	ips, err := src.InsertionPoints(ctx)
	if err != nil || ips != nil {
		t.Errorf("InsertionPoints() = %v, %v; want nil, nil", ips, err)
	}
	if src.Raw(files.InsertionPoints) != nil {
		t.Error("Raw() of absent snapshot must be nil")
	}
}

func TestOpen_Bundle(t *testing.T) {
	dir := t.TempDir()
	files := DefaultFiles()
	bundle := filepath.Join(dir, "bundle.zip")
	writeBundle(t, bundle, map[string]string{
		files.Tags:                       `{"pages": []}`,
		"run1/" + files.Tags:             tagsDoc,
		"run1/" + files.Paragraphs:       paragraphsDoc,
		"run1/" + files.InsertionPoints:  insertionDoc,
		"run1/extra/" + files.Paragraphs: `{}`,
	})

	ctx := context.Background()
	tests := []struct {
		name      string
		path      string
		wantPages int
		wantIPs   bool
		wantErr   bool
	}{
		{name: "root of bundle", path: bundle, wantPages: 0, wantErr: true},
		{name: "directory in bundle", path: filepath.Join(bundle, "run1"), wantPages: 1, wantIPs: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(ctx, tt.path, files)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			tags, err := src.Tags(ctx)
			if err != nil {
				t.Fatalf("Tags() error = %v", err)
			}
			if len(tags.Pages) != tt.wantPages {
				t.Errorf("Tags() pages = %d, want %d", len(tags.Pages), tt.wantPages)
			}
			_, err = src.Paragraphs(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("Paragraphs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrMissing) {
				t.Errorf("Paragraphs() error = %v, want ErrMissing", err)
			}
			ips, err := src.InsertionPoints(ctx)
			if err != nil {
				t.Fatalf("InsertionPoints() error = %v", err)
			}
			if (ips != nil) != tt.wantIPs {
				t.Errorf("InsertionPoints() = %v, want present %v", ips, tt.wantIPs)
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(plain, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, path := range []string{
		filepath.Join(dir, "nowhere"),
		plain,
		filepath.Join(dir, "missing", "deeper"),
	} {
		if _, err := Open(ctx, path, DefaultFiles()); err == nil {
			t.Errorf("Open(%q) expected error", path)
		}
	}
}

func TestOpen_BadJSON(t *testing.T) {
	dir := t.TempDir()
	files := DefaultFiles()
	if err := os.WriteFile(filepath.Join(dir, files.Tags), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	src, err := Open(ctx, dir, files)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := src.Tags(ctx); err == nil {
		t.Error("Tags() expected decode error")
	}
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	src := &MemorySource{TagData: &TagFile{}}
	if src.Name() != "memory" {
		t.Errorf("Name() = %q", src.Name())
	}
	if _, err := src.Tags(ctx); err != nil {
		t.Errorf("Tags() error = %v", err)
	}
	if _, err := src.Paragraphs(ctx); !errors.Is(err, ErrMissing) {
		t.Errorf("Paragraphs() error = %v, want ErrMissing", err)
	}
	if ips, err := src.InsertionPoints(ctx); ips != nil || err != nil {
		t.Errorf("InsertionPoints() = %v, %v", ips, err)
	}
}
