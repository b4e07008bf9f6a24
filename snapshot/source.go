package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"

	"bookmerge/archive"
)

// Files names snapshot files inside snapshot location.
type Files struct {
	Tags            string `yaml:"tags" validate:"required"`
	Paragraphs      string `yaml:"paragraphs" validate:"required"`
	InsertionPoints string `yaml:"insertion_points" validate:"required"`
}

// DefaultFiles returns names used by annotation tooling.
func DefaultFiles() Files {
	return Files{
		Tags:            "pages_tagged_by_ai.json",
		Paragraphs:      "paragraphs.json",
		InsertionPoints: "insertion_points.json",
	}
}

// Source supplies snapshots to the merge engine. Implementations decide where
// snapshots come from, engine only sees decoded records.
type Source interface {
	// Name is used in logs and diagnostics.
	Name() string
	Tags(ctx context.Context) (*TagFile, error)
	Paragraphs(ctx context.Context) (*ParagraphFile, error)
	// InsertionPoints returns nil without error when snapshot is absent.
	InsertionPoints(ctx context.Context) (*InsertionFile, error)
}

// ErrMissing is returned when required snapshot cannot be found.
var ErrMissing = errors.New("snapshot is missing")

// FileSource reads snapshots from a directory, a zip bundle or a directory
// inside a zip bundle ("bundle.zip/run1").
type FileSource struct {
	location string
	files    Files
	data     map[string][]byte
}

// Open locates snapshot files at path and reads them into memory.
func Open(ctx context.Context, path string, files Files) (*FileSource, error) {
	src := &FileSource{location: path, files: files}

	var head, tail string
	for head = path; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				return nil, fmt.Errorf("snapshot location was not found (%s) => (%s)", head, strings.TrimPrefix(path, head))
			}
			if src.data, err = readDir(head, files); err != nil {
				return nil, err
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(path, head))
		}

		zip, err := isArchiveFile(head)
		if err != nil {
			return nil, fmt.Errorf("unable to check archive type: %w", err)
		}
		if !zip {
			return nil, fmt.Errorf("snapshot location is neither directory nor zip bundle (%s)", head)
		}
		inner := strings.TrimPrefix(strings.TrimPrefix(path, head), string(filepath.Separator))
		if src.data, err = archive.ReadFiles(head, inner, files.Tags, files.Paragraphs, files.InsertionPoints); err != nil {
			return nil, fmt.Errorf("unable to read bundle: %w", err)
		}
		break
	}
	if len(head) == 0 {
		return nil, fmt.Errorf("snapshot location was not found (%s)", path)
	}
	return src, nil
}

func readDir(dir string, files Files) (map[string][]byte, error) {
	out := make(map[string][]byte, 3)
	for _, name := range []string{files.Tags, files.Paragraphs, files.InsertionPoints} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("unable to read snapshot: %w", err)
		}
		out[name] = data
	}
	return out, nil
}

func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

func (s *FileSource) Name() string {
	return s.location
}

// Raw returns snapshot bytes as they were read, nil when file was absent.
func (s *FileSource) Raw(name string) []byte {
	return s.data[name]
}

func (s *FileSource) Tags(ctx context.Context) (*TagFile, error) {
	var f TagFile
	if err := s.decode(ctx, s.files.Tags, true, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FileSource) Paragraphs(ctx context.Context) (*ParagraphFile, error) {
	var f ParagraphFile
	if err := s.decode(ctx, s.files.Paragraphs, true, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FileSource) InsertionPoints(ctx context.Context) (*InsertionFile, error) {
	if _, ok := s.data[s.files.InsertionPoints]; !ok {
		return nil, nil
	}
	var f InsertionFile
	if err := s.decode(ctx, s.files.InsertionPoints, false, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FileSource) decode(ctx context.Context, name string, required bool, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, ok := s.data[name]
	if !ok {
		if required {
			return fmt.Errorf("%s: %w", name, ErrMissing)
		}
		return nil
	}
	return Unmarshal(name, data, v)
}

// Unmarshal decodes snapshot document. Byte order mark is tolerated.
func Unmarshal(name string, data []byte, v any) error {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unable to decode %s: %w", name, err)
	}
	return nil
}

// MemorySource serves already materialized snapshots.
type MemorySource struct {
	Label      string
	TagData    *TagFile
	ParaData   *ParagraphFile
	InsertData *InsertionFile
}

func (s *MemorySource) Name() string {
	if s.Label == "" {
		return "memory"
	}
	return s.Label
}

func (s *MemorySource) Tags(ctx context.Context) (*TagFile, error) {
	if s.TagData == nil {
		return nil, fmt.Errorf("tags: %w", ErrMissing)
	}
	return s.TagData, ctx.Err()
}

func (s *MemorySource) Paragraphs(ctx context.Context) (*ParagraphFile, error) {
	if s.ParaData == nil {
		return nil, fmt.Errorf("paragraphs: %w", ErrMissing)
	}
	return s.ParaData, ctx.Err()
}

func (s *MemorySource) InsertionPoints(ctx context.Context) (*InsertionFile, error) {
	return s.InsertData, ctx.Err()
}
