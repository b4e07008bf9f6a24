package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Write stores snapshot document in the same layout annotators produce.
// Non-ASCII text is written as is.
func Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteFile writes snapshot to a temporary file first and renames it, so
// interrupted batch never leaves truncated snapshot behind.
func WriteFile(path string, v any) (err error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("unable to create snapshot file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err = Write(f, v); err != nil {
		f.Close()
		return fmt.Errorf("unable to write snapshot: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("unable to write snapshot: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("unable to write snapshot: %w", err)
	}
	return nil
}
