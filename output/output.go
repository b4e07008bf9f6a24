// Package output renders merged document together with its provenance index
// in one of supported formats.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"bookmerge/common"
	"bookmerge/config"
	"bookmerge/content/text"
	"bookmerge/merge"
	"bookmerge/provenance"
)

// Options controls rendering.
type Options struct {
	Format common.OutputFmt
	// Sentences adds sentence level citations to structured formats.
	Sentences bool
	// Splitter may be nil, then every segment is a single sentence.
	Splitter *text.Splitter
	// Headers puts citation header before every paragraph of text output.
	Headers        bool
	HeaderTemplate string
}

// NewOptions prepares rendering options from configuration.
func NewOptions(cfg *config.OutputConfig, log *zap.Logger) Options {
	opts := Options{
		Format:         cfg.Format,
		Sentences:      cfg.Sentences,
		Headers:        cfg.Headers,
		HeaderTemplate: cfg.HeaderTemplate,
	}
	if !cfg.Sentences {
		return opts
	}
	lang, err := language.Parse(cfg.Language)
	if err != nil {
		// validated by configuration, should never happen
		log.Warn("Unable to parse output language", zap.String("language", cfg.Language), zap.Error(err))
		lang = language.English
	}
	opts.Splitter = text.NewSplitter(lang, log)
	return opts
}

// Encode writes document to w. SQLite database cannot be streamed, use Save
// for it.
func Encode(w io.Writer, doc *merge.Document, opts Options) error {
	switch opts.Format {
	case common.OutputFmtText:
		return writeText(w, doc, opts)
	case common.OutputFmtJson:
		return writeJSON(w, doc, sentences(doc, opts))
	case common.OutputFmtXml:
		return writeXML(w, doc, sentences(doc, opts))
	default:
		return fmt.Errorf("format %s could not be streamed", opts.Format)
	}
}

// Save writes document to a file, replacing existing one.
func Save(path string, doc *merge.Document, opts Options, log *zap.Logger) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if opts.Format == common.OutputFmtSqlite {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unable to remove old database: %w", err)
		}
		if err := writeSQLite(path, doc, sentences(doc, opts)); err != nil {
			return fmt.Errorf("unable to write database: %w", err)
		}
		log.Debug("Database written", zap.String("path", path))
		return nil
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err = Encode(f, doc, opts); err != nil {
		f.Close()
		return fmt.Errorf("unable to write %s output: %w", opts.Format, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("unable to write %s output: %w", opts.Format, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("unable to write %s output: %w", opts.Format, err)
	}
	log.Debug("Output written", zap.String("path", path), zap.Stringer("format", opts.Format))
	return nil
}

func sentences(doc *merge.Document, opts Options) []provenance.Sentence {
	if !opts.Sentences || doc.Index == nil {
		return nil
	}
	return doc.Index.Sentences(doc.Text, opts.Splitter)
}
