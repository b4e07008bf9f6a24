package output

import (
	"fmt"
	"strconv"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"bookmerge/merge"
	"bookmerge/misc"
	"bookmerge/provenance"
)

const schema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE segments (
	idx          INTEGER PRIMARY KEY,
	origin       TEXT NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset   INTEGER NOT NULL,
	first_line   INTEGER NOT NULL,
	last_line    INTEGER NOT NULL,
	book         TEXT NOT NULL,
	page         INTEGER NOT NULL,
	line_start   INTEGER NOT NULL,
	line_end     INTEGER NOT NULL,
	chapter      TEXT,
	paragraph_id TEXT,
	anchor_page  INTEGER,
	anchor_line  INTEGER,
	fallback     INTEGER NOT NULL DEFAULT 0,
	year         INTEGER,
	month        INTEGER,
	reason       TEXT,
	confidence   REAL,
	text         TEXT NOT NULL
);
CREATE INDEX segments_offsets ON segments (start_offset, end_offset);
CREATE INDEX segments_paragraphs ON segments (paragraph_id);
CREATE TABLE sources (
	paragraph_id TEXT NOT NULL,
	seq          INTEGER NOT NULL,
	page         INTEGER NOT NULL,
	line_start   INTEGER NOT NULL,
	line_end     INTEGER NOT NULL,
	PRIMARY KEY (paragraph_id, seq)
);
CREATE TABLE sentences (
	idx          INTEGER PRIMARY KEY,
	start_offset INTEGER NOT NULL,
	end_offset   INTEGER NOT NULL,
	segment      INTEGER NOT NULL REFERENCES segments (idx)
);
CREATE TABLE diagnostics (
	idx      INTEGER PRIMARY KEY,
	severity TEXT NOT NULL,
	kind     TEXT NOT NULL,
	subject  TEXT,
	message  TEXT NOT NULL
);
CREATE TABLE years (
	year  INTEGER PRIMARY KEY,
	count INTEGER NOT NULL
);
`

// writeSQLite creates database at path. Offsets of segments and sentences
// refer to document text which is stored in meta table.
func writeSQLite(path string, doc *merge.Document, sentences []provenance.Sentence) (err error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// everything goes in a single transaction
	defer sqlitex.Save(conn)(&err)

	meta := [][2]string{
		{"id", doc.ID().String()},
		{"generator", misc.GetAppName() + " " + misc.GetVersion()},
		{"primary_book", string(doc.Primary)},
		{"primary_name", doc.PrimaryName},
		{"secondary_book", string(doc.Secondary)},
		{"secondary_name", doc.SecondaryName},
		{"primary_lines", strconv.Itoa(doc.Stats.PrimaryLines)},
		{"paragraphs", strconv.Itoa(doc.Stats.Paragraphs)},
		{"anchored", strconv.Itoa(doc.Stats.Anchored)},
		{"fallback", strconv.Itoa(doc.Stats.Fallback)},
		{"undated", strconv.Itoa(doc.Stats.Undated)},
		{"text", doc.Text},
	}
	for _, kv := range meta {
		if err := execute(conn, `INSERT INTO meta (key, value) VALUES (?, ?)`, kv[0], kv[1]); err != nil {
			return fmt.Errorf("write meta: %w", err)
		}
	}

	var entries []provenance.Entry
	if doc.Index != nil {
		entries = doc.Index.Entries()
	}
	if len(entries) != len(doc.Segments) {
		return fmt.Errorf("index has %d entries for %d segments", len(entries), len(doc.Segments))
	}

	for i := range doc.Segments {
		s, e := &doc.Segments[i], &entries[i]
		var anchorPage, anchorLine any
		if s.Anchor != nil {
			anchorPage, anchorLine = s.Anchor.Page, s.Anchor.Line
		}
		var confidence any
		if s.Confidence > 0 {
			confidence = s.Confidence
		}
		fallback := 0
		if s.Fallback {
			fallback = 1
		}
		err := execute(conn, `INSERT INTO segments (idx, origin, start_offset, end_offset, first_line, last_line,
			book, page, line_start, line_end, chapter, paragraph_id, anchor_page, anchor_line, fallback,
			year, month, reason, confidence, text) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, s.Origin.String(), e.Start, e.End, e.FirstLine, e.LastLine,
			string(s.Provenance.Book), s.Provenance.Page, s.Provenance.LineStart, s.Provenance.LineEnd,
			textOrNil(s.Chapter), textOrNil(s.ParagraphID), anchorPage, anchorLine, fallback,
			intOrNil(s.Year), intOrNil(s.Month), textOrNil(s.Reason), confidence, s.Text)
		if err != nil {
			return fmt.Errorf("write segment %d: %w", i, err)
		}
		if s.Origin != provenance.KindParagraph {
			continue
		}
		for seq, sp := range s.Spans {
			err := execute(conn, `INSERT INTO sources (paragraph_id, seq, page, line_start, line_end) VALUES (?, ?, ?, ?, ?)`,
				s.ParagraphID, seq, sp.Page, sp.LineStart, sp.LineEnd)
			if err != nil {
				return fmt.Errorf("write sources of paragraph %q: %w", s.ParagraphID, err)
			}
		}
	}

	for i, s := range sentences {
		if err := execute(conn, `INSERT INTO sentences (idx, start_offset, end_offset, segment) VALUES (?, ?, ?, ?)`,
			i, s.Start, s.End, s.Entry); err != nil {
			return fmt.Errorf("write sentence %d: %w", i, err)
		}
	}

	for i, d := range doc.Diagnostics {
		if err := execute(conn, `INSERT INTO diagnostics (idx, severity, kind, subject, message) VALUES (?, ?, ?, ?, ?)`,
			i, d.Severity.String(), d.Kind, textOrNil(d.Subject), d.Message); err != nil {
			return fmt.Errorf("write diagnostic %d: %w", i, err)
		}
	}

	for _, yc := range doc.Stats.Years {
		if err := execute(conn, `INSERT INTO years (year, count) VALUES (?, ?)`, yc.Year, yc.Count); err != nil {
			return fmt.Errorf("write year %d: %w", yc.Year, err)
		}
	}
	return nil
}

func execute(conn *sqlite.Conn, query string, args ...any) error {
	return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args})
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
