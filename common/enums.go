// Package common keeps enums shared between configuration and processing
// packages, so neither has to import the other.
package common

//go:generate go tool go-enum --marshal --names

// Specification of requested output type.
// ENUM(text, json, xml, sqlite)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtText:
		return ".txt"
	case OutputFmtJson:
		return ".json"
	case OutputFmtXml:
		return ".xml"
	case OutputFmtSqlite:
		return ".sqlite"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Ordering of fallback paragraphs.
// ENUM(chronological, source)
type FallbackOrder int
