package config

import (
	"os"
	"strings"
	"unicode/utf8"
)

// maxFileNameBytes keeps generated names below common file system limits,
// leaving room for extension and temporary suffix.
const maxFileNameBytes = 240

const badFileName = "_bad_file_name_"

// CleanFileName removes characters not allowed in file name on the current
// platform and shortens overly long names.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym < ' ' || strings.ContainsRune(reservedChars+string(os.PathSeparator)+string(os.PathListSeparator), sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimRight(strings.TrimLeft(out, ". "), trimRight)
	if len(out) > maxFileNameBytes {
		cut := maxFileNameBytes
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	if len(out) == 0 {
		out = badFileName
	}
	return out
}
