package output

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"bookmerge/common"
	"bookmerge/config"
	"bookmerge/merge"
)

func TestBuildPath(t *testing.T) {
	doc := &merge.Document{Primary: "Diary of Anne", PrimaryName: "Diary", Secondary: "letters", SecondaryName: "Letters"}

	tests := []struct {
		name          string
		format        common.OutputFmt
		transliterate bool
		template      string
		want          string
	}{
		{
			name:          "default transliterated",
			format:        common.OutputFmtText,
			transliterate: true,
			want:          "diary-of-anne-letters.txt",
		},
		{
			name:   "default as is",
			format: common.OutputFmtJson,
			want:   "Diary of Anne-letters.json",
		},
		{
			name:          "template",
			format:        common.OutputFmtSqlite,
			transliterate: true,
			template:      `{{ .PrimaryName }} and {{ .SecondaryName }}`,
			want:          "diary-and-letters.sqlite",
		},
		{
			name:     "template with subdirectories",
			format:   common.OutputFmtXml,
			template: `{{ .Format }}/{{ .Secondary | upper }}`,
			want:     filepath.Join("xml", "LETTERS.xml"),
		},
		{
			name:     "broken template falls back",
			format:   common.OutputFmtText,
			template: `{{ .Primary`,
			want:     "Diary of Anne-letters.txt",
		},
		{
			name:     "empty expansion falls back",
			format:   common.OutputFmtText,
			template: `{{ if false }}x{{ end }}`,
			want:     "Diary of Anne-letters.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.OutputConfig{Format: tt.format, FileNameTransliterate: tt.transliterate, OutputNameTemplate: tt.template}
			got := BuildPath(doc, "out", cfg, zaptest.NewLogger(t))
			if want := filepath.Join("out", tt.want); got != want {
				t.Errorf("BuildPath() = %q, want %q", got, want)
			}
		})
	}
}

func TestBuildPath_NoSecondary(t *testing.T) {
	doc := &merge.Document{Primary: "only"}
	cfg := &config.OutputConfig{Format: common.OutputFmtText}
	if got := BuildPath(doc, "", cfg, zaptest.NewLogger(t)); got != "only.txt" {
		t.Errorf("BuildPath() = %q", got)
	}
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a", []string{"a"}},
		{filepath.Join("a", "b", "c"), []string{"a", "b", "c"}},
		{filepath.Join("a", "b") + string(filepath.Separator), []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := splitPath(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitPath(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitPath(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}
