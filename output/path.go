package output

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"bookmerge/config"
	"bookmerge/merge"
)

// BuildPath returns output file path for the document in dst directory. It
// uses either default naming scheme or user-defined template, cleans up path
// and if requested transliterates it.
func BuildPath(doc *merge.Document, dst string, cfg *config.OutputConfig, log *zap.Logger) string {
	defaultFile := buildDefaultFileName(doc, cfg)

	if cfg.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}

	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, cfg.OutputNameTemplate, nameValues(doc, cfg.Format))
	if err != nil {
		log.Warn("Unable to prepare output filename", zap.Error(err))
		return filepath.Join(dst, defaultFile)
	}
	expandedName = filepath.FromSlash(strings.TrimSpace(expandedName))
	if expandedName == "" {
		// fallback to default name if template expanded to nothing
		return filepath.Join(dst, defaultFile)
	}
	return assemblePathWithSubdirs(dst, expandedName, cfg)
}

func buildDefaultFileName(doc *merge.Document, cfg *config.OutputConfig) string {
	baseName := string(doc.Primary)
	if doc.Secondary != "" {
		baseName += "-" + string(doc.Secondary)
	}
	return cleanPathSegment(baseName, cfg) + cfg.Format.Ext()
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, cfg *config.OutputConfig) string {
	pathSegments := splitPath(expandedName)
	if len(pathSegments) == 0 {
		return outDir
	}

	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)
	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, cfg))
	}
	dirParts = append(dirParts, cleanPathSegment(pathSegments[len(pathSegments)-1], cfg)+cfg.Format.Ext())
	return filepath.Join(dirParts...)
}

func splitPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, cfg *config.OutputConfig) string {
	if cfg.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
