// Package text splits merged text into sentences for sentence level
// citations.
package text

import (
	"iter"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Splitter is nil when no tokenizer model is available for the language, in
// which case any text is a single sentence.
type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// Span is a byte range of a sentence in the text it was split from, without
// surrounding white space.
type Span struct {
	Start int
	End   int
}

func NewSplitter(lang language.Tag, log *zap.Logger) *Splitter {
	name := display.English.Languages().Name(lang)

	base, confidence := lang.Base()
	if confidence == language.No {
		log.Warn("Unable to determine language base", zap.Stringer("tag", lang), zap.Stringer("base", base))
		return nil
	}
	if base.String() != "en" {
		log.Info("No sentence tokenizer model for language, turning off sentence splitting", zap.String("language", name))
		return nil
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data", zap.Stringer("tag", lang), zap.Error(err))
		return nil
	}
	return &Splitter{tokenizer}
}

// Split returns slice of sentences.
// For memory-efficient streaming, use Sentences iterator instead.
func (s *Splitter) Split(in string) []string {
	var out []string
	for sentence := range s.Sentences(in) {
		out = append(out, sentence)
	}
	return out
}

// Sentences returns an iterator over sentences. Concatenated sentences give
// back the input.
func (s *Splitter) Sentences(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == nil {
			yield(in)
			return
		}

		list := s.Tokenize(in)
		if len(list) == 0 {
			return
		}

		// Sentences tokenizer has a funny way of working - sentence trailing
		// spaces belong to the next sentence. Move them back where they
		// belong.
		for i := 0; i < len(list)-1; i++ {
			text := list[i].Text
			next := list[i+1].Text
			for idx, sym := range next {
				if !unicode.IsSpace(sym) {
					text += next[:idx]
					list[i+1].Text = next[idx:]
					break
				}
			}
			if !yield(text) {
				return
			}
		}
		yield(list[len(list)-1].Text)
	}
}

// Spans locates sentences in the input. White space only input has no
// sentences.
func (s *Splitter) Spans(in string) []Span {
	var (
		out    []Span
		cursor int
	)
	for sentence := range s.Sentences(in) {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			cursor += len(sentence)
			continue
		}
		idx := strings.Index(in[cursor:], trimmed)
		if idx < 0 {
			// tokenizer changed the text, give up on precise positions
			rest := strings.TrimSpace(in[cursor:])
			if rest != "" {
				start := cursor + strings.Index(in[cursor:], rest)
				out = append(out, Span{Start: start, End: start + len(rest)})
			}
			break
		}
		start := cursor + idx
		out = append(out, Span{Start: start, End: start + len(trimmed)})
		cursor = start + len(trimmed)
	}
	return out
}
