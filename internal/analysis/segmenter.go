package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MinSegmentLength is the smallest span worth matching against the
	// clause corpus.
	MinSegmentLength = 50

	// MaxSegments bounds analysis cost for very large documents. Overflow
	// is silently truncated.
	MaxSegments = 500

	longParagraphLimit = 1000
)

// Segment is a contiguous span of document text. Start and End are byte
// offsets into the original text, End-Start == len(Text).
type Segment struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

var (
	paragraphDelim   = regexp.MustCompile(`\n[ \t\r]*\n`)
	sentenceBoundary = regexp.MustCompile(`[.!?]+[ \t\r\n]+`)
	punctRun         = regexp.MustCompile(`[.!?]+`)
)

// SegmentText splits text into analyzable segments. Paragraphs are
// blank-line delimited; paragraphs over 1000 characters are further split
// at sentence boundaries. Segments below MinSegmentLength are dropped but
// their span still advances the offsets of what follows. Deterministic:
// identical input always yields identical output.
func SegmentText(text string) []Segment {
	if text == "" {
		return nil
	}

	segments := make([]Segment, 0, 32)
	emit := func(s Segment) bool {
		if len(segments) >= MaxSegments {
			return false
		}
		segments = append(segments, s)
		return true
	}

	pos := 0
	delims := paragraphDelim.FindAllStringIndex(text, -1)
	for i := 0; i <= len(delims); i++ {
		end := len(text)
		if i < len(delims) {
			end = delims[i][0]
		}
		para, start, stop := trimSpan(text, pos, end)
		if i < len(delims) {
			pos = delims[i][1]
		}
		if len(para) < MinSegmentLength {
			continue
		}
		if len(para) > longParagraphLimit {
			if !emitSentences(text, start, stop, emit) {
				return segments
			}
			continue
		}
		if !emit(Segment{Text: para, Start: start, End: stop}) {
			return segments
		}
	}
	return segments
}

func emitSentences(text string, start, stop int, emit func(Segment) bool) bool {
	para := text[start:stop]
	cursor := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(para, -1) {
		punct := punctRun.FindStringIndex(para[loc[0]:loc[1]])
		sentEnd := loc[0] + punct[1]
		sent, s, e := trimSpan(text, start+cursor, start+sentEnd)
		cursor = loc[1]
		if len(sent) < MinSegmentLength {
			continue
		}
		if !emit(Segment{Text: sent, Start: s, End: e}) {
			return false
		}
	}
	if rest, s, e := trimSpan(text, start+cursor, stop); len(rest) >= MinSegmentLength {
		return emit(Segment{Text: rest, Start: s, End: e})
	}
	return true
}

// trimSpan trims whitespace from text[start:end] while keeping offsets
// anchored in the original string.
func trimSpan(text string, start, end int) (string, int, int) {
	s := text[start:end]
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	start += len(s) - len(trimmed)
	trimmed = strings.TrimRightFunc(trimmed, unicode.IsSpace)
	return trimmed, start, start + len(trimmed)
}
