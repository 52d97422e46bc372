package analysis

import (
	"strings"
	"testing"
)

func TestSegmentTextShortInputDropped(t *testing.T) {
	segs := SegmentText("Krótki akapit poniżej progu.")
	if len(segs) != 0 {
		t.Fatalf("expected no segments, got %d", len(segs))
	}
}

func TestSegmentTextEmptyInput(t *testing.T) {
	if segs := SegmentText(""); len(segs) != 0 {
		t.Fatalf("expected no segments for empty input, got %d", len(segs))
	}
}

func TestSegmentTextParagraphSplit(t *testing.T) {
	para1 := strings.Repeat("Sprzedawca zastrzega sobie prawo do zmian umowy. ", 2)
	para2 := strings.Repeat("Konsument zrzeka się wszelkich roszczeń wobec sprzedawcy. ", 2)
	text := para1 + "\n\n" + para2

	segs := SegmentText(text)
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	for i, seg := range segs {
		if text[seg.Start:seg.End] != seg.Text {
			t.Errorf("segment %d offsets do not point back at its text", i)
		}
		if seg.End-seg.Start != len(seg.Text) {
			t.Errorf("segment %d span length mismatch", i)
		}
	}
}

func TestSegmentTextLongParagraphSplitsAtSentences(t *testing.T) {
	sentence := "Niniejsza umowa podlega wyłącznie prawu obowiązującemu w siedzibie sprzedawcy. "
	text := strings.Repeat(sentence, 20) // well over the long-paragraph limit

	segs := SegmentText(text)
	if len(segs) < 2 {
		t.Fatalf("expected long paragraph to split, got %d segments", len(segs))
	}
	for i, seg := range segs {
		if len(seg.Text) < MinSegmentLength {
			t.Errorf("segment %d below minimum length: %d", i, len(seg.Text))
		}
		if text[seg.Start:seg.End] != seg.Text {
			t.Errorf("segment %d offsets drifted", i)
		}
	}
}

func TestSegmentTextCapsAtMaxSegments(t *testing.T) {
	para := strings.Repeat("Postanowienie umowne naruszające interesy konsumenta. ", 2)
	text := strings.Repeat(para+"\n\n", MaxSegments+100)

	segs := SegmentText(text)
	if len(segs) != MaxSegments {
		t.Fatalf("expected cap at %d segments, got %d", MaxSegments, len(segs))
	}
}

func TestSegmentTextDeterministic(t *testing.T) {
	text := strings.Repeat("Sprzedawca może jednostronnie zmienić cenę po zawarciu umowy. ", 3) +
		"\n\n" +
		strings.Repeat("Klient nie ma prawa odstąpić od umowy zawartej na odległość. ", 3)

	first := SegmentText(text)
	second := SegmentText(text)
	if len(first) != len(second) {
		t.Fatalf("segment counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("segment %d differs between runs", i)
		}
	}
}

func TestSegmentTextWhitespaceOnlyParagraphs(t *testing.T) {
	text := "   \n\n\t\n\n" + strings.Repeat("Wszelkie spory rozstrzyga sąd właściwy dla sprzedawcy. ", 2)
	segs := SegmentText(text)
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].Text != strings.TrimSpace(text) {
		t.Errorf("segment text not trimmed to content")
	}
}
