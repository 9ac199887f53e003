package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	maxSeqLen   = 128
	maxWordLen  = 200
	unkToken    = "[UNK]"
	continuePfx = "##"
)

// encoding is one tokenized input ready for the encoder. All three slices
// have the same length.
type encoding struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
}

func (e encoding) seqLen() int64 { return int64(len(e.inputIDs)) }

// wordpiece is an uncased BERT tokenizer.
type wordpiece struct {
	vocab *vocab
}

// encode produces [CLS] tokens... [SEP], truncated to maxSeqLen. No padding
// is added since each call runs as a batch of one.
func (w *wordpiece) encode(s string) encoding {
	pieces := w.split(s)
	if len(pieces) > maxSeqLen-2 {
		pieces = pieces[:maxSeqLen-2]
	}

	n := len(pieces) + 2
	enc := encoding{
		inputIDs:      make([]int64, 0, n),
		attentionMask: make([]int64, n),
		tokenTypeIDs:  make([]int64, n),
	}
	enc.inputIDs = append(enc.inputIDs, w.vocab.cls)
	for _, p := range pieces {
		enc.inputIDs = append(enc.inputIDs, w.vocab.id(p))
	}
	enc.inputIDs = append(enc.inputIDs, w.vocab.sep)
	for i := range enc.attentionMask {
		enc.attentionMask[i] = 1
	}
	return enc
}

// split runs basic tokenization followed by greedy longest-match-first
// subword splitting.
func (w *wordpiece) split(s string) []string {
	var out []string
	for _, word := range basicTokens(s) {
		out = append(out, w.subwords(word)...)
	}
	return out
}

func (w *wordpiece) subwords(word string) []string {
	runes := []rune(word)
	if len(runes) > maxWordLen {
		return []string{unkToken}
	}

	var parts []string
	for start := 0; start < len(runes); {
		end := len(runes)
		var match string
		for ; end > start; end-- {
			cand := string(runes[start:end])
			if start > 0 {
				cand = continuePfx + cand
			}
			if w.vocab.has(cand) {
				match = cand
				break
			}
		}
		if match == "" {
			return []string{unkToken}
		}
		parts = append(parts, match)
		start = end
	}
	return parts
}

// basicTokens lowercases, strips accents, and splits on whitespace and
// punctuation. CJK ideographs become single-rune tokens.
func basicTokens(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		switch {
		case r == 0 || r == unicode.ReplacementChar || isControl(r):
		case unicode.In(r, unicode.Mn):
		case isSpace(r):
			b.WriteRune(' ')
		case isPunct(r) || isCJK(r):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

// isPunct treats all non-alphanumeric ASCII symbols as punctuation, as BERT
// does, in addition to Unicode punctuation.
func isPunct(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
