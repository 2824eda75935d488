// Package codec implements the bidirectional mapping between column values
// and their sortable index-byte form: the legacy single-byte character
// table used by Jet text indexes, and the integer-family bias applied to
// INT/SHORT index keys.
package codec

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnmappedIndexCharacter is returned when a string being encoded for an
// index contains a character absent from the legacy code table.
var ErrUnmappedIndexCharacter = errors.New("unmapped index character")

// PrefixSentinel precedes a prefixed code byte on the wire.
const PrefixSentinel byte = 0x2B // 43

// charToCode and codeToChar together form the legacy bidirectional mapping.
// Values are taken verbatim from the Jet index character table: the ASCII
// subset of space, digits, uppercase letters, and a fixed punctuation set.
var charToCode = map[rune]byte{
	'^': 2, '_': 3, '{': 9, '|': 11, '}': 13, '~': 15,

	' ': 7, '#': 12, '$': 14, '%': 16, '&': 18, '(': 20, ')': 22, '*': 24,
	',': 26, '/': 30, ':': 32, ';': 34, '?': 36, '@': 38, '+': 44, '<': 46,
	'=': 48, '>': 50,

	'0': 54, '1': 56, '2': 58, '3': 60, '4': 62, '5': 64, '6': 66, '7': 68,
	'8': 70, '9': 72,

	'A': 74, 'B': 76, 'C': 77, 'D': 79, 'E': 81, 'F': 83, 'G': 85, 'H': 87,
	'I': 89, 'J': 91, 'K': 92, 'L': 94, 'M': 96, 'N': 98, 'O': 100, 'P': 102,
	'Q': 104, 'R': 105, 'S': 107, 'T': 109, 'U': 111, 'V': 113, 'W': 115,
	'X': 117, 'Y': 118, 'Z': 120,
}

// prefixedCodes is the distinguished set of codes that must be preceded by
// PrefixSentinel on the wire.
var prefixedCodes = map[byte]bool{2: true, 3: true, 9: true, 11: true, 13: true, 15: true}

var codeToChar map[byte]rune

func init() {
	codeToChar = make(map[byte]rune, len(charToCode))
	for ch, code := range charToCode {
		codeToChar[code] = ch
	}
}

// IsPrefixed reports whether code must be preceded by PrefixSentinel.
func IsPrefixed(code byte) bool {
	return prefixedCodes[code]
}

// EncodeChar maps a character to its code-table byte and whether it
// requires the 0x2B prefix. ok is false if ch has no mapping.
func EncodeChar(ch rune) (code byte, prefixed bool, ok bool) {
	code, ok = charToCode[ch]
	return code, prefixedCodes[code], ok
}

// DecodeChar maps a code byte back to a character. ok is false for codes
// outside the table (callers should skip such bytes, matching the legacy
// decoder's behavior of silently dropping unmapped codes).
func DecodeChar(code byte) (ch rune, ok bool) {
	ch, ok = codeToChar[code]
	return ch, ok
}

var upperCaser = cases.Upper(language.Und)

// ActualValue uppercases s using Unicode-aware casing. This is the first
// step of building a text index key; the result still has to pass through
// the legacy code table to actually serialize, which is where any
// non-ASCII character that the table doesn't know about is rejected.
func ActualValue(s string) string {
	return upperCaser.String(s)
}

// IndexValue derives the on-disk index form from the actual form: the
// actual value with every '.' removed. This projection is lossy and not
// invertible; see the soft-cache discussion in SPEC_FULL.md §9.
func IndexValue(actual string) string {
	out := make([]rune, 0, len(actual))
	for _, r := range actual {
		if r != '.' {
			out = append(out, r)
		}
	}
	return string(out)
}

// EncodeString serializes s (expected to already be in index form, i.e.
// uppercased with '.' removed) into its wire byte sequence: one code per
// character, each preceded by PrefixSentinel when its code is in the
// prefixed set, with the legacy "_"-string anomaly reproduced verbatim
// (the whole string being a single underscore emits an extra trailing
// code-3 byte). It does not emit the leading presence byte, the 0x01
// terminator, or any extra bytes — those are entry-level framing handled
// by the index package.
func EncodeString(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)+4)
	for _, ch := range s {
		code, prefixed, ok := EncodeChar(ch)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnmappedIndexCharacter, ch)
		}
		if prefixed {
			out = append(out, PrefixSentinel)
		}
		out = append(out, code)
		if s == "_" {
			out = append(out, 3)
		}
	}
	return out, nil
}

// EncodedSize computes the number of wire bytes EncodeString would produce
// for s, without allocating, for use in EntryColumn.nonNullSize.
func EncodedSize(s string) int {
	n := 0
	for _, ch := range s {
		n++
		if code, ok := charToCode[ch]; ok && prefixedCodes[code] {
			n++
		}
	}
	if s == "_" {
		n++
	}
	return n
}

// ByteReader is the minimal interface DecodeString needs to consume a
// terminated code stream from a page buffer.
type ByteReader interface {
	ReadByte() (byte, error)
}

// DecodeString reads a code stream from r, stopping at and consuming the
// 0x01 terminator byte. A byte equal to PrefixSentinel signals that the
// following byte is the actual code; codes with no table entry are
// silently dropped, matching the legacy decoder.
func DecodeString(r ByteReader) (string, error) {
	var out []rune
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("index text stream: %w", err)
		}
		if b == 0x01 {
			return string(out), nil
		}
		if b == PrefixSentinel {
			b, err = r.ReadByte()
			if err != nil {
				return "", fmt.Errorf("index text stream: %w", err)
			}
		}
		if ch, ok := DecodeChar(b); ok {
			out = append(out, ch)
		}
	}
}
