// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/bumble-foundation/bumble/lib/value"
)

// maxNestingDepth bounds container nesting during decode. The decoder
// recurses once per open container, so adversarial input like
// "lllll..." could otherwise exhaust the stack long before exhausting
// memory.
const maxNestingDepth = 4096

// Decode deserializes a single value from data. The entire input must
// be consumed: trailing bytes after the outermost value are a
// *StructuralError, as is any truncated, non-canonical, or otherwise
// malformed token. Object tokens decode to inert *value.Object nodes;
// nothing derived from the stream is ever looked up or executed.
func Decode(data []byte) (value.Value, error) {
	decoded, rest, err := DecodeFirst(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, &StructuralError{
			Offset:  len(data) - len(rest),
			Message: fmt.Sprintf("%d trailing bytes after value", len(rest)),
		}
	}
	return decoded, nil
}

// DecodeFirst deserializes the first value from data and returns the
// unconsumed remainder. Use this to process concatenated values, such
// as the pipeline envelope header followed by its payload.
func DecodeFirst(data []byte) (value.Value, []byte, error) {
	scanner := &scanner{data: data}
	decoded, err := scanner.value()
	if err != nil {
		return nil, nil, err
	}
	return decoded, data[scanner.pos:], nil
}

// scanner is the single-pass decode state: a position advancing left
// to right through the input, never backtracking.
type scanner struct {
	data  []byte
	pos   int
	depth int
}

func (s *scanner) failf(offset int, format string, args ...any) error {
	return &StructuralError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// value decodes one complete token starting at the current position.
func (s *scanner) value() (value.Value, error) {
	if s.pos >= len(s.data) {
		return nil, s.failf(s.pos, "unexpected end of input, expected a value")
	}

	marker := s.data[s.pos]
	switch {
	case marker == 'n':
		s.pos++
		return value.Null{}, nil

	case marker == 'T':
		s.pos++
		return value.Bool(true), nil

	case marker == 'F':
		s.pos++
		return value.Bool(false), nil

	case marker == 'i':
		return s.integer()

	case marker == 'f':
		return s.float()

	case marker >= '0' && marker <= '9':
		raw, err := s.lengthPrefixed(0)
		if err != nil {
			return nil, err
		}
		return value.Bytes(raw), nil

	case marker == 'u':
		start := s.pos
		s.pos++
		raw, err := s.lengthPrefixed(start)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			return nil, s.failf(start, "text token contains invalid UTF-8")
		}
		return value.Text(raw), nil

	case marker == 'l' || marker == 't':
		return s.sequence(marker)

	case marker == 's':
		return s.set()

	case marker == 'd':
		return s.dict()

	case marker == 'o':
		return s.object()

	default:
		return nil, s.failf(s.pos, "unknown marker byte 0x%02x", marker)
	}
}

// integer decodes an 'i...e' token. The digit sequence must be
// canonical: an optional leading minus, no leading zero except the
// literal "0", and no "-0".
func (s *scanner) integer() (value.Value, error) {
	start := s.pos
	s.pos++ // consume 'i'

	text, err := s.terminated(start, "integer")
	if err != nil {
		return nil, err
	}
	if err := checkCanonicalInt(text); err != nil {
		return nil, s.failf(start, "non-canonical integer %q: %v", text, err)
	}

	parsed, err := value.ParseInt(text)
	if err != nil {
		return nil, s.failf(start, "invalid integer %q", text)
	}
	return parsed, nil
}

// float decodes an 'f...e' token: one of the literals nan, inf, -inf,
// or a decimal double with an uppercase exponent marker.
func (s *scanner) float() (value.Value, error) {
	start := s.pos
	s.pos++ // consume 'f'

	text, err := s.terminated(start, "float")
	if err != nil {
		return nil, err
	}

	switch text {
	case "nan":
		return value.Float(math.NaN()), nil
	case "inf":
		return value.Float(math.Inf(1)), nil
	case "-inf":
		return value.Float(math.Inf(-1)), nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c < '0' || c > '9') && c != '.' && c != 'E' && c != '+' && c != '-' {
			return nil, s.failf(start, "invalid float token %q", text)
		}
	}
	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, s.failf(start, "invalid float token %q", text)
	}
	// Same strictness as integers: only the canonical spelling of a
	// float is accepted, so decode∘encode is byte-stable.
	if canonical := value.FormatFloat(parsed); canonical != text {
		return nil, s.failf(start, "non-canonical float %q, canonical form is %q", text, canonical)
	}
	return value.Float(parsed), nil
}

// lengthPrefixed decodes "<decimal length>:<raw octets>" starting at
// the current position (the first digit). tokenStart is the offset of
// the token's marker byte, used in error reports.
func (s *scanner) lengthPrefixed(tokenStart int) ([]byte, error) {
	digitsStart := s.pos
	for s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '9' {
		s.pos++
	}
	if s.pos >= len(s.data) {
		return nil, s.failf(tokenStart, "unexpected end of input inside length prefix")
	}
	if s.data[s.pos] != ':' {
		return nil, s.failf(s.pos, "expected ':' after length prefix, found 0x%02x", s.data[s.pos])
	}

	digits := string(s.data[digitsStart:s.pos])
	if len(digits) == 0 {
		return nil, s.failf(tokenStart, "empty length prefix")
	}
	if len(digits) > 1 && digits[0] == '0' {
		return nil, s.failf(tokenStart, "non-canonical length prefix %q: leading zero", digits)
	}
	length, err := strconv.Atoi(digits)
	if err != nil {
		// Only reachable for a length too large for int.
		return nil, s.failf(tokenStart, "length prefix %q out of range", digits)
	}

	s.pos++ // consume ':'
	if length > len(s.data)-s.pos {
		return nil, s.failf(tokenStart, "length prefix %d exceeds %d remaining bytes", length, len(s.data)-s.pos)
	}

	raw := s.data[s.pos : s.pos+length]
	s.pos += length
	return raw, nil
}

// terminated consumes bytes up to the 'e' terminator and returns the
// enclosed text. The terminator is consumed.
func (s *scanner) terminated(tokenStart int, what string) (string, error) {
	textStart := s.pos
	for s.pos < len(s.data) && s.data[s.pos] != 'e' {
		s.pos++
	}
	if s.pos >= len(s.data) {
		return "", s.failf(tokenStart, "unterminated %s token", what)
	}
	text := string(s.data[textStart:s.pos])
	s.pos++ // consume 'e'
	if len(text) == 0 {
		return "", s.failf(tokenStart, "empty %s token", what)
	}
	return text, nil
}

func (s *scanner) enter(tokenStart int) error {
	s.depth++
	if s.depth > maxNestingDepth {
		return s.failf(tokenStart, "container nesting exceeds %d levels", maxNestingDepth)
	}
	return nil
}

// sequence decodes a list ('l') or tuple ('t') token.
func (s *scanner) sequence(marker byte) (value.Value, error) {
	start := s.pos
	s.pos++ // consume marker
	if err := s.enter(start); err != nil {
		return nil, err
	}
	defer func() { s.depth-- }()

	var elems []value.Value
	for {
		if s.pos >= len(s.data) {
			return nil, s.failf(start, "unterminated %s", kindName(marker))
		}
		if s.data[s.pos] == 'e' {
			s.pos++
			break
		}
		element, err := s.value()
		if err != nil {
			return nil, err
		}
		elems = append(elems, element)
	}

	if marker == 'l' {
		return value.NewList(elems...), nil
	}
	return value.NewTuple(elems...), nil
}

// set decodes an 's' token. The decoder does not require canonical
// member order, but every member must be hashable and duplicates are
// an error.
func (s *scanner) set() (value.Value, error) {
	start := s.pos
	s.pos++ // consume 's'
	if err := s.enter(start); err != nil {
		return nil, err
	}
	defer func() { s.depth-- }()

	result, _ := value.NewSet()
	for {
		if s.pos >= len(s.data) {
			return nil, s.failf(start, "unterminated set")
		}
		if s.data[s.pos] == 'e' {
			s.pos++
			break
		}
		memberStart := s.pos
		member, err := s.value()
		if err != nil {
			return nil, err
		}
		if result.Contains(member) {
			return nil, s.failf(memberStart, "duplicate set member")
		}
		if err := result.Add(member); err != nil {
			return nil, s.failf(memberStart, "invalid set member: %v", err)
		}
	}
	return result, nil
}

// dict decodes a 'd' token: alternating key and value tokens. Keys
// must be hashable; a repeated key is an error. Insertion order is
// preserved in the decoded dict.
func (s *scanner) dict() (value.Value, error) {
	start := s.pos
	s.pos++ // consume 'd'
	if err := s.enter(start); err != nil {
		return nil, err
	}
	defer func() { s.depth-- }()

	result := value.NewDict()
	for {
		if s.pos >= len(s.data) {
			return nil, s.failf(start, "unterminated dict")
		}
		if s.data[s.pos] == 'e' {
			s.pos++
			break
		}

		keyStart := s.pos
		key, err := s.value()
		if err != nil {
			return nil, err
		}
		if _, present := result.Get(key); present {
			return nil, s.failf(keyStart, "duplicate dict key")
		}

		if s.pos >= len(s.data) {
			return nil, s.failf(start, "dict key at offset %d has no value", keyStart)
		}
		if s.data[s.pos] == 'e' {
			return nil, s.failf(s.pos, "dict key at offset %d has no value", keyStart)
		}
		entryValue, err := s.value()
		if err != nil {
			return nil, err
		}
		if err := result.Set(key, entryValue); err != nil {
			return nil, s.failf(keyStart, "invalid dict key: %v", err)
		}
	}
	return result, nil
}

// object decodes an 'o' token: a text type identifier, a field dict,
// and a terminator.
func (s *scanner) object() (value.Value, error) {
	start := s.pos
	s.pos++ // consume 'o'
	if err := s.enter(start); err != nil {
		return nil, err
	}
	defer func() { s.depth-- }()

	if s.pos >= len(s.data) {
		return nil, s.failf(start, "unterminated object")
	}
	if s.data[s.pos] != 'u' {
		return nil, s.failf(s.pos, "expected text type identifier in object, found marker 0x%02x", s.data[s.pos])
	}
	typeID, err := s.value()
	if err != nil {
		return nil, err
	}

	if s.pos >= len(s.data) {
		return nil, s.failf(start, "unterminated object")
	}
	if s.data[s.pos] != 'd' {
		return nil, s.failf(s.pos, "expected field dict in object, found marker 0x%02x", s.data[s.pos])
	}
	fields, err := s.value()
	if err != nil {
		return nil, err
	}

	if s.pos >= len(s.data) || s.data[s.pos] != 'e' {
		return nil, s.failf(start, "unterminated object")
	}
	s.pos++ // consume 'e'

	return value.NewObject(string(typeID.(value.Text)), fields.(*value.Dict)), nil
}

// checkCanonicalInt validates the canonical decimal form: optional
// leading minus, at least one digit, no leading zero except the
// literal "0", and no negative zero.
func checkCanonicalInt(text string) error {
	digits := text
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return fmt.Errorf("no digits")
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return fmt.Errorf("invalid digit %q", digits[i])
		}
	}
	if len(digits) > 1 && digits[0] == '0' {
		return fmt.Errorf("leading zero")
	}
	if digits == "0" && digits != text {
		return fmt.Errorf("negative zero")
	}
	return nil
}

func kindName(marker byte) string {
	if marker == 'l' {
		return "list"
	}
	return "tuple"
}
