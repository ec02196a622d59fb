// Package pktline decodes the reference advertisement served by Git smart
// HTTP endpoints at info/refs?service=git-upload-pack.
//
// Lines are not split by their four digit length prefix. Each line is a
// head token of hex digits or '#', a run of blanks, and a payload up to the
// end of the line, so the length prefix stays part of the head token.
// Returned slices alias the input.
package pktline

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Line is a decoded (head, payload) pair.
type Line struct {
	Head    []byte
	Payload []byte
}

// SyntaxError reports input that cannot be decoded.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pkt-line: %s at offset %d", e.Msg, e.Offset)
}

// Decode reads as many lines as possible from input. At least one line
// is required. Decoding stops at the first position where a line does not
// parse, and the bytes from there on are returned as rest.
func Decode(input []byte) (lines []Line, rest []byte, err error) {
	rest = input
	for {
		line, n, msg := decodeLine(rest)
		if n == 0 {
			if len(lines) == 0 {
				return nil, input, &SyntaxError{Offset: len(input) - len(rest), Msg: msg}
			}
			return lines, rest, nil
		}
		lines = append(lines, line)
		rest = rest[n:]
	}
}

// decodeLine returns the line at the start of b and the number of bytes it
// occupies, including trailing whitespace. n is zero when b does not start
// with a complete line; msg then says why.
func decodeLine(b []byte) (line Line, n int, msg string) {
	i := 0
	for i < len(b) && isHeadByte(b[i]) {
		i++
	}
	if i == 0 {
		return Line{}, 0, "expected hex digits or '#'"
	}
	head := b[:i]

	j := i
	for j < len(b) && (b[j] == ' ' || b[j] == '\t') {
		j++
	}
	if j == i {
		return Line{}, 0, "expected blank after head"
	}

	k := j
	for k < len(b) && b[k] != '\n' {
		if b[k] == '\r' {
			if k+1 < len(b) && b[k+1] == '\n' {
				break
			}
			return Line{}, 0, "stray carriage return"
		}
		k++
	}
	payload := b[j:k]

	end := k
	for end < len(b) && isSpace(b[end]) {
		end++
	}
	if end == k {
		return Line{}, 0, "unterminated line"
	}

	return Line{Head: head, Payload: payload}, end, ""
}

func isHeadByte(c byte) bool {
	return c == '#' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// RefKind distinguishes tags from branches.
type RefKind int

const (
	TagRef RefKind = iota
	BranchRef
)

func (k RefKind) String() string {
	if k == BranchRef {
		return "branch"
	}
	return "tag"
}

// Ref is a reference from the advertisement. Revision is only set for
// branches.
type Ref struct {
	Kind     RefKind
	Name     string
	Revision string
}

var (
	flushPkt     = []byte("0000")
	peeledSuffix = []byte("^{}")
	tagsPrefix   = []byte("refs/tags/")
	headsPrefix  = []byte("refs/heads/")
)

// Refs decodes input and returns its tags and branches in advertisement
// order. Peeled entries and other references (HEAD, refs/pull/...) are
// skipped, as are names that are not valid UTF-8. Capabilities following
// a NUL byte are not part of the name. Anything left after the
// decoded lines other than a flush packet is an error.
func Refs(input []byte) ([]Ref, error) {
	lines, rest, err := Decode(input)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 && !bytes.HasPrefix(rest, flushPkt) {
		return nil, &SyntaxError{Offset: len(input) - len(rest), Msg: "unexpected data after references"}
	}

	var refs []Ref
	for _, l := range lines {
		name := l.Payload
		// The first reference carries the capability list after a NUL.
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		if bytes.HasSuffix(name, peeledSuffix) {
			continue
		}
		switch {
		case bytes.HasPrefix(name, tagsPrefix):
			tag := name[len(tagsPrefix):]
			if !utf8.Valid(tag) {
				continue
			}
			refs = append(refs, Ref{Kind: TagRef, Name: string(tag)})
		case bytes.HasPrefix(name, headsPrefix):
			branch := name[len(headsPrefix):]
			if !utf8.Valid(branch) || !utf8.Valid(l.Head) {
				continue
			}
			refs = append(refs, Ref{Kind: BranchRef, Name: string(branch), Revision: objectID(l.Head)})
		}
	}
	return refs, nil
}

// objectID strips the length prefix, and the flush packet in front of the
// first reference, from a head token. SHA-1 ids are 40 hex digits and
// SHA-256 ids are 64. Tokens of any other length are returned unchanged.
func objectID(head []byte) string {
	switch len(head) {
	case 40, 44, 48:
		return string(head[len(head)-40:])
	case 64, 68, 72:
		return string(head[len(head)-64:])
	default:
		return string(head)
	}
}
