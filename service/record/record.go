// Package record reads and writes the on-disk form of a vault item: an
// optional header block fenced by "---" lines holding "key: value" entries,
// followed by free-form body text.
package record

import (
	"bytes"
	"strings"

	"github.com/viant/vaultflow/model"
)

// Delimiter fences the header block.
const Delimiter = "---"

// Record is a decoded item file.
type Record struct {
	Metadata *model.Metadata
	Body     string
}

// New creates a record.
func New(metadata *model.Metadata, body string) *Record {
	if metadata == nil {
		metadata = model.NewMetadata()
	}
	return &Record{Metadata: metadata, Body: body}
}

// Decode parses raw file content. It never fails: input without a well formed
// header yields empty metadata and the whole input as body. Header lines may
// end in CRLF; the body is returned byte for byte.
func Decode(raw []byte) *Record {
	text := string(raw)
	metadata := model.NewMetadata()
	whole := &Record{Metadata: metadata, Body: text}
	line, rest, terminated := cutLine(text)
	if line != Delimiter || !terminated {
		return whole
	}
	var header []string
	var body string
	for {
		if rest == "" {
			return whole
		}
		line, next, terminated := cutLine(rest)
		if line == Delimiter {
			body = next
			break
		}
		if !terminated {
			return whole
		}
		header = append(header, line)
		rest = next
	}
	for _, line := range header {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		metadata.Set(key, strings.TrimSpace(value))
	}
	return &Record{Metadata: metadata, Body: body}
}

// cutLine splits off the first line, dropping its LF or CRLF terminator.
func cutLine(text string) (line, rest string, terminated bool) {
	line, rest, terminated = strings.Cut(text, "\n")
	return strings.TrimSuffix(line, "\r"), rest, terminated
}

// Encode renders the record. Records without metadata are written as bare
// body text unless the body itself opens with a fence.
func Encode(r *Record) []byte {
	var buf bytes.Buffer
	if r.Metadata.Len() == 0 && opensWithFence(r.Body) {
		buf.WriteString(Delimiter + "\n" + Delimiter + "\n")
	}
	if r.Metadata.Len() > 0 {
		buf.WriteString(Delimiter + "\n")
		for _, key := range r.Metadata.Keys() {
			buf.WriteString(key)
			buf.WriteString(": ")
			buf.WriteString(r.Metadata.Get(key))
			buf.WriteString("\n")
		}
		buf.WriteString(Delimiter + "\n")
	}
	buf.WriteString(r.Body)
	return buf.Bytes()
}

func opensWithFence(body string) bool {
	line, _, terminated := cutLine(body)
	return terminated && line == Delimiter
}
