// Package codec implements the on-disk binary formats of the dataset: the
// per-category ".category" record and the flat ".index" listing. Both are
// consumed by a static site with no backend, so the layouts are fixed and
// must stay bit-exact across releases.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// CategoryRecord is the decoded form of one ".category" file.
type CategoryRecord struct {
	Name         string
	Predecessors []uint32
	Successors   []uint32
	Articles     []uint32
	ArticleNames []string
}

// EncodeCategory serializes a record. Layout: five fields in order, each
// preceded by a 4-byte big-endian byte length —
//
//	name            UTF-8 bytes
//	predecessors    one uint32 BE per direct parent
//	successors      one uint32 BE per direct child
//	articles        one uint32 BE per member article
//	article names   UTF-8 strings joined by a single 0x00, no trailing byte
//
// Field order within the id lists is whatever the caller supplies; the format
// does not require a sort.
func EncodeCategory(record *CategoryRecord) []byte {
	var buf bytes.Buffer
	writeField(&buf, []byte(record.Name))
	writeField(&buf, uint32Bytes(record.Predecessors))
	writeField(&buf, uint32Bytes(record.Successors))
	writeField(&buf, uint32Bytes(record.Articles))
	writeField(&buf, []byte(strings.Join(record.ArticleNames, "\x00")))
	return buf.Bytes()
}

func writeField(buf *bytes.Buffer, field []byte) {
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(field)))
	buf.Write(prefix[:])
	buf.Write(field)
}

func uint32Bytes(ids []uint32) []byte {
	out := make([]byte, 4*len(ids))
	for i, id := range ids {
		binary.BigEndian.PutUint32(out[4*i:], id)
	}
	return out
}

// DecodeCategory parses a ".category" file back into a record. Encoding a
// decoded record reproduces the input byte for byte.
func DecodeCategory(data []byte) (*CategoryRecord, error) {
	name, rest, err := readField(data)
	if err != nil {
		return nil, fmt.Errorf("name field: %w", err)
	}
	predecessors, rest, err := readIDField(rest, "predecessors")
	if err != nil {
		return nil, err
	}
	successors, rest, err := readIDField(rest, "successors")
	if err != nil {
		return nil, err
	}
	articles, rest, err := readIDField(rest, "articles")
	if err != nil {
		return nil, err
	}
	names, rest, err := readField(rest)
	if err != nil {
		return nil, fmt.Errorf("article names field: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after article names", len(rest))
	}

	record := &CategoryRecord{
		Name:         string(name),
		Predecessors: predecessors,
		Successors:   successors,
		Articles:     articles,
	}
	if len(names) > 0 {
		record.ArticleNames = strings.Split(string(names), "\x00")
	}
	if len(record.ArticleNames) != len(record.Articles) {
		return nil, fmt.Errorf("article name count %d does not match article id count %d",
			len(record.ArticleNames), len(record.Articles))
	}
	return record, nil
}

func readField(data []byte) (field, rest []byte, err error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("truncated length prefix: %d bytes left", len(data))
	}
	n := binary.BigEndian.Uint32(data)
	data = data[4:]
	if uint32(len(data)) < n {
		return nil, nil, fmt.Errorf("field length %d exceeds remaining %d bytes", n, len(data))
	}
	return data[:n], data[n:], nil
}

func readIDField(data []byte, fieldName string) (ids []uint32, rest []byte, err error) {
	field, rest, err := readField(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s field: %w", fieldName, err)
	}
	ids, err = DecodeIndex(field)
	if err != nil {
		return nil, nil, fmt.Errorf("%s field: %w", fieldName, err)
	}
	return ids, rest, nil
}

// EncodeIndex serializes a directory listing: a flat sequence of uint32 BE
// values with no count field. File length alone determines the entry count.
func EncodeIndex(entries []uint32) []byte {
	return uint32Bytes(entries)
}

// DecodeIndex parses a ".index" file.
func DecodeIndex(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("index length %d is not a multiple of 4", len(data))
	}
	if len(data) == 0 {
		return nil, nil
	}
	ids := make([]uint32, len(data)/4)
	for i := range ids {
		ids[i] = binary.BigEndian.Uint32(data[4*i:])
	}
	return ids, nil
}
