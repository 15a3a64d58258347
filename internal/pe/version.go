// pattern: Functional Core

// Package pe extracts the string table of a VS_VERSIONINFO resource from a
// Portable Executable file.
package pe

import (
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var (
	ErrNoResources   = errors.New("pe: no resource section")
	ErrNoVersionInfo = errors.New("pe: no version resource")
	ErrMalformed     = errors.New("pe: malformed version resource")
)

const (
	rtVersion       = 16
	subdirectoryBit = 0x80000000
	versionInfoKey  = "VS_VERSION_INFO"
	stringFileInfo  = "StringFileInfo"
)

// VersionInfo is the first string table of a version resource.
type VersionInfo struct {
	Strings map[string]string
}

// ProductVersion returns the ProductVersion string, if present.
func (v VersionInfo) ProductVersion() (string, bool) {
	s, ok := v.Strings["ProductVersion"]
	return s, ok
}

// ReadVersionInfo opens the executable at path and parses its version resource.
func ReadVersionInfo(path string) (VersionInfo, error) {
	f, err := pe.Open(path)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sec, dirRVA := resourceSection(f)
	if sec == nil {
		return VersionInfo{}, ErrNoResources
	}
	data, err := sec.Data()
	if err != nil {
		return VersionInfo{}, fmt.Errorf("read resource section: %w", err)
	}

	blob, err := findVersionResource(data, sec.VirtualAddress, dirRVA)
	if err != nil {
		return VersionInfo{}, err
	}
	return ParseVersionInfo(blob)
}

// resourceSection locates the section holding the resource directory, using
// the optional header's data directory when there is one.
func resourceSection(f *pe.File) (*pe.Section, uint32) {
	var rva uint32
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if oh.NumberOfRvaAndSizes > pe.IMAGE_DIRECTORY_ENTRY_RESOURCE {
			rva = oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE].VirtualAddress
		}
	case *pe.OptionalHeader64:
		if oh.NumberOfRvaAndSizes > pe.IMAGE_DIRECTORY_ENTRY_RESOURCE {
			rva = oh.DataDirectory[pe.IMAGE_DIRECTORY_ENTRY_RESOURCE].VirtualAddress
		}
	}

	if rva != 0 {
		for _, s := range f.Sections {
			end := s.VirtualAddress + max(s.VirtualSize, s.Size)
			if rva >= s.VirtualAddress && rva < end {
				return s, rva
			}
		}
	}
	for _, s := range f.Sections {
		if s.Name == ".rsrc" {
			return s, s.VirtualAddress
		}
	}
	return nil, 0
}

type dirEntry struct {
	id     uint32
	target uint32
	subdir bool
}

// readDir returns the entries of the resource directory at off.
func readDir(rsrc []byte, off uint32) ([]dirEntry, error) {
	if uint64(off)+16 > uint64(len(rsrc)) {
		return nil, ErrMalformed
	}
	named := binary.LittleEndian.Uint16(rsrc[off+12:])
	ids := binary.LittleEndian.Uint16(rsrc[off+14:])
	n := uint32(named) + uint32(ids)

	start := off + 16
	if uint64(start)+uint64(n)*8 > uint64(len(rsrc)) {
		return nil, ErrMalformed
	}
	entries := make([]dirEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		e := rsrc[start+i*8:]
		name := binary.LittleEndian.Uint32(e)
		target := binary.LittleEndian.Uint32(e[4:])
		entries = append(entries, dirEntry{
			id:     name,
			target: target &^ subdirectoryBit,
			subdir: target&subdirectoryBit != 0,
		})
	}
	return entries, nil
}

// findVersionResource walks type -> name -> language and returns the raw
// bytes of the first RT_VERSION resource.
func findVersionResource(section []byte, sectionVA, dirRVA uint32) ([]byte, error) {
	if dirRVA < sectionVA || dirRVA-sectionVA >= uint32(len(section)) {
		return nil, ErrNoResources
	}
	rsrc := section[dirRVA-sectionVA:]

	types, err := readDir(rsrc, 0)
	if err != nil {
		return nil, err
	}
	var off uint32
	found := false
	for _, e := range types {
		if e.id == rtVersion && e.subdir {
			off, found = e.target, true
			break
		}
	}
	if !found {
		return nil, ErrNoVersionInfo
	}

	// Name and language levels: take the first entry of each.
	for range 2 {
		entries, err := readDir(rsrc, off)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, ErrNoVersionInfo
		}
		off = entries[0].target
		if !entries[0].subdir {
			break
		}
	}

	if uint64(off)+16 > uint64(len(rsrc)) {
		return nil, ErrMalformed
	}
	dataRVA := binary.LittleEndian.Uint32(rsrc[off:])
	size := binary.LittleEndian.Uint32(rsrc[off+4:])
	if dataRVA < sectionVA {
		return nil, ErrMalformed
	}
	start := uint64(dataRVA - sectionVA)
	if start+uint64(size) > uint64(len(section)) {
		return nil, ErrMalformed
	}
	return section[start : start+uint64(size)], nil
}

// ParseVersionInfo parses a raw VS_VERSIONINFO blob and returns its first
// string table.
func ParseVersionInfo(blob []byte) (VersionInfo, error) {
	root, err := parseBlock(blob)
	if err != nil {
		return VersionInfo{}, err
	}
	if root.key != versionInfoKey {
		return VersionInfo{}, fmt.Errorf("%w: root key %q", ErrMalformed, root.key)
	}

	for _, child := range root.children {
		if child.key != stringFileInfo || len(child.children) == 0 {
			continue
		}
		table := child.children[0]
		info := VersionInfo{Strings: make(map[string]string, len(table.children))}
		for _, s := range table.children {
			info.Strings[s.key] = decodeText(s.value)
		}
		return info, nil
	}
	return VersionInfo{}, ErrNoVersionInfo
}

// block is one node of the version resource tree:
// wLength, wValueLength, wType, szKey, padding, value, padding, children.
type block struct {
	key      string
	text     bool
	value    []byte
	children []block
}

func parseBlock(data []byte) (block, error) {
	if len(data) < 6 {
		return block{}, ErrMalformed
	}
	length := int(binary.LittleEndian.Uint16(data))
	valueLen := int(binary.LittleEndian.Uint16(data[2:]))
	typ := binary.LittleEndian.Uint16(data[4:])
	if length < 6 || length > len(data) {
		return block{}, ErrMalformed
	}
	data = data[:length]

	key, pos, err := readUTF16Z(data, 6)
	if err != nil {
		return block{}, err
	}
	b := block{key: key, text: typ == 1}

	pos = align4(pos)
	valueBytes := valueLen
	if b.text {
		valueBytes *= 2
	}
	end := min(pos+valueBytes, length)
	if pos < end {
		b.value = data[pos:end]
	}

	pos = end
	for {
		pos = align4(pos)
		if pos+6 > length {
			break
		}
		childLen := int(binary.LittleEndian.Uint16(data[pos:]))
		if childLen == 0 {
			break
		}
		child, err := parseBlock(data[pos:min(pos+childLen, length)])
		if err != nil {
			return block{}, err
		}
		b.children = append(b.children, child)
		pos += childLen
	}
	return b, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// readUTF16Z reads a NUL-terminated UTF-16LE string starting at pos and
// returns it with the offset just past the terminator.
func readUTF16Z(data []byte, pos int) (string, int, error) {
	for i := pos; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return decodeUTF16(data[pos:i]), i + 2, nil
		}
	}
	return "", 0, ErrMalformed
}

// decodeText decodes a string value, stopping at the first NUL.
func decodeText(raw []byte) string {
	s := decodeUTF16(raw[:len(raw)&^1])
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

func decodeUTF16(raw []byte) string {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return ""
	}
	return string(out)
}
