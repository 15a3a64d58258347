package pe

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"
)

func utf16z(s string) []byte {
	units := append(utf16.Encode([]rune(s)), 0)
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// versionBlock encodes one VS_VERSIONINFO node.
func versionBlock(key string, typ uint16, value []byte, valueLen uint16, children ...[]byte) []byte {
	buf := make([]byte, 6)
	buf = append(buf, utf16z(key)...)
	buf = pad4(buf)
	buf = append(buf, value...)
	for _, c := range children {
		buf = pad4(buf)
		buf = append(buf, c...)
	}
	binary.LittleEndian.PutUint16(buf[0:], uint16(len(buf)))
	binary.LittleEndian.PutUint16(buf[2:], valueLen)
	binary.LittleEndian.PutUint16(buf[4:], typ)
	return buf
}

func stringValue(key, value string) []byte {
	v := utf16z(value)
	return versionBlock(key, 1, v, uint16(len(v)/2))
}

func versionBlob(strings map[string]string) []byte {
	fixed := make([]byte, 52)
	binary.LittleEndian.PutUint32(fixed, 0xFEEF04BD)

	var entries [][]byte
	for _, k := range []string{"CompanyName", "FileVersion", "ProductVersion"} {
		if v, ok := strings[k]; ok {
			entries = append(entries, stringValue(k, v))
		}
	}
	table := versionBlock("040904b0", 1, nil, 0, entries...)
	sfi := versionBlock("StringFileInfo", 1, nil, 0, table)
	translation := make([]byte, 4)
	binary.LittleEndian.PutUint16(translation, 0x0409)
	binary.LittleEndian.PutUint16(translation[2:], 0x04b0)
	vfi := versionBlock("VarFileInfo", 1, nil, 0, versionBlock("Translation", 0, translation, 4))
	return versionBlock("VS_VERSION_INFO", 0, fixed, 52, sfi, vfi)
}

// resourceDir builds a .rsrc section holding a single RT_VERSION resource.
func resourceDir(blob []byte, sectionVA uint32) []byte {
	buf := make([]byte, 0x58)
	dir := func(off int, id, target uint32) {
		binary.LittleEndian.PutUint16(buf[off+14:], 1)
		binary.LittleEndian.PutUint32(buf[off+16:], id)
		binary.LittleEndian.PutUint32(buf[off+20:], target)
	}
	dir(0x00, rtVersion, subdirectoryBit|0x18)
	dir(0x18, 1, subdirectoryBit|0x30)
	dir(0x30, 0x0409, 0x48)
	binary.LittleEndian.PutUint32(buf[0x48:], sectionVA+0x58)
	binary.LittleEndian.PutUint32(buf[0x4c:], uint32(len(blob)))
	return append(buf, blob...)
}

// writePE writes a minimal PE image whose only section is .rsrc.
func writePE(t *testing.T, rsrc []byte) string {
	t.Helper()
	const (
		peOffset   = 0x40
		rawOffset  = 0x200
		sectionVA  = 0x1000
		fileHdrLen = 20
	)
	img := make([]byte, rawOffset)
	copy(img, "MZ")
	binary.LittleEndian.PutUint32(img[0x3c:], peOffset)
	copy(img[peOffset:], "PE\x00\x00")

	fh := img[peOffset+4:]
	binary.LittleEndian.PutUint16(fh[0:], 0x14c) // i386
	binary.LittleEndian.PutUint16(fh[2:], 1)     // sections
	binary.LittleEndian.PutUint16(fh[18:], 0x0102)

	sh := img[peOffset+4+fileHdrLen:]
	copy(sh, ".rsrc")
	binary.LittleEndian.PutUint32(sh[8:], uint32(len(rsrc)))
	binary.LittleEndian.PutUint32(sh[12:], sectionVA)
	binary.LittleEndian.PutUint32(sh[16:], uint32(len(rsrc)))
	binary.LittleEndian.PutUint32(sh[20:], rawOffset)

	img = append(img, rsrc...)
	path := filepath.Join(t.TempDir(), "Unity.exe")
	if err := os.WriteFile(path, img, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseVersionInfo(t *testing.T) {
	blob := versionBlob(map[string]string{
		"CompanyName":    "Unity Technologies ApS",
		"ProductVersion": "2022.3.5f1_9674261d40ee",
	})

	info, err := ParseVersionInfo(blob)
	if err != nil {
		t.Fatalf("ParseVersionInfo() error = %v", err)
	}
	if got := info.Strings["CompanyName"]; got != "Unity Technologies ApS" {
		t.Errorf("CompanyName = %q", got)
	}
	v, ok := info.ProductVersion()
	if !ok || v != "2022.3.5f1_9674261d40ee" {
		t.Errorf("ProductVersion() = %q, %v", v, ok)
	}
}

func TestParseVersionInfo_NoProductVersion(t *testing.T) {
	info, err := ParseVersionInfo(versionBlob(map[string]string{"FileVersion": "1.0"}))
	if err != nil {
		t.Fatalf("ParseVersionInfo() error = %v", err)
	}
	if _, ok := info.ProductVersion(); ok {
		t.Error("expected ProductVersion to be absent")
	}
}

func TestParseVersionInfo_Malformed(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"short", []byte{1, 2, 3}},
		{"length past end", []byte{0xff, 0x00, 0, 0, 0, 0, 'V', 0}},
		{"wrong root key", versionBlock("NOT_VERSION", 0, nil, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseVersionInfo(tt.blob); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseVersionInfo_NoStringFileInfo(t *testing.T) {
	blob := versionBlock("VS_VERSION_INFO", 0, make([]byte, 52), 52)
	if _, err := ParseVersionInfo(blob); !errors.Is(err, ErrNoVersionInfo) {
		t.Errorf("error = %v, want ErrNoVersionInfo", err)
	}
}

func TestReadVersionInfo(t *testing.T) {
	blob := versionBlob(map[string]string{"ProductVersion": "2021.3.1f1_abc"})
	path := writePE(t, resourceDir(blob, 0x1000))

	info, err := ReadVersionInfo(path)
	if err != nil {
		t.Fatalf("ReadVersionInfo() error = %v", err)
	}
	if v, _ := info.ProductVersion(); v != "2021.3.1f1_abc" {
		t.Errorf("ProductVersion = %q, want %q", v, "2021.3.1f1_abc")
	}
}

func TestReadVersionInfo_NotPE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Unity")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadVersionInfo(path); err == nil {
		t.Error("expected an error for a non-PE file")
	}
}

func TestFindVersionResource_NoVersionType(t *testing.T) {
	rsrc := resourceDir(versionBlob(nil), 0x1000)
	binary.LittleEndian.PutUint32(rsrc[16:], 3) // RT_ICON
	if _, err := findVersionResource(rsrc, 0x1000, 0x1000); !errors.Is(err, ErrNoVersionInfo) {
		t.Errorf("error = %v, want ErrNoVersionInfo", err)
	}
}
