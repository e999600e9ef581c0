package fatfs

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"

	"github.com/go-fatfs/fatfs/internal/utf16x"
)

// sfnFold lowercases 8.3 names.
var sfnFold = cases.Lower(language.Und)

// sfnDecoder maps the 8-bit short-name bytes through code page 437, the
// default OEM code page FAT short names are written in, instead of
// naively casting each byte to a rune.
var sfnDecoder = charmap.CodePage437.NewDecoder()

// shortNameToString normalizes an 11-byte 8.3 name into "base.ext",
// trimming trailing spaces and lowercasing, joining with '.' only when
// an extension is present.
func shortNameToString(raw []byte) string {
	base := bytes.TrimRight(raw[0:8], " ")
	ext := bytes.TrimRight(raw[8:11], " ")

	baseStr, _ := sfnDecoder.String(string(base))
	name := sfnFold.String(baseStr)
	if len(ext) > 0 {
		extStr, _ := sfnDecoder.String(string(ext))
		name += "." + sfnFold.String(extStr)
	}
	return name
}

// utf16ToUTF8 decodes a reassembled LFN code-unit buffer, stopping at
// the first NUL/0xFFFF padding code unit, into its UTF-8 rendering.
func utf16ToUTF8(units []uint16) string {
	n := 0
	for n < len(units) && units[n] != 0x0000 && units[n] != 0xFFFF {
		n++
	}
	raw := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(raw[i*2:], units[i])
	}
	dst := make([]byte, n*4+4) // generous upper bound on UTF-8 expansion
	sz, _ := utf16x.ToUTF8(dst, raw, binary.LittleEndian)
	return string(dst[:sz])
}
