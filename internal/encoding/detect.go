// Package encoding normalizes uploaded ledger files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	CharsetUTF8    = "UTF-8"
	CharsetUTF16LE = "UTF-16LE"
	CharsetUTF16BE = "UTF-16BE"
)

// Fallback is used when neither a BOM, UTF-8 validation nor chardet can
// name the charset.
const Fallback = "windows-1252"

const sniffSize = 4096

type bom struct {
	prefix  []byte
	charset string
	decoder encoding.Encoding
}

var boms = []bom{
	{[]byte{0xEF, 0xBB, 0xBF}, CharsetUTF8, nil},
	{[]byte{0xFF, 0xFE}, CharsetUTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, CharsetUTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// legacy maps chardet names to single-byte decoders. Municipal exports are
// mostly Cyrillic or Western European spreadsheets.
var legacy = map[string]encoding.Encoding{
	"windows-1251": charmap.Windows1251,
	"KOI8-R":       charmap.KOI8R,
	"ISO-8859-5":   charmap.ISO8859_5,
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// ToUTF8 wraps r in a decoder for its detected charset and reports which
// charset was chosen. A UTF-8 BOM is stripped.
func ToUTF8(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.prefix) {
			continue
		}

		if b.decoder == nil {
			_, _ = br.Discard(len(b.prefix))
			return br, b.charset, nil
		}

		return transform.NewReader(br, b.decoder.NewDecoder()), b.charset, nil
	}

	if utf8.Valid(trimPartialRune(head)) {
		return br, CharsetUTF8, nil
	}

	charset := Detect(head)
	if charset == CharsetUTF8 {
		return br, charset, nil
	}

	return transform.NewReader(br, legacy[charset].NewDecoder()), charset, nil
}

// Detect names the single-byte charset of sample, or Fallback when chardet
// is unsure or proposes something there is no decoder for.
func Detect(sample []byte) string {
	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Fallback
	}

	if res.Charset == CharsetUTF8 {
		return CharsetUTF8
	}

	if _, ok := legacy[res.Charset]; ok {
		return res.Charset
	}

	return Fallback
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}
