package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/smartcity/internal/encoding"
)

func decode(t *testing.T, in []byte) (string, string) {
	t.Helper()

	r, charset, err := encoding.ToUTF8(bytes.NewReader(in))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestToUTF8(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		want        string
		wantCharset string
	}{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Опис;Сума\nРемонт дороги;-500,00\n"),
			want:        "Опис;Сума\nРемонт дороги;-500,00\n",
			wantCharset: encoding.CharsetUTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, "Montante\n"...),
			want:        "Montante\n",
			wantCharset: encoding.CharsetUTF8,
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'i', 0, 'd', 0, '\n', 0},
			want:        "id\n",
			wantCharset: encoding.CharsetUTF16LE,
		},
		{
			name:  "Empty",
			input: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := decode(t, tt.input)

			assert.Equal(t, tt.want, got)

			if tt.wantCharset != "" {
				assert.Equal(t, tt.wantCharset, charset)
			}
		})
	}
}

func TestToUTF8_SingleByte(t *testing.T) {
	// "Descrição;Montante\n" in Windows-1252: ç = 0xE7, ã = 0xE3.
	input := []byte{
		'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
	}

	got, charset := decode(t, input)

	assert.NotEqual(t, encoding.CharsetUTF8, charset)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(got, "Descri"))
	assert.True(t, strings.HasSuffix(got, ";Montante\n"))
}

func TestToUTF8_LongInputSplitsRune(t *testing.T) {
	// 4095 ASCII bytes put the first byte of "ç" last in the sniff window.
	input := strings.Repeat("a", 4095) + "ç\n"

	got, charset := decode(t, []byte(input))

	assert.Equal(t, encoding.CharsetUTF8, charset)
	assert.Equal(t, input, got)
}
