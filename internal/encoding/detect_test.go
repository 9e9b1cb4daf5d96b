package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/wastewise/wastewise/internal/encoding"
)

const header = "Title,Material,Location\nMabati offcuts,Scrap Metal,Thika Road\n"

func readAll(t *testing.T, input []byte) (string, string) {
	t.Helper()

	r, charset, err := encoding.Decode(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestDecode_UTF8Passthrough(t *testing.T) {
	input := "Title,Location\nCarton bales,Mombasa – Changamwe\n"

	got, charset := readAll(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, encoding.CharsetUTF8, charset)
}

func TestDecode_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, header...)

	got, charset := readAll(t, input)
	assert.Equal(t, header, got)
	assert.Equal(t, encoding.CharsetUTF8, charset)
}

func TestDecode_UTF16LE(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	input, err := enc.Bytes([]byte(header))
	require.NoError(t, err)

	got, charset := readAll(t, input)
	assert.Equal(t, header, got)
	assert.Equal(t, encoding.CharsetUTF16LE, charset)
}

func TestDecode_Windows1252(t *testing.T) {
	// "Caf\xe9 grounds" is "Café grounds" in Windows-1252.
	input := []byte("Title\nCaf\xe9 grounds\n")

	got, _ := readAll(t, input)
	assert.Equal(t, "Title\nCafé grounds\n", got)
}

func TestDecode_TruncatedRuneAtWindowEdge(t *testing.T) {
	// Pad so that a two-byte rune straddles the sniff window.
	utf8Input := strings.Repeat("a", 4095) + "é tail\n"

	got, charset := readAll(t, []byte(utf8Input))
	assert.Equal(t, utf8Input, got)
	assert.Equal(t, encoding.CharsetUTF8, charset)
}
