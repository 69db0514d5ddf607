package nfc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURIRecordShort(t *testing.T) {
	msg := URIRecord("https://example.com/card/abc123")
	expected := append([]byte{0xD1, 0x01, byte(1 + len("example.com/card/abc123")), 'U', 0x04},
		"example.com/card/abc123"...)
	assert.Equal(t, expected, msg)
}

func TestURIRecordPrefixes(t *testing.T) {
	cases := map[string]byte{
		"https://www.example.com/card/1": 0x02,
		"http://www.example.com/card/1":  0x01,
		"http://localhost:8080/card/1":   0x03,
		"https://example.com/card/1":     0x04,
		"custom://x/card/1":              0x00,
	}
	for uri, code := range cases {
		msg := URIRecord(uri)
		assert.Equal(t, code, msg[4], uri)
		decoded, ok := ParseURIRecord(msg)
		assert.True(t, ok, uri)
		assert.Equal(t, uri, decoded)
	}
}

func TestURIRecordLong(t *testing.T) {
	uri := "https://example.com/card/" + strings.Repeat("a", 300)
	msg := URIRecord(uri)
	assert.Equal(t, byte(0xC1), msg[0])
	decoded, ok := ParseURIRecord(msg)
	assert.True(t, ok)
	assert.Equal(t, uri, decoded)
}

func TestParseURIRecordRejectsGarbage(t *testing.T) {
	for _, msg := range [][]byte{nil, {0xD1}, {0xD2, 0x01, 0x01, 'U', 0x00}, {0xD1, 0x01, 0x05, 'T', 0x00}} {
		_, ok := ParseURIRecord(msg)
		assert.False(t, ok)
	}
}
