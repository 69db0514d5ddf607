package nfc

import (
	"encoding/binary"
	"strings"
)

const (
	flagMB        = 0x80
	flagME        = 0x40
	flagSR        = 0x10
	tnfWellKnown  = 0x01
	uriRecordType = 'U'
)

// uriPrefixes are the URI identifier codes of the NFC Forum URI record type definition. The
// index is the code. Longer prefixes come first within a scheme so that the longest match
// wins.
var uriPrefixes = []string{
	"",
	"http://www.",
	"https://www.",
	"http://",
	"https://",
	"tel:",
	"mailto:",
	"ftp://anonymous:anonymous@",
	"ftp://ftp.",
	"ftps://",
	"sftp://",
	"smb://",
	"nfs://",
	"ftp://",
	"dav://",
	"news:",
	"telnet://",
	"imap:",
	"rtsp://",
	"urn:",
	"pop:",
	"sip:",
	"sips:",
	"tftp:",
	"btspp://",
	"btl2cap://",
	"btgoep://",
	"tcpobex://",
	"irdaobex://",
	"file://",
	"urn:epc:id:",
	"urn:epc:tag:",
	"urn:epc:pat:",
	"urn:epc:raw:",
	"urn:epc:",
	"urn:nfc:",
}

// uriPrefixCode returns the identifier code of the longest matching prefix.
func uriPrefixCode(uri string) (byte, string) {
	best := 0
	for code, prefix := range uriPrefixes {
		if prefix != "" && strings.HasPrefix(uri, prefix) && len(prefix) > len(uriPrefixes[best]) {
			best = code
		}
	}
	return byte(best), uri[len(uriPrefixes[best]):]
}

// URIRecord encodes uri as an NDEF message holding a single well-known URI record.
func URIRecord(uri string) []byte {
	code, rest := uriPrefixCode(uri)
	payload := append([]byte{code}, rest...)

	header := byte(flagMB | flagME | tnfWellKnown)
	msg := make([]byte, 0, len(payload)+7)
	if len(payload) <= 0xFF {
		msg = append(msg, header|flagSR, 1, byte(len(payload)))
	} else {
		msg = append(msg, header, 1)
		msg = binary.BigEndian.AppendUint32(msg, uint32(len(payload)))
	}
	msg = append(msg, uriRecordType)
	return append(msg, payload...)
}

// ParseURIRecord decodes a message produced by URIRecord. It reports false for anything other
// than a single well-known URI record.
func ParseURIRecord(msg []byte) (string, bool) {
	if len(msg) < 3 {
		return "", false
	}
	header := msg[0]
	if header&0x07 != tnfWellKnown || header&flagMB == 0 || header&flagME == 0 || msg[1] != 1 {
		return "", false
	}
	var length int
	rest := msg[2:]
	if header&flagSR != 0 {
		length, rest = int(rest[0]), rest[1:]
	} else {
		if len(rest) < 4 {
			return "", false
		}
		length, rest = int(binary.BigEndian.Uint32(rest)), rest[4:]
	}
	if len(rest) != length+1 || rest[0] != uriRecordType || length < 1 {
		return "", false
	}
	payload := rest[1:]
	code := int(payload[0])
	if code >= len(uriPrefixes) {
		return "", false
	}
	return uriPrefixes[code] + string(payload[1:]), true
}
