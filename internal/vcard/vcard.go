// Package vcard encodes cards as vCard 3.0 documents.
package vcard

import (
	"strings"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/download"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/model"
)

const (
	// MimeType is the media type of an encoded document.
	MimeType = "text/vcard"
	// Extension is appended to the card name to form the file name.
	Extension = ".vcf"
)

// Encode returns the vCard document for the card. Every directive is written even when its
// value is empty, so the document always has the same lines in the same order.
func Encode(card model.Card) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + card.Name,
		"TITLE:" + card.Title,
		"ORG:" + card.Company,
		"EMAIL:" + card.Email,
		"TEL;TYPE=CELL:" + card.Phone,
		"TEL;TYPE=WORK:" + card.PhoneWork,
		"URL:" + card.Website,
		"URL;TYPE=WORK:" + card.CompanyWebsite,
		"ADR:;;" + card.Address,
		"END:VCARD",
	}
	return strings.Join(lines, "\n")
}

// FileName returns the download name for a card with the given name. No sanitization happens
// here; the saver takes care of names the platform cannot store.
func FileName(name string) string {
	return name + Extension
}

// TriggerDownload hands the document to the saver as "{name}.vcf".
func TriggerDownload(saver download.Saver, text string, name string) error {
	return saver.SaveFile([]byte(text), FileName(name), MimeType)
}
