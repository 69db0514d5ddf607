package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/download"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/qrcode"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/share"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/vcard"
)

// shareCard responds with what a client hands to its share sheet, copies to the clipboard or
// writes to an NFC tag for the card.
//
// Example REST API call:
//
//	> curl http://localhost:8080/cards/6f1c2a9e-8d2b-4f6e-9a51-3c7d0b1e2f44/share
func shareCard(c *gin.Context) {
	card, ok := loadCard(c)
	if !ok {
		return
	}
	url, err := resolver(c).Resolve(card.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "card not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, share.NewPayload(card, url))
}

// downloadVCard responds with the card as a vCard file named after the card.
//
// Example REST API call:
//
//	> curl --remote-name --remote-header-name http://localhost:8080/cards/6f1c2a9e-8d2b-4f6e-9a51-3c7d0b1e2f44/vcard
func downloadVCard(c *gin.Context) {
	card, ok := loadCard(c)
	if !ok {
		return
	}
	text := vcard.Encode(card)
	if err := vcard.TriggerDownload(download.HTTPSaver{Context: c}, text, card.Name); err != nil {
		log.Errorf("could not send vCard of %s: %s", card.ID, err)
	}
}

// downloadQRCode responds with the QR code of the card's canonical link as a PNG file.
//
// Example REST API call:
//
//	> curl --remote-name --remote-header-name http://localhost:8080/cards/6f1c2a9e-8d2b-4f6e-9a51-3c7d0b1e2f44/qrcode
func downloadQRCode(c *gin.Context) {
	card, ok := loadCard(c)
	if !ok {
		return
	}
	url, err := resolver(c).Resolve(card.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "card not found"})
		return
	}
	canvas := qrcode.NewCanvas()
	if _, err := qrcode.Render(canvas, url); err != nil {
		log.Errorf("could not render QR code of %s: %s", card.ID, err)
	}
	if !qrcode.ExportAsImage(canvas, card.Name, download.HTTPSaver{Context: c}) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "could not create QR code"})
	}
}
