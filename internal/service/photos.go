package service

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/photo"
)

// uploadPhoto stores the image in the multipart field 'file' as profile photo of the
// requesting user and responds with its URL. The URL goes into the card's photo field. The
// declared content type is checked first; the stored type is the one sniffed from the bytes.
//
// Example REST API call:
//
//	> curl http://localhost:8080/photos --request "POST" --header "X-User-Id: u1" --form "file=@me.jpg;type=image/jpeg"
func uploadPhoto(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if photos == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "photo upload is not configured"})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing file"})
		return
	}
	switch err := photo.Check(header.Size, header.Header.Get("Content-Type")); {
	case errors.Is(err, photo.ErrTooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": err.Error()})
		return
	case errors.Is(err, photo.ErrNotImage):
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"message": err.Error()})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "could not read file"})
		return
	}
	defer file.Close()

	ctx, cancel := storeContext(c)
	defer cancel()
	url, err := photos.Upload(ctx, user, file)
	switch {
	case errors.Is(err, photo.ErrNotImage):
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"message": photo.ErrNotImage.Error()})
		return
	case errors.Is(err, photo.ErrTooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": photo.ErrTooLarge.Error()})
		return
	case err != nil:
		log.Errorf("photo upload of %s failed: %s", user, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "upload failed"})
		return
	}
	c.IndentedJSON(http.StatusCreated, gin.H{"url": url})
}
