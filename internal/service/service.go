package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/link"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/model"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/photo"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/store"
)

// userHeader carries the id of the authenticated user. Authentication happens in front of the
// service.
const userHeader = "X-User-Id"

// storeTimeout bounds every call to the card store.
const storeTimeout = 10 * time.Second

// cards is the store holding all business cards.
var cards store.Store

// photos stores uploaded profile photos.
var photos photo.Uploader

// photoDir is the directory uploaded photos are served from.
var photoDir string

// origin is the configured deployment origin. When it is empty the origin is taken from each
// request.
var origin string

// trustProxy makes request-derived origins honour X-Forwarded-Proto and X-Forwarded-Host.
var trustProxy bool

// SetupStore sets the card store. It can be a real database for production use or a store on a
// mock database within unit tests.
func SetupStore(s store.Store) {
	cards = s
}

// SetupOrigin sets the deployment origin used in canonical links. An empty origin means the
// origin of each request.
func SetupOrigin(o string) {
	origin = o
}

// SetupTrustProxy sets whether the service runs behind a reverse proxy whose forwarded headers
// can be trusted. It only matters without a configured origin.
func SetupTrustProxy(trusted bool) {
	trustProxy = trusted
}

// SetupPhotos stores uploaded photos in dir and serves them from there.
func SetupPhotos(dir string) {
	photoDir = dir
	photos = photo.NewDiskUploader(dir, origin)
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(logging bool) *gin.Engine {
	var router *gin.Engine
	if logging {
		router = gin.Default()
	} else {
		log.Info("Turning off HTTP request logging.")
		router = gin.New()
		router.Use(gin.Recovery())
	}
	router.MaxMultipartMemory = photo.MaxSize + 1<<20
	router.SetHTMLTemplate(pages)

	router.GET("/health", health)
	router.GET("/cards", findCards)
	router.POST("/cards", createCard)
	router.GET("/cards/:id", findCardByID)
	router.PUT("/cards/:id", updateCardByID)
	router.DELETE("/cards/:id", deleteCardByID)
	router.GET("/cards/:id/share", shareCard)
	router.GET("/cards/:id/vcard", downloadVCard)
	router.GET("/cards/:id/qrcode", downloadQRCode)
	router.GET(link.PathPrefix+":id", viewCard)
	router.POST("/photos", uploadPhoto)
	if photoDir != "" {
		router.Group(photo.URLPrefix, noSniff).Static("/", photoDir)
	}
	return router
}

// noSniff keeps browsers from reinterpreting served photos as another content type.
func noSniff(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Next()
}

// health answers OK while the service is running.
//
// Example REST API call:
//
//	> curl http://localhost:8080/health
func health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// resolver returns the canonical link resolver for the request.
func resolver(c *gin.Context) *link.Resolver {
	if origin != "" {
		return link.NewResolver(link.Static(origin))
	}
	return link.NewResolver(link.RequestOrigin{Request: c.Request, TrustProxy: trustProxy})
}

// storeContext derives the context for a store call from the request.
func storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), storeTimeout)
}

// loadCard reads the card named by the id parameter of the request URL. When it answers false
// the response has already been written.
func loadCard(c *gin.Context) (model.Card, bool) {
	id := c.Param("id")
	ctx, cancel := storeContext(c)
	defer cancel()
	card, err := cards.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "card not found"})
		return card, false
	}
	if err != nil {
		log.Errorf("could not load card %s: %s", id, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "could not load card"})
		return card, false
	}
	return card, true
}

// loadOwnCard reads the card named by the id parameter and checks that it belongs to the
// requesting user.
func loadOwnCard(c *gin.Context) (model.Card, bool) {
	user, ok := requireUser(c)
	if !ok {
		return model.Card{}, false
	}
	card, ok := loadCard(c)
	if !ok {
		return card, false
	}
	if card.UserID != user {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "card belongs to another user"})
		return card, false
	}
	return card, true
}

// requireUser returns the id of the requesting user.
func requireUser(c *gin.Context) (string, bool) {
	user := c.GetHeader(userHeader)
	if user == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing " + userHeader + " header"})
		return "", false
	}
	return user, true
}

// bindCard reads and validates the card in the request's JSON.
func bindCard(c *gin.Context) (model.Card, bool) {
	var submitted model.Card
	if err := c.BindJSON(&submitted); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return submitted, false
	}
	submitted = submitted.Normalized()
	if err := submitted.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return submitted, false
	}
	return submitted, true
}

// putCard writes the card to the store. When it answers false the response has already been
// written.
func putCard(c *gin.Context, card model.Card) bool {
	ctx, cancel := storeContext(c)
	defer cancel()
	if err := cards.Put(ctx, card); err != nil {
		log.Errorf("could not store card %s: %s", card.ID, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "could not save card"})
		return false
	}
	return true
}

// findCards responds with the list of cards of the owner given in the URL parameter 'owner'.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/cards?owner=u1"
func findCards(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing owner parameter"})
		return
	}
	ctx, cancel := storeContext(c)
	defer cancel()
	found, err := cards.QueryByOwner(ctx, owner)
	if err != nil {
		log.Errorf("could not query cards of %s: %s", owner, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "could not load cards"})
		return
	}
	if len(found) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "card not found"})
	} else {
		c.IndentedJSON(http.StatusOK, found)
	}
}

// createCard stores the card specified in the request's JSON for the requesting user. It
// responds with the full card including the newly assigned id.
//
// Example REST API call:
//
//	> curl http://localhost:8080/cards --request "POST" --include --header "X-User-Id: u1" --header "Content-Type: application/json" --data '{"name": "Erika Mustermann", "title": "CEO"}'
func createCard(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	newCard, ok := bindCard(c)
	if !ok {
		return
	}
	newCard.ID = cards.NewID()
	newCard.UserID = user
	newCard.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if !putCard(c, newCard) {
		return
	}
	c.IndentedJSON(http.StatusCreated, newCard)
}

// findCardByID locates the card whose id matches the id parameter of the request URL, then
// returns that card as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/cards/6f1c2a9e-8d2b-4f6e-9a51-3c7d0b1e2f44
func findCardByID(c *gin.Context) {
	card, ok := loadCard(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, card)
}

// updateCardByID replaces the card whose id matches the id parameter of the request URL with
// the card in the JSON. Fields missing from the JSON become empty. Owner and creation time are
// kept.
//
// Example REST API call:
//
//	> curl http://localhost:8080/cards/6f1c2a9e-8d2b-4f6e-9a51-3c7d0b1e2f44 --request "PUT" --include --header "X-User-Id: u1" --header "Content-Type: application/json" --data '{"name": "Erika Mustermann", "title": "CTO"}'
func updateCardByID(c *gin.Context) {
	existing, ok := loadOwnCard(c)
	if !ok {
		return
	}
	submitted, ok := bindCard(c)
	if !ok {
		return
	}
	submitted.ID = existing.ID
	submitted.UserID = existing.UserID
	submitted.CreatedAt = existing.CreatedAt
	if !putCard(c, submitted) {
		return
	}
	c.IndentedJSON(http.StatusOK, submitted)
}

// deleteCardByID deletes the card whose id matches the id parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/cards/6f1c2a9e-8d2b-4f6e-9a51-3c7d0b1e2f44 --request "DELETE" --header "X-User-Id: u1"
func deleteCardByID(c *gin.Context) {
	card, ok := loadOwnCard(c)
	if !ok {
		return
	}
	ctx, cancel := storeContext(c)
	defer cancel()
	err := cards.Delete(ctx, card.ID)
	if errors.Is(err, store.ErrNotFound) {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "card not found"})
		return
	}
	if err != nil {
		log.Errorf("could not delete card %s: %s", card.ID, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "could not delete card"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": fmt.Sprintf("card %s deleted", card.ID)})
}
