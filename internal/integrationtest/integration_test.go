package integrationtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/service"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/store/mysql"
	wire "gitlab.com/dirk.krummacker/businesscard-service/pkg/model"
)

// setupRouter connects to the MySQL database named by the DB* environment variables. Tests are
// skipped when no database host is configured.
func setupRouter(t *testing.T) *gin.Engine {
	if os.Getenv("DBHOST") == "" {
		t.Skip("DBHOST not set, skipping integration test")
	}
	sqlDB, err := mysql.CreateDatabaseFromEnv()
	require.NoError(t, err)
	s, err := mysql.NewStore(sqlDB)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	service.SetupStore(s)
	service.SetupOrigin("https://cards.example.com")
	service.SetupPhotos(t.TempDir())
	gin.SetMode(gin.ReleaseMode)
	return service.SetupHttpRouter(false)
}

// request executes a request against the router as the given user.
func request(router *gin.Engine, method string, url string, body io.Reader, user string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(method, url, body)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

// newOwner returns a user id no other test run uses.
func newOwner() string {
	return "it-" + uuid.NewString()
}

// TestCardHappyPath tests a POST, GET, PUT, and DELETE with valid data.
func TestCardHappyPath(t *testing.T) {
	router := setupRouter(t)
	owner := newOwner()

	// test the endpoint for creating a card
	postRecorder := request(router, "POST", "/cards", strings.NewReader(`
		{
			"name": "Erika Mustermann",
			"title": "CEO",
			"company": "Musterfirma",
			"phone": "+49 0815 4711"
		}
	`), owner)
	require.Equal(t, http.StatusCreated, postRecorder.Code)
	var created wire.Card
	json.Unmarshal(postRecorder.Body.Bytes(), &created)
	assert.Equal(t, owner, created.UserID)
	assert.Equal(t, "Erika Mustermann", created.Name)
	assert.Equal(t, "Musterfirma", created.Company)
	assert.Equal(t, "", created.Email)
	defer deleteCard(t, router, created.ID, owner)

	// test the endpoint for finding a card
	getRecorder := request(router, "GET", "/cards/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, getRecorder.Code)
	var found wire.Card
	json.Unmarshal(getRecorder.Body.Bytes(), &found)
	assert.Equal(t, created, found)

	// test the endpoint for replacing a card
	putRecorder := request(router, "PUT", "/cards/"+created.ID, strings.NewReader(`
		{
			"name": "Rudi Völler",
			"title": "Sporting Director",
			"phone": "+49 1234567890"
		}
	`), owner)
	assert.Equal(t, http.StatusOK, putRecorder.Code)

	// test if a subsequent lookup of the card returns the replaced values
	getAgainRecorder := request(router, "GET", "/cards/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, getAgainRecorder.Code)
	var replaced wire.Card
	json.Unmarshal(getAgainRecorder.Body.Bytes(), &replaced)
	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, owner, replaced.UserID)
	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)
	assert.Equal(t, "Rudi Völler", replaced.Name)
	assert.Equal(t, "", replaced.Company)

	// test the endpoint for deleting a card
	deleteRecorder := request(router, "DELETE", "/cards/"+created.ID, nil, owner)
	assert.Equal(t, http.StatusOK, deleteRecorder.Code)

	// test if a final lookup of the card will correctly not find it
	getFinalRecorder := request(router, "GET", "/cards/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, getFinalRecorder.Code)
}

// TestCreateCardInvalidBody tests a POST with different forms of invalid request body data.
func TestCreateCardInvalidBody(t *testing.T) {
	invalidRequestBodies := []string{
		"",
		"{}",
		"not JSON",
		`{
			"name": "Erika Mustermann"
			"title": "CEO"
		}`, // commas missing
	}

	router := setupRouter(t)
	for _, body := range invalidRequestBodies {
		recorder := request(router, "POST", "/cards", strings.NewReader(body), newOwner())
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "request body: "+body)
	}
}

// TestUpdateCardInvalidId tests a PUT with an id that does not exist.
func TestUpdateCardInvalidId(t *testing.T) {
	router := setupRouter(t)
	recorder := request(router, "PUT", "/cards/"+uuid.NewString(), strings.NewReader(`{"name": "Rudi", "title": "Coach"}`), newOwner())
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestFindCardsOfOwner tests that the list of an owner holds exactly the owner's cards in
// creation order.
func TestFindCardsOfOwner(t *testing.T) {
	router := setupRouter(t)
	owner := newOwner()
	other := newOwner()

	var ids []string
	for _, name := range []string{"Aaron", "Berta", "Carla"} {
		recorder := request(router, "POST", "/cards", strings.NewReader(`{"name": "`+name+`", "title": "Tester"}`), owner)
		require.Equal(t, http.StatusCreated, recorder.Code)
		var created wire.Card
		json.Unmarshal(recorder.Body.Bytes(), &created)
		ids = append(ids, created.ID)
		defer deleteCard(t, router, created.ID, owner)
	}
	recorder := request(router, "POST", "/cards", strings.NewReader(`{"name": "Dora", "title": "Tester"}`), other)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var foreign wire.Card
	json.Unmarshal(recorder.Body.Bytes(), &foreign)
	defer deleteCard(t, router, foreign.ID, other)

	listRecorder := request(router, "GET", "/cards?owner="+owner, nil, "")
	assert.Equal(t, http.StatusOK, listRecorder.Code)
	var found []wire.Card
	json.Unmarshal(listRecorder.Body.Bytes(), &found)
	require.Len(t, found, 3)
	for _, card := range found {
		assert.Equal(t, owner, card.UserID)
		assert.Contains(t, ids, card.ID)
	}
}

// TestCardExports tests that the share, vCard and QR code endpoints work on a stored card.
func TestCardExports(t *testing.T) {
	router := setupRouter(t)
	owner := newOwner()

	recorder := request(router, "POST", "/cards", strings.NewReader(`{"name": "Jane Doe", "title": "Engineer"}`), owner)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created wire.Card
	json.Unmarshal(recorder.Body.Bytes(), &created)
	defer deleteCard(t, router, created.ID, owner)

	shareRecorder := request(router, "GET", "/cards/"+created.ID+"/share", nil, "")
	assert.Equal(t, http.StatusOK, shareRecorder.Code)
	var payload wire.SharePayload
	json.Unmarshal(shareRecorder.Body.Bytes(), &payload)
	assert.Equal(t, "https://cards.example.com/card/"+created.ID, payload.URL)
	assert.Equal(t, "Business card of Jane Doe", payload.Title)

	vcardRecorder := request(router, "GET", "/cards/"+created.ID+"/vcard", nil, "")
	assert.Equal(t, http.StatusOK, vcardRecorder.Code)
	assert.Contains(t, vcardRecorder.Body.String(), "FN:Jane Doe\n")

	qrRecorder := request(router, "GET", "/cards/"+created.ID+"/qrcode", nil, "")
	assert.Equal(t, http.StatusOK, qrRecorder.Code)
	assert.Equal(t, "image/png", qrRecorder.Header().Get("Content-Type"))

	viewRecorder := request(router, "GET", "/card/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, viewRecorder.Code)
	assert.Contains(t, viewRecorder.Body.String(), "Jane Doe")
}

// TestFindCardInvalidId tests a GET with an id that does not exist.
func TestFindCardInvalidId(t *testing.T) {
	router := setupRouter(t)
	recorder := request(router, "GET", "/cards/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestDeleteCardInvalidId tests a DELETE with an id that does not exist.
func TestDeleteCardInvalidId(t *testing.T) {
	router := setupRouter(t)
	recorder := request(router, "DELETE", "/cards/"+uuid.NewString(), nil, newOwner())
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// deleteCard removes a card created by a test. Cards already deleted are fine.
func deleteCard(t *testing.T, router *gin.Engine, id string, owner string) {
	recorder := request(router, "DELETE", "/cards/"+id, nil, owner)
	if recorder.Code != http.StatusOK && recorder.Code != http.StatusNotFound {
		t.Errorf("could not delete card %s: %d", id, recorder.Code)
	}
}
