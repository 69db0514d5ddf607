package service

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/store"
)

// pages are the HTML pages recipients see behind the canonical link.
var pages = template.Must(template.New("card.html").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Card.Name}}</title>
</head>
<body>
<main class="card">
{{if .Card.Photo}}<img class="photo" src="{{.Card.Photo}}" alt="{{.Card.Name}}">{{else}}<div class="initials">{{.Card.Initials}}</div>{{end}}
<h1>{{.Card.Name}}</h1>
{{if .Card.Title}}<p class="title">{{.Card.Title}}</p>{{end}}
{{if .Card.Company}}<p class="company">{{.Card.Company}}</p>{{end}}
<ul class="contact">
{{if .Card.Phone}}<li><a href="tel:{{.Card.Phone}}">{{.Card.Phone}}</a></li>{{end}}
{{if .Card.PhoneWork}}<li><a href="tel:{{.Card.PhoneWork}}">{{.Card.PhoneWork}}</a></li>{{end}}
{{if .Card.Email}}<li><a href="mailto:{{.Card.Email}}">{{.Card.Email}}</a></li>{{end}}
{{if .Card.Website}}<li><a href="{{.Card.Website}}">{{.Card.Website}}</a></li>{{end}}
{{if .Card.CompanyWebsite}}<li><a href="{{.Card.CompanyWebsite}}">{{.Card.CompanyWebsite}}</a></li>{{end}}
{{if .Card.Address}}<li>{{.Card.Address}}</li>{{end}}
</ul>
<ul class="social">
{{if .Card.LinkedIn}}<li><a href="{{.Card.LinkedIn}}">LinkedIn</a></li>{{end}}
{{if .Card.GitHub}}<li><a href="{{.Card.GitHub}}">GitHub</a></li>{{end}}
{{if .Card.Facebook}}<li><a href="{{.Card.Facebook}}">Facebook</a></li>{{end}}
{{if .Card.Instagram}}<li><a href="{{.Card.Instagram}}">Instagram</a></li>{{end}}
</ul>
<a class="download" href="/cards/{{.Card.ID}}/vcard">Add to contacts</a>
</main>
</body>
</html>
{{define "notfound.html"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Card not found</title></head>
<body><p>Card not found</p></body>
</html>
{{end}}
{{define "error.html"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Error</title></head>
<body><p>The card could not be loaded. Please try again later.</p></body>
</html>
{{end}}`))

// viewCard renders the page behind the canonical link of a card. Unknown ids get a dedicated
// not found page.
//
// Example call:
//
//	> curl http://localhost:8080/card/6f1c2a9e-8d2b-4f6e-9a51-3c7d0b1e2f44
func viewCard(c *gin.Context) {
	id := c.Param("id")
	ctx, cancel := storeContext(c)
	defer cancel()
	card, err := cards.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.HTML(http.StatusNotFound, "notfound.html", nil)
		return
	}
	if err != nil {
		log.Errorf("could not load card %s: %s", id, err)
		c.HTML(http.StatusInternalServerError, "error.html", nil)
		return
	}
	c.HTML(http.StatusOK, "card.html", gin.H{"Card": card})
}
