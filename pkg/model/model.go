package model

// Card is the JSON form of a business card as the service sends and receives it.
// All fields are strings; absent values are empty strings, never null.
type Card struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PhoneWork      string `json:"phoneWork"`
	Website        string `json:"website"`
	CompanyWebsite string `json:"companyWebsite"`
	Address        string `json:"address"`
	Photo          string `json:"photo"`
	LinkedIn       string `json:"linkedin"`
	GitHub         string `json:"github"`
	Facebook       string `json:"facebook"`
	Instagram      string `json:"instagram"`
	CreatedAt      string `json:"createdAt"`
}

// SharePayload is the response of GET /cards/{id}/share.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Message is the body of error responses and of DELETE.
type Message struct {
	Message string `json:"message"`
}
