package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrMissingField is returned by Validate when a required field is empty.
var ErrMissingField = errors.New("required field missing")

// Field keys as they are stored in the document store.
const (
	KeyName           = "name"
	KeyTitle          = "title"
	KeyCompany        = "company"
	KeyEmail          = "email"
	KeyPhone          = "phone"
	KeyPhoneWork      = "phoneWork"
	KeyWebsite        = "website"
	KeyCompanyWebsite = "companyWebsite"
	KeyAddress        = "address"
	KeyPhoto          = "photo"
	KeyLinkedIn       = "linkedin"
	KeyGitHub         = "github"
	KeyFacebook       = "facebook"
	KeyInstagram      = "instagram"
	KeyUserID         = "userId"
	KeyCreatedAt      = "createdAt"
)

// Card is the data structure for a digital business card. Every field other than ID is a
// plain string, and an absent value is always the empty string. Consumers treat a Card as a
// read-only snapshot.
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

// FromFields builds a card from the raw field mapping delivered by a store. Missing and nil
// values become empty strings. Values are passed through without validation.
func FromFields(id string, fields map[string]any) Card {
	get := func(key string) string {
		return stringOf(fields[key])
	}
	return Card{
		ID:             id,
		UserID:         get(KeyUserID),
		Name:           get(KeyName),
		Title:          get(KeyTitle),
		Company:        get(KeyCompany),
		Email:          get(KeyEmail),
		Phone:          get(KeyPhone),
		PhoneWork:      get(KeyPhoneWork),
		Website:        get(KeyWebsite),
		CompanyWebsite: get(KeyCompanyWebsite),
		Address:        get(KeyAddress),
		Photo:          get(KeyPhoto),
		LinkedIn:       get(KeyLinkedIn),
		GitHub:         get(KeyGitHub),
		Facebook:       get(KeyFacebook),
		Instagram:      get(KeyInstagram),
		CreatedAt:      get(KeyCreatedAt),
	}
}

// Normalized returns a copy of the card passed through FromFields, so a card decoded from
// JSON follows the same rules as one read from a store.
func (c Card) Normalized() Card {
	return FromFields(c.ID, c.Fields())
}

// Fields returns the raw field mapping of the card, without the id.
func (c Card) Fields() map[string]any {
	return map[string]any{
		KeyUserID:         c.UserID,
		KeyName:           c.Name,
		KeyTitle:          c.Title,
		KeyCompany:        c.Company,
		KeyEmail:          c.Email,
		KeyPhone:          c.Phone,
		KeyPhoneWork:      c.PhoneWork,
		KeyWebsite:        c.Website,
		KeyCompanyWebsite: c.CompanyWebsite,
		KeyAddress:        c.Address,
		KeyPhoto:          c.Photo,
		KeyLinkedIn:       c.LinkedIn,
		KeyGitHub:         c.GitHub,
		KeyFacebook:       c.Facebook,
		KeyInstagram:      c.Instagram,
		KeyCreatedAt:      c.CreatedAt,
	}
}

// Validate checks the fields the create and edit forms require.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, KeyName)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, KeyTitle)
	}
	return nil
}

// PlaceholderGlyph is shown instead of initials when a card has no name.
const PlaceholderGlyph = "?"

// Initials returns the upper-cased first character of the name for the avatar placeholder.
func (c Card) Initials() string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return PlaceholderGlyph
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// ShareTitle is the title handed to the platform share sheet.
func (c Card) ShareTitle() string {
	return "Business card of " + c.Name
}

// stringOf converts a raw store value into a string.
func stringOf(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
