package domain

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidTag = errors.New("invalid player tag")

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeTag returns the canonical "#ABC123" form of a player tag.
func NormalizeTag(raw string) (string, error) {
	body := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "#", ""))
	if err := validate.Var(body, "required,alphanum"); err != nil {
		return "", ErrInvalidTag
	}
	return "#" + body, nil
}

// EscapeTag normalizes tag and percent-encodes it for a query string.
func EscapeTag(raw string) (string, error) {
	tag, err := NormalizeTag(raw)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(tag), nil
}

// Validate reports whether a decoded snapshot carries its identifying fields.
func (p *PlayerSnapshot) Validate() error {
	return validate.Struct(p)
}
