package auth

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTokenType is used when the server or the session omits token_type.
const DefaultTokenType = "Bearer"

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// NormalizeTokenType capitalizes the first letter and lower-cases the rest:
// "bearer" and "BEARER" both become "Bearer". Surrounding whitespace is
// dropped so it never lands inside the Authorization value. Empty input
// yields "Bearer".
func NormalizeTokenType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return DefaultTokenType
	}
	_, size := utf8.DecodeRuneInString(t)
	return upper.String(t[:size]) + lower.String(t[size:])
}

// BuildHeaders returns the headers for one request. Content-Type is always
// set; Authorization only when token is non-empty.
func BuildHeaders(token, tokenType string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if token != "" {
		h.Set("Authorization", NormalizeTokenType(tokenType)+" "+token)
	}
	return h
}
