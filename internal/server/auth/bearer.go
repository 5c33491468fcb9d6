package auth

import (
	"strings"

	"github.com/dmitrijs2005/gophboard/internal/common"
)

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>"
// value. Any other shape yields ok=false.
func ExtractBearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != common.BearerScheme {
		return "", false
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
