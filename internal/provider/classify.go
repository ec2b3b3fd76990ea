package provider

import (
	"net/http"
	"regexp"

	"codeleague/internal/domain"
)

var privateNotFound = regexp.MustCompile(`(?i)private|unauthorized|forbidden`)

// classify maps a provider HTTP response onto a stat status plus error message.
func classify(code int, body []byte) (domain.StatStatus, string) {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return domain.StatusPrivate, errorMessage(body)
	case code == http.StatusNotFound:
		if privateNotFound.Match(body) {
			return domain.StatusPrivate, errorMessage(body)
		}
		return domain.StatusNotFound, errorMessage(body)
	case code < 200 || code > 299:
		msg := errorMessage(body)
		if msg == "" {
			msg = http.StatusText(code)
		}
		return domain.StatusError, msg
	}
	return domain.StatusOK, ""
}
