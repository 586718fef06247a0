package resolver

import (
	"errors"
	"net/http"
	"strings"

	"macrotrend-snapshot/internal/domain"

	"github.com/openai/openai-go"
)

var (
	quotaMarkers      = []string{"quota", "429", "rate limit", "insufficient_quota"}
	invalidKeyMarkers = []string{"invalid key", "invalid api key", "incorrect api key", "401", "unauthorized"}
)

// Classify maps a live-source failure to the error type shown to the user.
func Classify(err error) domain.ErrorType {
	if err == nil {
		return domain.ErrorNone
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return domain.ErrorQuotaExceeded
		case http.StatusUnauthorized:
			return domain.ErrorInvalidKey
		}
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, quotaMarkers) {
		return domain.ErrorQuotaExceeded
	}
	if containsAny(msg, invalidKeyMarkers) {
		return domain.ErrorInvalidKey
	}
	return domain.ErrorUnknown
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
