package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/api/response"
)

// timeTokenWindow is the lifetime of a time token. The previous window is
// also accepted so a token minted just before a boundary still works.
const timeTokenWindow = 5 * time.Minute

const (
	headerAPIKey    = "X-API-Key"
	headerTimeToken = "X-Time-Token"
)

// APIKey guards routes with a shared internal key. Callers send the key in
// X-API-Key and GenerateTimeToken(key) in X-Time-Token.
func APIKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				response.RespondError(w, http.StatusInternalServerError, "internal server error", "Authentication not loaded")
				return
			}

			key := r.Header.Get(headerAPIKey)
			if key == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			token := r.Header.Get(headerTimeToken)
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
				return
			}
			if !validTimeToken(apiKey, token, time.Now()) {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GenerateTimeToken returns the token for the current window.
func GenerateTimeToken(apiKey string) string {
	return timeToken(apiKey, time.Now())
}

func timeToken(apiKey string, at time.Time) string {
	window := at.Unix() / int64(timeTokenWindow/time.Second)
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(strconv.FormatInt(window, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func validTimeToken(apiKey, token string, now time.Time) bool {
	for _, at := range []time.Time{now, now.Add(-timeTokenWindow)} {
		if hmac.Equal([]byte(token), []byte(timeToken(apiKey, at))) {
			return true
		}
	}
	return false
}
