package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "flash"

// flash is a one-shot user notice surviving a single redirect.
type flash struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

func setFlash(c *gin.Context, f flash) {
	payload, err := json.Marshal([]flash{f})
	if err != nil {
		return
	}
	setCookie(c, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString(payload),
		MaxAge:   60,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes reads and clears pending notices set before a redirect.
func popFlashes(c *gin.Context) []flash {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	setCookie(c, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	payload, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}
