package config

import (
	"net/http"
	"strings"
	"time"
)

const TableCookie = "table_token"

type Cookies struct {
	Domain   string `json:"domain"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"same_site"`
}

func (c Cookies) sameSite() http.SameSite {
	switch strings.ToUpper(c.SameSite) {
	case "DEFAULT":
		return http.SameSiteDefaultMode
	case "LAX":
		return http.SameSiteLaxMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// SetTableToken stores the access token of one table, scoped to the
// table's routes.
func (c Cookies) SetTableToken(w http.ResponseWriter, path, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     TableCookie,
		Path:     path,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	})
}

func (c Cookies) ClearTableToken(w http.ResponseWriter, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TableCookie,
		Path:     path,
		Value:    "delete",
		MaxAge:   -1,
		HttpOnly: true,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
	})
}

// TableToken reads the token from the Authorization bearer header, the
// token query parameter (for websocket clients) or the cookie, in that
// order.
func TableToken(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		token, ok := strings.CutPrefix(auth, "Bearer ")
		return token, ok && token != ""
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	cookie, err := r.Cookie(TableCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
