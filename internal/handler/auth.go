package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const adminRealm = `Basic realm="Admin", charset="UTF-8"`

// AdminCredentials holds the single admin account. The password is only
// kept as a bcrypt hash.
type AdminCredentials struct {
	username string
	hash     []byte
}

// NewAdminCredentials prefers passwordHash when set, otherwise hashes
// password. With neither, every login attempt is refused.
func NewAdminCredentials(username, password, passwordHash string) (*AdminCredentials, error) {
	creds := &AdminCredentials{username: strings.TrimSpace(username)}
	if creds.username == "" {
		creds.username = "admin"
	}

	if hash := strings.TrimSpace(passwordHash); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, errors.New("admin password hash is not a bcrypt hash")
		}
		creds.hash = []byte(hash)
		return creds, nil
	}

	if password == "" {
		return creds, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	creds.hash = hashed
	return creds, nil
}

// Enabled reports whether a secret is configured.
func (a *AdminCredentials) Enabled() bool {
	return a != nil && len(a.hash) > 0
}

// Verify checks a username/password pair.
func (a *AdminCredentials) Verify(username, password string) bool {
	if !a.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	return userOK && passOK
}

// AdminRequired challenges for HTTP Basic credentials before any admin
// handler runs.
func (a *API) AdminRequired(creds *AdminCredentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if ok && creds.Verify(username, password) {
			c.Next()
			return
		}

		c.Header("WWW-Authenticate", adminRealm)
		a.renderHTML(c, http.StatusUnauthorized, "message.html", gin.H{
			"title":   "Unauthorized",
			"message": "Admin credentials required",
			"error":   true,
		})
		c.Abort()
	}
}

// AdminPathGate applies AdminRequired to requests under /admin that did
// not match a route, so unknown admin paths are challenged too.
func (a *API) AdminPathGate(creds *AdminCredentials) gin.HandlerFunc {
	gate := a.AdminRequired(creds)
	return func(c *gin.Context) {
		if IsAdminPath(c.Request.URL.Path) {
			gate(c)
			return
		}
		c.Next()
	}
}

// IsAdminPath reports whether path is inside the /admin subtree.
func IsAdminPath(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/")
}
