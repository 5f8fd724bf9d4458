package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const (
	AdminContextKey      = "admin"
	MasterPasswordHeader = "X-Master-Password"
	masterPasswordField  = "master_password"
)

// IsAdmin reports whether the admin middleware let this request through the
// gate. Routes outside the middleware are never admin.
func IsAdmin(c echo.Context) bool {
	val := c.Get(AdminContextKey)
	if val == nil {
		return false
	}

	admin, ok := val.(bool)
	if !ok {
		log.Warnf("expected bool at 'admin' context key, got %T", val)
		return false
	}
	return admin
}

// MasterCredential looks for the master password in the header, then in a
// JSON body, then in the query string. The body is left readable for the
// handler.
func MasterCredential(c echo.Context) string {
	if v := strings.TrimSpace(c.Request().Header.Get(MasterPasswordHeader)); v != "" {
		return v
	}
	if v := credentialFromBody(c); v != "" {
		return v
	}
	return strings.TrimSpace(c.QueryParam(masterPasswordField))
}

func credentialFromBody(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return ""
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil || len(data) == 0 {
		return ""
	}

	var body struct {
		MasterPassword json.RawMessage `json:"master_password"`
	}
	// arrays and other shapes simply carry no credential
	if json.Unmarshal(data, &body) != nil || len(body.MasterPassword) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(body.MasterPassword, &s) == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(body.MasterPassword))
}
