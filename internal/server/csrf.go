package server

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// csrfToken binds a token to the session ID so a form posted for another
// session is rejected.
func csrfToken(secret []byte, sessionID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validCSRF(secret []byte, sessionID, token string) bool {
	expected := csrfToken(secret, sessionID)
	return hmac.Equal([]byte(expected), []byte(token))
}

func randomSecret() []byte {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("server: read random secret: " + err.Error())
	}
	return secret
}
