package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var b64 = base64.RawURLEncoding

var errInvalidToken = errors.New("invalid token")

func hs256(secret []byte, unsigned string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(unsigned))
	return mac.Sum(nil)
}

// SignHS256 encodes claims into a compact HS256 JWT.
func SignHS256(claims map[string]any, secret []byte) (string, error) {
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	unsigned := b64.EncodeToString(header) + "." + b64.EncodeToString(payload)
	return unsigned + "." + b64.EncodeToString(hs256(secret, unsigned)), nil
}

// ParseAndVerifyHS256 checks the token signature and returns its claims.
// Callers still check exp themselves via Expired.
func ParseAndVerifyHS256(token string, secret []byte) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errInvalidToken
	}
	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, errInvalidToken
	}
	if !hmac.Equal(sig, hs256(secret, parts[0]+"."+parts[1])) {
		return nil, errors.New("signature mismatch")
	}
	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, errInvalidToken
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}
