// Package auth provides password hashing and bearer token issue/verify.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Verifier validates bearer tokens and extracts the principal claims.
// Modes: dev (token is "role:userId", no crypto), hmac (HS256).
type Verifier struct {
	Mode       string
	HMACSecret []byte
	TokenTTL   time.Duration
}

type Principal struct {
	Subject string // email
	Role    string // tourist, police, tourism
	UserID  string
}

func NewVerifierFromEnv() *Verifier {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if mode == "" {
		mode = "dev"
	}
	ttl := 30 * time.Minute
	if v := os.Getenv("AUTH_TOKEN_TTL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Minute
		}
	}
	return &Verifier{Mode: mode, HMACSecret: []byte(os.Getenv("AUTH_HMAC_SECRET")), TokenTTL: ttl}
}

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

type claims struct {
	Sub    string `json:"sub"`
	Role   string `json:"role"`
	UserID string `json:"user_id"`
	Exp    int64  `json:"exp"`
}

// Issue returns a bearer token for the principal. In dev mode the token is the
// plain "role:userId" pair; in hmac mode it is a signed HS256 JWT.
func (v *Verifier) Issue(p Principal) (string, error) {
	if v.Mode == "dev" {
		return p.Role + ":" + p.UserID, nil
	}
	if len(v.HMACSecret) == 0 {
		return "", errors.New("AUTH_HMAC_SECRET not set")
	}
	hdr := b64url([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body, err := json.Marshal(claims{Sub: p.Subject, Role: p.Role, UserID: p.UserID, Exp: time.Now().Add(v.TokenTTL).Unix()})
	if err != nil {
		return "", err
	}
	signingInput := hdr + "." + b64url(body)
	mac := hmac.New(sha256.New, v.HMACSecret)
	mac.Write([]byte(signingInput))
	return signingInput + "." + b64url(mac.Sum(nil)), nil
}

func (v *Verifier) Verify(token string) (Principal, error) {
	if v.Mode == "dev" {
		parts := strings.SplitN(token, ":", 2)
		if len(parts) == 2 && parts[0] != "" {
			return Principal{Role: parts[0], UserID: parts[1]}, nil
		}
		return Principal{}, errors.New("invalid dev token; expected role:userId")
	}
	segs := strings.Split(token, ".")
	if len(segs) != 3 {
		return Principal{}, errors.New("invalid token")
	}
	var hdr struct {
		Alg string `json:"alg"`
	}
	headerJSON, err := b64urlDecode(segs[0])
	if err != nil {
		return Principal{}, err
	}
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return Principal{}, err
	}
	if hdr.Alg != "HS256" {
		return Principal{}, errors.New("unsupported alg")
	}
	sig, err := b64urlDecode(segs[2])
	if err != nil {
		return Principal{}, err
	}
	mac := hmac.New(sha256.New, v.HMACSecret)
	mac.Write([]byte(segs[0] + "." + segs[1]))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return Principal{}, errors.New("bad signature")
	}
	payloadJSON, err := b64urlDecode(segs[1])
	if err != nil {
		return Principal{}, err
	}
	var c claims
	if err := json.Unmarshal(payloadJSON, &c); err != nil {
		return Principal{}, err
	}
	if c.Exp != 0 && time.Now().Unix() > c.Exp {
		return Principal{}, errors.New("token expired")
	}
	if c.Role == "" {
		return Principal{}, errors.New("missing role claim")
	}
	return Principal{Subject: c.Sub, Role: strings.ToLower(c.Role), UserID: c.UserID}, nil
}

func b64url(b []byte) string                { return base64.RawURLEncoding.EncodeToString(b) }
func b64urlDecode(s string) ([]byte, error) { return base64.RawURLEncoding.DecodeString(s) }
