package kinesis

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Signer computes the authentication headers of a request.
type Signer interface {
	Sign(method, path, body string) http.Header
}

// HMACSigner signs requests with the account's API key pair.
//
// The signature is the uppercase hex HMAC-SHA256, keyed by the private key,
// of nonce, method, path and body concatenated. The nonce is the UTC time in
// milliseconds, and is strictly increasing for a given signer even when the
// clock does not move between two calls.
type HMACSigner struct {
	PublicKey  string
	PrivateKey string
	Now        func() time.Time // defaults to time.Now

	mu   sync.Mutex
	last int64
}

// NewHMACSigner returns a signer using the wall clock.
func NewHMACSigner(publicKey, privateKey string) *HMACSigner {
	return &HMACSigner{PublicKey: publicKey, PrivateKey: privateKey}
}

// nonce returns a fresh nonce.
func (s *HMACSigner) nonce() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ms := now().UTC().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return strconv.FormatInt(ms, 10)
}

// Sign implements Signer.
func (s *HMACSigner) Sign(method, path, body string) http.Header {
	nonce := s.nonce()
	h := make(http.Header)
	h.Set("x-nonce", nonce)
	h.Set("x-api-key", s.PublicKey)
	h.Set("x-signature", Signature(s.PrivateKey, nonce, method, path, body))
	if method != http.MethodDelete {
		h.Set("Content-Type", "application/json")
	}
	return h
}

// Signature returns the uppercase hex HMAC-SHA256 of nonce+method+path+body.
func Signature(privateKey, nonce, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(privateKey))
	mac.Write([]byte(nonce + method + path + body))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}
