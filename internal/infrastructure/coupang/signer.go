package coupang

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	// SignatureAlgorithm is the algorithm name embedded in the Authorization header
	SignatureAlgorithm = "HmacSHA256"

	// signedDateLayout formats time as YYMMDD'T'HHmmss'Z'
	signedDateLayout = "060102T150405Z"
)

// Signer builds CEA Authorization headers for the Coupang Partners API.
// A new timestamp and signature are computed on every call.
type Signer struct {
	accessKey string
	secretKey string
	now       func() time.Time
}

// NewSigner creates a signer reading the system clock
func NewSigner(accessKey, secretKey string) *Signer {
	return &Signer{
		accessKey: accessKey,
		secretKey: secretKey,
		now:       time.Now,
	}
}

// WithClock returns a copy of the signer that reads time from now
func (s *Signer) WithClock(now func() time.Time) *Signer {
	cp := *s
	cp.now = now
	return &cp
}

// Authorization signs a request for method and url, where url is the
// request path optionally followed by "?" and the encoded query string.
func (s *Signer) Authorization(method, url string) string {
	path, query := SplitURL(url)
	signedDate := FormatSignedDate(s.now())
	signature := Signature(s.secretKey, signedDate, method, path, query)
	return fmt.Sprintf("CEA algorithm=%s, access-key=%s, signed-date=%s, signature=%s",
		SignatureAlgorithm, s.accessKey, signedDate, signature)
}

// SplitURL splits url into path and query on the first "?"
func SplitURL(url string) (path, query string) {
	path, query, _ = strings.Cut(url, "?")
	return path, query
}

// FormatSignedDate renders t in UTC as YYMMDD'T'HHmmss'Z'
func FormatSignedDate(t time.Time) string {
	return t.UTC().Format(signedDateLayout)
}

// Signature returns the hex HMAC-SHA256 of signedDate+method+path+query
func Signature(secretKey, signedDate, method, path, query string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(signedDate + method + path + query))
	return hex.EncodeToString(mac.Sum(nil))
}
