// Package signature implements the provider's request signing scheme:
// HMAC-SHA1 over the full callback URL followed by every form field
// (sorted by name, name then value), base64 encoded.
package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// HeaderName carries the request signature
const HeaderName = "X-Twilio-Signature"

// Compute returns the expected signature for a callback URL and form body
func Compute(authToken, fullURL string, params url.Values) string {
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(payload(fullURL, params)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Validate reports whether signatureHeader matches the recomputed signature.
// Missing inputs never validate; callers decide whether absent configuration
// means bypass.
func Validate(authToken, signatureHeader, fullURL string, params url.Values) bool {
	if authToken == "" || signatureHeader == "" || fullURL == "" {
		return false
	}
	expected := Compute(authToken, fullURL, params)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signatureHeader)))
}

func payload(fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		values := append([]string(nil), params[k]...)
		sort.Strings(values)
		for _, v := range values {
			b.WriteString(k)
			b.WriteString(v)
		}
	}
	return b.String()
}

// Outcome of a verification attempt
type Outcome string

const (
	OutcomeVerified Outcome = "verified"
	OutcomeBypassed Outcome = "bypassed"
	OutcomeRejected Outcome = "rejected"
)

// Verify checks a callback against the configured auth token.
// When the token, the signature header or the public base URL is absent the
// check is bypassed and the request is accepted. A panic while computing the
// signature is a rejection.
func Verify(authToken, signatureHeader, publicBaseURL, requestURI string, params url.Values) (outcome Outcome) {
	if authToken == "" || signatureHeader == "" || publicBaseURL == "" {
		return OutcomeBypassed
	}

	defer func() {
		if recover() != nil {
			outcome = OutcomeRejected
		}
	}()

	fullURL := strings.TrimRight(publicBaseURL, "/") + requestURI
	if Validate(authToken, signatureHeader, fullURL, params) {
		return OutcomeVerified
	}
	return OutcomeRejected
}

// Accepted reports whether the request may proceed
func (o Outcome) Accepted() bool {
	return o == OutcomeVerified || o == OutcomeBypassed
}
