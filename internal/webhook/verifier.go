// Package webhook authenticates inbound push events against the shared
// secret of the external event source.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cwrk-planet/presence-service/pkg/errs"
)

var (
	ErrSecretNotSet   = fmt.Errorf("%w: webhook secret token is not set", errs.ErrConfig)
	ErrMissingHeaders = fmt.Errorf("%w: missing signature or timestamp header", errs.ErrUnauthorized)
	ErrBadSignature   = fmt.Errorf("%w: signature mismatch", errs.ErrUnauthorized)
)

// Verifier checks that a message was produced by the holder of the shared
// secret. Messages that fail Verify must never reach the merge policy.
type Verifier struct {
	secret []byte
}

// NewVerifier accepts an empty secret: the service still starts, but every
// verification fails with ErrSecretNotSet until one is configured.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// HashToken answers the endpoint.url_validation handshake: the hex-encoded
// HMAC-SHA256 of the challenge token under the shared secret.
func (v *Verifier) HashToken(plainToken string) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrSecretNotSet
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(plainToken))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks the v0 signature scheme over the exact raw body bytes as
// received: v0=hex(HMAC-SHA256(secret, "v0:<timestamp>:<body>")). The
// comparison is constant-time; anything else is a security defect.
func (v *Verifier) Verify(signature, timestamp string, body []byte) error {
	if len(v.secret) == 0 {
		return ErrSecretNotSet
	}
	if signature == "" || timestamp == "" {
		return ErrMissingHeaders
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if len(signature) != len(expected) || !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrBadSignature
	}
	return nil
}
