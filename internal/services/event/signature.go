package event

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	internalErrors "github.com/tumbleweedd/two_services_system/order_notifier/internal/lib/errors"
)

const SignatureHeader = "X-Snipcart-Signature"

// HMACVerifier checks that a delivery body was signed with the shared secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Sign returns the hex encoded HMAC-SHA256 of body.
func (v *HMACVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

func (v *HMACVerifier) Verify(body []byte, signature string) error {
	if signature == "" {
		return internalErrors.ErrMissingSignature
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", internalErrors.ErrInvalidSignature, err)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)

	if !hmac.Equal(got, mac.Sum(nil)) {
		return internalErrors.ErrInvalidSignature
	}

	return nil
}
