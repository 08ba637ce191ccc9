// Package signature verifies the detached Ed25519 signature Discord attaches
// to every interaction webhook request.
package signature

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrMalformedKey means the configured public key is not valid hex or
	// has the wrong length.
	ErrMalformedKey = errors.New("malformed public key")

	// ErrMalformedSignature means the signature header is not valid hex or
	// has the wrong length.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrVerificationFailed means the signature does not match the signed
	// message under the given key.
	ErrVerificationFailed = errors.New("signature verification failed")
)

// Verify checks a detached Ed25519 signature over the concatenation of the
// timestamp header and the raw request body. The body must be the literal
// bytes received on the wire: any re-encoding, however semantically lossless,
// changes the signed message.
//
// Every failure is terminal for the request; the caller must reject it
// without parsing or acting on the body.
func Verify(timestamp string, body []byte, signatureHex, publicKeyHex string) error {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	if len(key) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedKey, len(key), ed25519.PublicKeySize)
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedSignature, len(sig), ed25519.SignatureSize)
	}

	signed := make([]byte, 0, len(timestamp)+len(body))
	signed = append(signed, timestamp...)
	signed = append(signed, body...)

	if !ed25519.Verify(ed25519.PublicKey(key), signed, sig) {
		return ErrVerificationFailed
	}
	return nil
}
