// Package keychain implements identities and signers for CCNx messages.
package keychain

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"errors"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
)

// Error conditions.
var (
	ErrKeyType      = errors.New("unsupported private key type")
	ErrIdentityFile = errors.New("cannot load identity file")
	ErrVerification = errors.New("signature verification error")
)

// Signer signs CCNx messages.
type Signer interface {
	ccnx.Signer

	// PublicKey returns the public key of the signing key.
	PublicKey() crypto.PublicKey
}

// Verifier verifies signed ContentObjects.
type Verifier interface {
	// KeyID returns the key identifier of the verification key.
	KeyID() []byte

	// Verify checks the signature on a ContentObject.
	Verify(co ccnx.ContentObject) error
}

// Identity is a signing identity.
type Identity interface {
	// CreateSigner creates a Signer that signs with this identity.
	CreateSigner() (Signer, error)
}

// ComputeKeyID computes the key identifier of a public key.
// It is the SHA-256 digest of the DER-encoded SubjectPublicKeyInfo.
func ComputeKeyID(pub crypto.PublicKey) ([]byte, error) {
	der, e := x509.MarshalPKIXPublicKey(pub)
	if e != nil {
		return nil, e
	}
	h := sha256.Sum256(der)
	return h[:], nil
}
