package keychain

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
)

// NewECDSASigner creates a Signer with an ECDSA private key.
func NewECDSASigner(key *ecdsa.PrivateKey) (Signer, error) {
	keyID, e := ComputeKeyID(&key.PublicKey)
	if e != nil {
		return nil, e
	}
	return &ecdsaSigner{key: key, keyID: keyID}, nil
}

// NewECDSAVerifier creates a Verifier with an ECDSA public key.
func NewECDSAVerifier(key *ecdsa.PublicKey) (Verifier, error) {
	keyID, e := ComputeKeyID(key)
	if e != nil {
		return nil, e
	}
	return &ecdsaVerifier{key: key, keyID: keyID}, nil
}

type ecdsaSigner struct {
	key   *ecdsa.PrivateKey
	keyID []byte
}

func (signer *ecdsaSigner) KeyID() []byte {
	return signer.keyID
}

func (signer *ecdsaSigner) PublicKey() crypto.PublicKey {
	return &signer.key.PublicKey
}

func (signer *ecdsaSigner) Sign(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return ecdsa.SignASN1(rand.Reader, signer.key, h[:])
}

type ecdsaVerifier struct {
	key   *ecdsa.PublicKey
	keyID []byte
}

func (verifier *ecdsaVerifier) KeyID() []byte {
	return verifier.keyID
}

func (verifier *ecdsaVerifier) Verify(co ccnx.ContentObject) error {
	return co.VerifyWith(func(input, sig []byte) error {
		h := sha256.Sum256(input)
		if ok := ecdsa.VerifyASN1(verifier.key, h[:], sig); !ok {
			return ErrVerification
		}
		return nil
	})
}
