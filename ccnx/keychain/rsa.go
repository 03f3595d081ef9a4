package keychain

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"

	"github.com/parc-ccnx-archive/Libccnx-portal/ccnx"
)

// NewRSASigner creates a Signer with an RSA private key.
func NewRSASigner(key *rsa.PrivateKey) (Signer, error) {
	keyID, e := ComputeKeyID(&key.PublicKey)
	if e != nil {
		return nil, e
	}
	return &rsaSigner{key: key, keyID: keyID}, nil
}

// NewRSAVerifier creates a Verifier with an RSA public key.
func NewRSAVerifier(key *rsa.PublicKey) (Verifier, error) {
	keyID, e := ComputeKeyID(key)
	if e != nil {
		return nil, e
	}
	return &rsaVerifier{key: key, keyID: keyID}, nil
}

type rsaSigner struct {
	key   *rsa.PrivateKey
	keyID []byte
}

func (signer *rsaSigner) KeyID() []byte {
	return signer.keyID
}

func (signer *rsaSigner) PublicKey() crypto.PublicKey {
	return &signer.key.PublicKey
}

func (signer *rsaSigner) Sign(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return rsa.SignPKCS1v15(rand.Reader, signer.key, crypto.SHA256, h[:])
}

type rsaVerifier struct {
	key   *rsa.PublicKey
	keyID []byte
}

func (verifier *rsaVerifier) KeyID() []byte {
	return verifier.keyID
}

func (verifier *rsaVerifier) Verify(co ccnx.ContentObject) error {
	return co.VerifyWith(func(input, sig []byte) error {
		h := sha256.Sum256(input)
		if e := rsa.VerifyPKCS1v15(verifier.key, crypto.SHA256, h[:], sig); e != nil {
			return ErrVerification
		}
		return nil
	})
}
