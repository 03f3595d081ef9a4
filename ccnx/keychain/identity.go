package keychain

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/youmark/pkcs8"
)

// PEM block types of identity files.
const (
	PemEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	PemPrivateKey          = "PRIVATE KEY"
)

// KeyIdentity is an Identity backed by an in-memory private key.
type KeyIdentity struct {
	Key crypto.Signer
}

var _ Identity = KeyIdentity{}

// CreateSigner implements Identity interface.
func (id KeyIdentity) CreateSigner() (Signer, error) {
	switch key := id.Key.(type) {
	case *ecdsa.PrivateKey:
		return NewECDSASigner(key)
	case *rsa.PrivateKey:
		return NewRSASigner(key)
	}
	return nil, ErrKeyType
}

// NewVerifier creates a Verifier for the public key of this identity.
func (id KeyIdentity) NewVerifier() (Verifier, error) {
	switch key := id.Key.(type) {
	case *ecdsa.PrivateKey:
		return NewECDSAVerifier(&key.PublicKey)
	case *rsa.PrivateKey:
		return NewRSAVerifier(&key.PublicKey)
	}
	return nil, ErrKeyType
}

// GenerateIdentity creates an identity with a new ECDSA P-256 key.
func GenerateIdentity() (KeyIdentity, error) {
	key, e := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if e != nil {
		return KeyIdentity{}, e
	}
	return KeyIdentity{Key: key}, nil
}

// ParseIdentity parses a PEM identity.
// An "ENCRYPTED PRIVATE KEY" block is decrypted with the password.
func ParseIdentity(input, password []byte) (id KeyIdentity, e error) {
	block, _ := pem.Decode(input)
	if block == nil {
		return id, fmt.Errorf("%w: no PEM block", ErrIdentityFile)
	}

	var key any
	switch block.Type {
	case PemEncryptedPrivateKey:
		key, e = pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
	case PemPrivateKey:
		key, e = pkcs8.ParsePKCS8PrivateKey(block.Bytes)
	default:
		return id, fmt.Errorf("%w: unexpected PEM block %s", ErrIdentityFile, block.Type)
	}
	if e != nil {
		return id, fmt.Errorf("%w: %w", ErrIdentityFile, e)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return id, ErrKeyType
	}
	id.Key = signer
	return id, nil
}

// MarshalIdentity encodes an identity as PEM.
// If password is non-empty, the private key is encrypted.
func MarshalIdentity(id KeyIdentity, password []byte) ([]byte, error) {
	var block pem.Block
	if len(password) == 0 {
		block.Type = PemPrivateKey
	} else {
		block.Type = PemEncryptedPrivateKey
	}
	der, e := pkcs8.MarshalPrivateKey(id.Key, password, nil)
	if e != nil {
		return nil, e
	}
	block.Bytes = der
	return pem.EncodeToMemory(&block), nil
}

// OpenIdentityFile loads an identity from a file.
func OpenIdentityFile(filename, password string) (KeyIdentity, error) {
	input, e := os.ReadFile(filename)
	if e != nil {
		return KeyIdentity{}, fmt.Errorf("%w: %w", ErrIdentityFile, e)
	}
	return ParseIdentity(input, []byte(password))
}

// CreateIdentityFile generates an identity and saves it to a file.
func CreateIdentityFile(filename, password string) (KeyIdentity, error) {
	id, e := GenerateIdentity()
	if e != nil {
		return id, e
	}
	output, e := MarshalIdentity(id, []byte(password))
	if e != nil {
		return id, e
	}
	return id, os.WriteFile(filename, output, 0o600)
}
