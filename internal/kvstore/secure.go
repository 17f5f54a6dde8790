package kvstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// secretBox encrypts secure-store values with AES-GCM. The key is derived
// from the configured app secret, one random nonce per write.
type secretBox struct {
	aead cipher.AEAD
}

func newSecretBox(secret []byte) (*secretBox, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("secure store secret is required")
	}
	key := sha256.Sum256(secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &secretBox{aead: aead}, nil
}

func (b *secretBox) seal(value string) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	ciphertext = b.aead.Seal(nil, nonce, []byte(value), nil)
	return ciphertext, nonce, nil
}

func (b *secretBox) open(ciphertext, nonce []byte) (string, error) {
	plain, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
