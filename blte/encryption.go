package blte

import (
	"crypto/rc4"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/salsa20/salsa"
)

// CipherType selects the stream cipher used by an encrypted chunk's inner
// header.
type CipherType byte

const (
	CipherSalsa20 CipherType = 'S'
	CipherARC4    CipherType = 'A'
)

// KeyName identifies a TACT encryption key. Key names are short byte
// strings (conventionally 8 bytes); KeyName is their lowercase hex form so
// it can be used as a map key and logged without leaking raw key material.
type KeyName string

// KeyNameFromBytes converts raw inner-header key-name bytes to a KeyName.
func KeyNameFromBytes(b []byte) KeyName { return KeyName(hex.EncodeToString(b)) }

// KeyStore resolves a key name to its 16-byte TACT key.
type KeyStore interface {
	Lookup(name KeyName) (key [16]byte, ok bool)
}

// MapKeyStore is a KeyStore backed by a plain map, populated from a TACT
// key service response or a local key list file.
type MapKeyStore map[KeyName][16]byte

func (m MapKeyStore) Lookup(name KeyName) ([16]byte, bool) {
	k, ok := m[name]
	return k, ok
}

// encryptedHeader is the inner header carried by a mode-'E' chunk payload,
// preceding the actual ciphertext.
type encryptedHeader struct {
	KeyName KeyName
	IV      []byte
	Type    CipherType
}

func parseEncryptedHeader(payload []byte) (encryptedHeader, []byte, error) {
	if len(payload) < 1 {
		return encryptedHeader{}, nil, fmt.Errorf("%w: empty encrypted payload", ErrTruncated)
	}
	keyNameLen := int(payload[0])
	pos := 1
	if len(payload) < pos+keyNameLen+1 {
		return encryptedHeader{}, nil, fmt.Errorf("%w: encrypted header key name truncated", ErrTruncated)
	}
	keyName := KeyNameFromBytes(payload[pos : pos+keyNameLen])
	pos += keyNameLen

	ivLen := int(payload[pos])
	pos++
	if len(payload) < pos+ivLen+1 {
		return encryptedHeader{}, nil, fmt.Errorf("%w: encrypted header IV truncated", ErrTruncated)
	}
	iv := append([]byte(nil), payload[pos:pos+ivLen]...)
	pos += ivLen

	cipherType := CipherType(payload[pos])
	pos++

	return encryptedHeader{KeyName: keyName, IV: iv, Type: cipherType}, payload[pos:], nil
}

// chunkIV derives the per-chunk cipher IV by XORing the inner header's IV
// bytes with the chunk index encoded little-endian and zero-padded to the
// IV's length.
func chunkIV(iv []byte, index int) []byte {
	out := append([]byte(nil), iv...)
	var idx [4]byte
	idx[0] = byte(index)
	idx[1] = byte(index >> 8)
	idx[2] = byte(index >> 16)
	idx[3] = byte(index >> 24)
	for i := 0; i < len(out) && i < len(idx); i++ {
		out[i] ^= idx[i]
	}
	return out
}

// decryptChunk decrypts an 'E'-mode chunk payload, returning the plaintext
// that begins with its own mode tag byte (i.e. decompressPayload must run
// again on the result, dispatched on result[0]).
func decryptChunk(payload []byte, keys KeyStore, index int) ([]byte, error) {
	hdr, ciphertext, err := parseEncryptedHeader(payload)
	if err != nil {
		return nil, err
	}
	key, ok := keys.Lookup(hdr.KeyName)
	if !ok {
		return nil, fmt.Errorf("%w: key %s", ErrMissingKey, hdr.KeyName)
	}
	iv := chunkIV(hdr.IV, index)

	switch hdr.Type {
	case CipherSalsa20:
		return salsa20Decrypt(ciphertext, key, iv)
	case CipherARC4:
		return arc4Decrypt(ciphertext, key, iv)
	default:
		return nil, fmt.Errorf("blte: unsupported cipher type %q", hdr.Type)
	}
}

func salsa20Decrypt(ciphertext []byte, key [16]byte, iv []byte) ([]byte, error) {
	var nonce [8]byte
	copy(nonce[:], iv) // zero-padded when iv is shorter, truncated if longer

	var salsaKey [32]byte
	copy(salsaKey[:16], key[:])
	copy(salsaKey[16:], key[:])

	out := make([]byte, len(ciphertext))
	salsa.XORKeyStream(out, ciphertext, &nonce, &salsaKey)
	return out, nil
}

func arc4Decrypt(ciphertext []byte, key [16]byte, iv []byte) ([]byte, error) {
	streamKey := append(append([]byte(nil), key[:]...), iv...)
	c, err := rc4.NewCipher(streamKey)
	if err != nil {
		return nil, fmt.Errorf("blte: arc4 init: %w", err)
	}
	out := make([]byte, len(ciphertext))
	c.XORKeyStream(out, ciphertext)
	return out, nil
}
