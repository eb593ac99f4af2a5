// Package security implements the RFB security sub-protocols: VNC
// challenge-response auth, VeNCrypt TLS negotiation, and a GSSAPI stub.
package security

import (
	"bufio"
	"crypto/des"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/ltsm-go/connector/internal/secmem"
)

// ChallengeSize is the fixed VNC auth challenge/response length.
const ChallengeSize = 16

// NewChallenge returns ChallengeSize random bytes for a VNC auth round.
func NewChallenge() ([]byte, error) {
	buf := make([]byte, ChallengeSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("security: generate vnc challenge: %w", err)
	}
	return buf, nil
}

// reverseBits reverses the bit order within a single byte, the classic VNC
// DES-key quirk: RFC 6143 §7.2.2 has the client/server treat the password
// as a DES key with each byte's bits reversed before use.
func reverseBits(b byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		out <<= 1
		out |= b & 1
		b >>= 1
	}
	return out
}

// desKeyFromPassword pads/truncates password to 8 bytes and reverses each
// byte's bit order to form the DES key VNC auth actually uses.
func desKeyFromPassword(password string) []byte {
	key := make([]byte, 8)
	copy(key, password)
	for i := range key {
		key[i] = reverseBits(key[i])
	}
	return key
}

// EncryptChallenge DES-ECB-encrypts challenge (must be a multiple of 8
// bytes) under the VNC-mangled key derived from password.
func EncryptChallenge(challenge []byte, password string) ([]byte, error) {
	if len(challenge)%des.BlockSize != 0 {
		return nil, fmt.Errorf("security: challenge length %d is not a multiple of the DES block size", len(challenge))
	}
	block, err := des.NewCipher(desKeyFromPassword(password))
	if err != nil {
		return nil, fmt.Errorf("security: des cipher: %w", err)
	}
	out := make([]byte, len(challenge))
	for off := 0; off < len(challenge); off += des.BlockSize {
		block.Encrypt(out[off:off+des.BlockSize], challenge[off:off+des.BlockSize])
	}
	return out, nil
}

// CheckResponse reports whether response matches encrypting challenge
// under password's derived DES key.
func CheckResponse(challenge, response []byte, password string) (bool, error) {
	expect, err := EncryptChallenge(challenge, password)
	if err != nil {
		return false, err
	}
	return subtleEqual(expect, response), nil
}

func subtleEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// AuthenticateAgainstFile iterates passwdFile line by line (one candidate
// password per line) and accepts if any line's DES-encrypted challenge
// matches response.
func AuthenticateAgainstFile(passwdFile string, challenge, response []byte) (bool, error) {
	f, err := os.Open(passwdFile)
	if err != nil {
		return false, fmt.Errorf("security: open vnc password file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		candidate := secmem.NewSecureString(scanner.Text())
		ok, err := CheckResponse(challenge, response, candidate.String())
		candidate.Zero()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, scanner.Err()
}
