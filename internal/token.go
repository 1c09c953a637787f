// Package internal holds the reset token codec shared by the manager and
// its tests. A reset token is the challenge ID and the plaintext secret
// packed into one opaque base64url string.
package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

type ChallengeID [16]byte

const (
	resetSecretSize   = 32
	resetTokenRawSize = 16 + resetSecretSize
)

func NewChallengeID() (ChallengeID, error) {
	var cid ChallengeID
	_, err := rand.Read(cid[:])
	return cid, err
}

func (c ChallengeID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(c[:])
}

func ParseChallengeID(id string) (ChallengeID, error) {
	var cid ChallengeID

	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return cid, err
	}
	if len(raw) != len(cid) {
		return cid, errors.New("invalid challenge id size")
	}

	copy(cid[:], raw)
	return cid, nil
}

func NewResetSecret() ([resetSecretSize]byte, error) {
	var secret [resetSecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}

func HashResetSecret(secret [resetSecretSize]byte) [32]byte {
	return sha256.Sum256(secret[:])
}

func EncodeResetToken(challengeID string, secret [resetSecretSize]byte) (string, error) {
	cid, err := ParseChallengeID(challengeID)
	if err != nil {
		return "", err
	}

	var raw [resetTokenRawSize]byte
	copy(raw[:len(cid)], cid[:])
	copy(raw[len(cid):], secret[:])

	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

func DecodeResetToken(token string) (string, [resetSecretSize]byte, error) {
	var secret [resetSecretSize]byte

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", secret, err
	}
	if len(raw) != resetTokenRawSize {
		return "", secret, errors.New("invalid reset token size")
	}

	var cid ChallengeID
	copy(cid[:], raw[:len(cid)])
	copy(secret[:], raw[len(cid):])

	return cid.String(), secret, nil
}
