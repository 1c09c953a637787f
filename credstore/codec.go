package credstore

import (
	"encoding/json"
	"errors"
)

// errMalformed marks payloads that fail to decode or fail shape checks.
// It stays internal; the store translates it into absent-value or
// self-healing behavior at the operation level.
var errMalformed = errors.New("malformed payload")

func encodeRegistry(users []UserRecord) (string, error) {
	raw, err := json.Marshal(users)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeRegistry parses the stored user registry. Any decode failure is
// reported as errMalformed; the store treats a malformed registry as
// absent rather than refusing to operate.
func decodeRegistry(payload string) ([]UserRecord, error) {
	var users []UserRecord
	if err := json.Unmarshal([]byte(payload), &users); err != nil {
		return nil, errMalformed
	}
	return users, nil
}

func encodeSession(user PublicUser) (string, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeSession parses the stored session slot. A payload that does not
// decode, or decodes without an ID or email, is malformed: restoring a
// half-formed user would put the manager in a state no operation can
// produce.
func decodeSession(payload string) (PublicUser, error) {
	var user PublicUser
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return PublicUser{}, errMalformed
	}
	if user.ID == "" || user.Email == "" {
		return PublicUser{}, errMalformed
	}
	return user, nil
}
