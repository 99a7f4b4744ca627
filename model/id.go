package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// GenerateID returns a new opaque identifier.
//
// IDs are random UUIDs encoded as base58 so they stay URL-safe without
// further escaping.
func GenerateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	return base58.Encode(id[:]), nil
}

func MustGenerateID() string {
	id, err := GenerateID()
	if err != nil {
		panic(fmt.Sprintf("failed to generate id: %v", err))
	}

	return id
}
