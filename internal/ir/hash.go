package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainPayload = "turnkit/payload/v1"
	DomainChoice  = "turnkit/choice/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes the domain-separated digest of v's canonical JSON.
func Digest(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// PayloadDigest identifies a payload snapshot by content.
// Two snapshots are structurally equal iff their digests match.
func PayloadDigest(snapshot IRValue) (string, error) {
	return Digest(DomainPayload, snapshot)
}

// ChoiceDigest identifies a committed choice by content.
func ChoiceDigest(choice IRValue) (string, error) {
	return Digest(DomainChoice, choice)
}

// MustPayloadDigest is like PayloadDigest but panics on error.
// Use only in tests or when the snapshot is known to be valid.
func MustPayloadDigest(snapshot IRValue) string {
	d, err := PayloadDigest(snapshot)
	if err != nil {
		panic(err)
	}
	return d
}
