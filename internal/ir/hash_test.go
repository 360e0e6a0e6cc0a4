package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadDigestDeterministic(t *testing.T) {
	a := IRObject{"model": IRObject{"flips": IRArray{}}, "decision": IRObject{"type": IRString("AwaitingFlip")}}
	b := IRObject{"decision": IRObject{"type": IRString("AwaitingFlip")}, "model": IRObject{"flips": IRArray{}}}

	da, err := PayloadDigest(a)
	require.NoError(t, err)
	db, err := PayloadDigest(b)
	require.NoError(t, err)

	assert.Equal(t, da, db)
	assert.Len(t, da, 64)
}

func TestPayloadDigestDetectsChange(t *testing.T) {
	a := IRObject{"flips": IRArray{IRString("heads")}}
	b := IRObject{"flips": IRArray{IRString("tails")}}

	assert.NotEqual(t, MustPayloadDigest(a), MustPayloadDigest(b))
}

func TestDigestDomainSeparation(t *testing.T) {
	v := IRObject{"type": IRString("Flip")}

	payload, err := Digest(DomainPayload, v)
	require.NoError(t, err)
	choice, err := ChoiceDigest(v)
	require.NoError(t, err)

	assert.NotEqual(t, payload, choice)
}
