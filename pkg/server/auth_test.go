package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuthenticator("test-secret")

	id := Identity{PlayerID: "p1", DisplayName: "Rusty", IsGuest: true}
	token, err := a.IssueToken(id)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenRejectedAcrossSecrets(t *testing.T) {
	a := NewAuthenticator("secret-a")
	b := NewAuthenticator("secret-b")

	token, err := a.IssueToken(Identity{PlayerID: "p1", DisplayName: "X"})
	require.NoError(t, err)

	_, err = b.VerifyToken(token)
	assert.Error(t, err, "a token signed with another secret must not verify")
}

func TestTokenGarbageRejected(t *testing.T) {
	a := NewAuthenticator("test-secret")
	_, err := a.VerifyToken("not.a.token")
	assert.Error(t, err)
}

func TestEphemeralSecretsDiffer(t *testing.T) {
	a := NewAuthenticator("")
	b := NewAuthenticator("")

	token, err := a.IssueToken(Identity{PlayerID: "p1", DisplayName: "X"})
	require.NoError(t, err)

	if _, err := b.VerifyToken(token); err == nil {
		t.Error("two ephemeral authenticators should not share a secret")
	}
}

func TestMintGuest(t *testing.T) {
	a := NewAuthenticator("test-secret")

	g1 := a.MintGuest()
	g2 := a.MintGuest()

	assert.True(t, g1.IsGuest)
	assert.NotEmpty(t, g1.PlayerID)
	assert.NotEmpty(t, g1.DisplayName)
	assert.NotEqual(t, g1.PlayerID, g2.PlayerID)
}
