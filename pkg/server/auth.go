package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Identity is the authenticated principal behind a connection.
type Identity struct {
	PlayerID    string
	DisplayName string
	IsGuest     bool
}

// TokenTTL bounds how long an issued bearer token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Authenticator signs and verifies HMAC bearer tokens and mints guest
// identities.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator with the given signing secret.
// An empty secret generates an ephemeral one for development.
func NewAuthenticator(secret string) *Authenticator {
	if secret == "" {
		buf := make([]byte, 32)
		rand.Read(buf)
		return &Authenticator{secret: buf}
	}
	return &Authenticator{secret: []byte(secret)}
}

type tokenClaims struct {
	DisplayName string `json:"displayName"`
	IsGuest     bool   `json:"isGuest"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the identity.
func (a *Authenticator) IssueToken(id Identity) (string, error) {
	claims := tokenClaims{
		DisplayName: id.DisplayName,
		IsGuest:     id.IsGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.PlayerID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// VerifyToken validates a bearer token and returns the identity it carries.
func (a *Authenticator) VerifyToken(token string) (Identity, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return Identity{}, fmt.Errorf("invalid token claims")
	}
	return Identity{
		PlayerID:    claims.Subject,
		DisplayName: claims.DisplayName,
		IsGuest:     claims.IsGuest,
	}, nil
}

// MintGuest creates a fresh guest identity with a random readable name.
func (a *Authenticator) MintGuest() Identity {
	return Identity{
		PlayerID:    uuid.NewString(),
		DisplayName: guestName(),
		IsGuest:     true,
	}
}

var guestAdjectives = []string{
	"Rusty", "Dusty", "Shiny", "Sturdy", "Gritty", "Deep", "Lucky",
	"Swift", "Stony", "Bold", "Quiet", "Molten", "Frosty", "Hollow",
}

var guestNouns = []string{
	"Digger", "Miner", "Prospector", "Burrower", "Drifter", "Tunneler",
	"Surveyor", "Mole", "Pickaxe", "Lantern", "Excavator", "Spelunker",
}

func guestName() string {
	buf := make([]byte, 3)
	rand.Read(buf)
	adj := guestAdjectives[int(buf[0])%len(guestAdjectives)]
	noun := guestNouns[int(buf[1])%len(guestNouns)]
	return fmt.Sprintf("%s%s-%s", adj, noun, hex.EncodeToString(buf[2:]))
}
