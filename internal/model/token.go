package model

import "time"

// TokenKind discriminates access tokens from refresh tokens inside the
// signed payload, so a refresh token can never be replayed as an access
// token or vice versa.
type TokenKind string

const (
    TokenKindAccess  TokenKind = "access"
    TokenKindRefresh TokenKind = "refresh"
)

// TokenClaims is the payload embedded in every signed token. It is not
// persisted; the token is self-verifying via its signature.
type TokenClaims struct {
    UserID    string
    Email     string
    UserType  UserType
    TokenKind TokenKind
    IssuedAt  time.Time
    ExpiresAt time.Time
}

// TokenPair is the access/refresh pair handed to a client after register,
// login or refresh. ExpiresIn is the access token lifetime in seconds.
type TokenPair struct {
    AccessToken  string `json:"access_token"`
    RefreshToken string `json:"refresh_token"`
    TokenType    string `json:"token_type"`
    ExpiresIn    int    `json:"expires_in"`
}
