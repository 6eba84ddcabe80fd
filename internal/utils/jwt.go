package utils // package utils provides helpers for token creation, verification and hashing

import (
    "crypto/sha256" // SHA-256 hashing for stored token digests
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel errors for token verification
    "time"          // expiry computation

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"       // unique token ids

    "github.com/iliyamo/freelance-gateway/internal/model"
)

var (
    // ErrInvalidToken covers malformed tokens, bad signatures, wrong signing
    // methods and missing claims.
    ErrInvalidToken = errors.New("invalid token")
    // ErrTokenExpired is returned when the token parsed fine but its exp is
    // in the past.
    ErrTokenExpired = errors.New("token expired")
)

// SignedToken is a serialized JWT together with its expiry. Both access and
// refresh tokens are self-contained JWTs; the payload's kind claim tells them
// apart.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewSignedToken builds and signs an HS256 JWT carrying the gateway's claim
// set: user_id, email, user_type, kind, plus the standard jti, exp and iat.
// The jti makes every token unique even when two are minted for the same
// user within the same second; session rotation and the blacklist key on
// per-token hashes and need that. The ttl is caller-supplied so access
// tokens (minutes) and refresh tokens (days) share one code path.
func NewSignedToken(secret string, u model.UserView, kind model.TokenKind, ttl time.Duration) (SignedToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "user_id":   u.UserID,
        "email":     u.Email,
        "user_type": string(u.UserType),
        "kind":      string(kind),
        "jti":       uuid.NewString(),
        "exp":       exp.Unix(),
        "iat":       now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken checks the signature and expiry of a token and returns its
// claims. It performs no store lookups; revocation awareness is a separate
// blacklist check so the cheap local validation can short-circuit first.
func VerifyToken(secret, raw string) (model.TokenClaims, error) {
    tok, err := jwt.Parse(raw, keyFunc(secret))
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return model.TokenClaims{}, ErrTokenExpired
        }
        return model.TokenClaims{}, ErrInvalidToken
    }
    if !tok.Valid {
        return model.TokenClaims{}, ErrInvalidToken
    }
    return claimsFromToken(tok)
}

// DecodeToken validates the signature and structure but ignores expiry. An
// expired access token still identifies its holder, which logout relies on
// to blacklist it and end the session.
func DecodeToken(secret, raw string) (model.TokenClaims, error) {
    parser := jwt.NewParser(jwt.WithoutClaimsValidation())
    tok, err := parser.Parse(raw, keyFunc(secret))
    if err != nil || !tok.Valid {
        return model.TokenClaims{}, ErrInvalidToken
    }
    return claimsFromToken(tok)
}

// keyFunc returns the jwt.Keyfunc enforcing the HMAC signing method. Tokens
// signed with any other algorithm are rejected outright.
func keyFunc(secret string) jwt.Keyfunc {
    return func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }
}

// claimsFromToken maps jwt.MapClaims onto the typed TokenClaims structure.
// user_id and kind are mandatory; a token missing either is invalid.
func claimsFromToken(tok *jwt.Token) (model.TokenClaims, error) {
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return model.TokenClaims{}, ErrInvalidToken
    }
    userID, _ := mc["user_id"].(string)
    email, _ := mc["email"].(string)
    userType, _ := mc["user_type"].(string)
    kind, _ := mc["kind"].(string)
    if userID == "" || kind == "" {
        return model.TokenClaims{}, ErrInvalidToken
    }
    claims := model.TokenClaims{
        UserID:    userID,
        Email:     email,
        UserType:  model.UserType(userType),
        TokenKind: model.TokenKind(kind),
    }
    if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
        claims.IssuedAt = iat.Time
    }
    if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
        claims.ExpiresAt = exp.Time
    }
    return claims, nil
}

// HashToken returns the SHA-256 hash of a raw token as a hex string. Tokens
// are high-entropy, so a fast one-way hash is enough for stored lookups and
// keeps the hot path cheap.
func HashToken(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
