package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	seatTokenExpiry  = 24 * time.Hour
	bcryptCost       = 10
	minPassLen       = 4
	joinRateWindow   = 60 * time.Second
	maxJoinAttempts  = 10
	secretSettingKey = "jwt_secret"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrBadPassphrase   = errors.New("wrong passphrase")
	ErrTooManyAttempts = errors.New("too many attempts, try again later")
)

// Auth issues seat tokens and checks private battle passphrases
type Auth struct {
	secret []byte

	// Rate limiting for passphrase attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates a new Auth handler. db may be nil, in which case the
// signing secret only lives for the process lifetime.
func NewAuth(db *DB) *Auth {
	return &Auth{
		secret:  loadOrCreateSecret(db),
		rateMap: make(map[string]*rateEntry),
	}
}

// loadOrCreateSecret loads the JWT secret from the database, or generates
// and persists a new one if none exists.
func loadOrCreateSecret(db *DB) []byte {
	if db != nil {
		if h := db.GetSetting(secretSettingKey); h != "" {
			if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
				return b
			}
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if db != nil {
		if err := db.SetSetting(secretSettingKey, hex.EncodeToString(secret)); err != nil {
			Logger.Warn().Err(err).Msg("could not persist JWT secret")
		}
	}
	return secret
}

// IssueSeatToken signs a token that lets its bearer control a ship
func (a *Auth) IssueSeatToken(battleID string, ship int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"bid":  battleID,
		"ship": ship,
		"exp":  now.Add(seatTokenExpiry).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateSeatToken returns the battle id and ship index of a seat token
func (a *Auth) ValidateSeatToken(tokenStr string) (string, int, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", 0, ErrInvalidToken
	}
	bid, ok := claims["bid"].(string)
	if !ok || bid == "" {
		return "", 0, fmt.Errorf("%w: missing battle", ErrInvalidToken)
	}
	ship, ok := claims["ship"].(float64)
	if !ok {
		return "", 0, fmt.Errorf("%w: missing ship", ErrInvalidToken)
	}
	return bid, int(ship), nil
}

// HashPassphrase returns a bcrypt hash for a private battle
func HashPassphrase(pass string) (string, error) {
	if len(pass) < minPassLen {
		return "", fmt.Errorf("passphrase must be at least %d characters", minPassLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassphrase verifies pass against hash, limiting attempts per ip
func (a *Auth) CheckPassphrase(hash, pass, ip string) error {
	if !a.checkRate(ip) {
		return ErrTooManyAttempts
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)); err != nil {
		return ErrBadPassphrase
	}
	return nil
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(joinRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxJoinAttempts
}
