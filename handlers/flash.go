package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FlashCookie is the name of the cookie carrying pending flash messages.
const FlashCookie = "abassist_flash"

const flashTTL = 5 * time.Minute

// Flash categories.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "error"
	FlashDanger  = "danger"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type flashClaims struct {
	Flashes []Flash `json:"flashes"`
	jwt.RegisteredClaims
}

// Flasher stores flash messages in a signed cookie so they survive the
// redirect that follows a failed action.
type Flasher struct {
	secret []byte
	now    func() time.Time
}

// NewFlasher returns a Flasher signing with secret.
func NewFlasher(secret string) *Flasher {
	return &Flasher{secret: []byte(secret), now: time.Now}
}

// Add queues a message, keeping the ones already pending on r.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, category, message string) {
	flashes := append(f.read(r), Flash{Category: category, Message: message})

	now := f.now()
	claims := flashClaims{
		Flashes: flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending messages and clears the cookie. Tampered or
// expired cookies yield no messages.
func (f *Flasher) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := f.read(r)
	if _, err := r.Cookie(FlashCookie); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return flashes
}

func (f *Flasher) read(r *http.Request) []Flash {
	c, err := r.Cookie(FlashCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	claims := &flashClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims,
		func(*jwt.Token) (any, error) { return f.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(f.now),
	)
	if err != nil {
		return nil
	}
	return claims.Flashes
}
