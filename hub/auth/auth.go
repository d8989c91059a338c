// Package auth provides shared-token authentication for hub connections.
package auth

import (
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Header carries the plaintext connection token on websocket upgrades.
const Header = "Gaia-Token"

// UserHeader names the connecting user on websocket upgrades.
const UserHeader = "Gaia-User"

// Signer signs and verifies connection tokens.
type Signer interface {
	Sign(pass string) (string, error)
	Verify(token, pass string) error
}

// Store persists signed tokens per user.
type Store interface {
	Save(user, token string) error
	Token(user string) (string, error)
}

// Tokens is an in-memory token store.
type Tokens struct {
	sync.RWMutex
	toks map[string]string
}

func (t *Tokens) Save(user, token string) error {
	t.Lock()
	defer t.Unlock()
	if t.toks == nil {
		t.toks = make(map[string]string)
	}
	t.toks[user] = token
	return nil
}

func (t *Tokens) Token(user string) (string, error) {
	t.RLock()
	defer t.RUnlock()
	token, ok := t.toks[user]
	if !ok {
		return "", errors.Errorf("auth: no token found for user %s", user)
	}
	return token, nil
}

// Bcrypt signs tokens with bcrypt at the given cost.
type Bcrypt struct {
	Cost int
}

func (v *Bcrypt) Sign(pass string) (string, error) {
	token, err := bcrypt.GenerateFromPassword([]byte(pass), v.Cost)
	if err != nil {
		return "", err
	}
	return string(token), nil
}

func (v *Bcrypt) Verify(token, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(token), []byte(pass))
}

// Check returns an upgrade check validating the token header against the
// signed token, for use with the wshub acceptor options.
func Check(s Signer, signed string) func(*http.Request) error {
	return func(r *http.Request) error {
		return s.Verify(signed, r.Header.Get(Header))
	}
}

// CheckUsers returns an upgrade check resolving the named user's signed
// token from the store and validating the token header against it.
func CheckUsers(s Signer, st Store) func(*http.Request) error {
	return func(r *http.Request) error {
		signed, err := st.Token(r.Header.Get(UserHeader))
		if err != nil {
			return err
		}
		return s.Verify(signed, r.Header.Get(Header))
	}
}
