package auth

import (
	"crypto/subtle"
	"time"

	"itemfinder/internal"
	"itemfinder/internal/config"
	"itemfinder/internal/storage"
)

// Verifier checks the administrator credential pair. Kept as its own type so
// the fixed-pair check can be swapped for a real backend without touching
// callers.
type Verifier struct {
	id   string
	pass string
}

func NewVerifier(cfg config.Config) *Verifier {
	return &Verifier{id: cfg.AdminID, pass: cfg.AdminPass}
}

// Verify compares both values in constant time and reports a single generic
// error on mismatch, with no wrong-id vs wrong-password distinction.
func (v *Verifier) Verify(id, pass string) error {
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(v.id))
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(v.pass))
	if idOK&passOK != 1 {
		return internal.ErrInvalidCredentials
	}
	return nil
}

// Service grants and revokes administrator sessions against the store.
type Service struct {
	db       *storage.DB
	verifier *Verifier
	ttl      time.Duration
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{
		db:       db,
		verifier: NewVerifier(cfg),
		ttl:      time.Duration(cfg.AuthTTLDays) * 24 * time.Hour,
	}
}

func (s *Service) Login(id, pass string) error {
	if err := s.verifier.Verify(id, pass); err != nil {
		return err
	}
	return s.db.GrantAuth(time.Now().Add(s.ttl))
}

func (s *Service) Logout() error {
	return s.db.RevokeAuth()
}

func (s *Service) Valid() bool {
	ok, err := s.db.GetAuthValid(time.Now())
	return err == nil && ok
}
