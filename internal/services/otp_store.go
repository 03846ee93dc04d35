package services

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// OTPStore keeps one pending sign-in code per email. Codes are bcrypt-hashed
// at rest and consumed on first successful check.
type OTPStore interface {
	Put(email, code string, ttl time.Duration) error
	Consume(email, code string) bool
}

type otpEntry struct {
	hash      []byte
	expiresAt time.Time
	attempts  int
}

const maxOTPAttempts = 5

type MemoryOTPStore struct {
	mu   sync.Mutex
	data map[string]otpEntry
	now  func() time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{data: make(map[string]otpEntry), now: time.Now}
}

func (s *MemoryOTPStore) Put(email, code string, ttl time.Duration) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[normalizeEmail(email)] = otpEntry{hash: hash, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryOTPStore) Consume(email, code string) bool {
	key := normalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return false
	}
	if s.now().After(e.expiresAt) {
		delete(s.data, key)
		return false
	}
	if bcrypt.CompareHashAndPassword(e.hash, []byte(code)) != nil {
		e.attempts++
		if e.attempts >= maxOTPAttempts {
			delete(s.data, key)
		} else {
			s.data[key] = e
		}
		return false
	}
	delete(s.data, key)
	return true
}

// Sweep drops expired codes.
func (s *MemoryOTPStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	now := s.now()
	for k, e := range s.data {
		if now.After(e.expiresAt) {
			delete(s.data, k)
			n++
		}
	}
	return n
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
