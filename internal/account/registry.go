package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidDUI         = errors.New("DUI must match ########-#")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var (
	duiPattern   = regexp.MustCompile(`^\d{8}-\d$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// expectedAccounts sizes the bloom filter; a single demo session never
// approaches this, the headroom just keeps the false-positive rate low.
const expectedAccounts = 10000

// Account is a registered storefront customer.
type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	DUI   string `json:"dui"`
	Email string `json:"email"`

	passwordHash [sha256.Size]byte
}

// Registry holds registered accounts for the session. A bloom filter
// fronts the email set so the common "is this email taken" probe is a
// cheap membership test; positives are confirmed against the map, which
// stays authoritative.
type Registry struct {
	mu      sync.RWMutex
	seen    *bloom.BloomFilter
	byEmail map[string]Account
}

// NewRegistry creates an empty account registry.
func NewRegistry() *Registry {
	return &Registry{
		seen:    bloom.NewWithEstimates(expectedAccounts, 0.01),
		byEmail: make(map[string]Account),
	}
}

// Register validates and stores a new account. Email comparison is
// case-insensitive; the stored account keeps the address as given.
func (r *Registry) Register(name, dui, email, password string) (Account, error) {
	if strings.TrimSpace(name) == "" {
		return Account{}, ErrNameRequired
	}
	if !duiPattern.MatchString(dui) {
		return Account{}, ErrInvalidDUI
	}
	if !emailPattern.MatchString(email) {
		return Account{}, ErrInvalidEmail
	}
	if password == "" {
		return Account{}, ErrPasswordRequired
	}

	key := strings.ToLower(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen.TestString(key) {
		// Bloom filters report false positives; the map decides.
		if _, exists := r.byEmail[key]; exists {
			return Account{}, ErrEmailTaken
		}
	}

	acct := Account{
		ID:           uuid.New().String(),
		Name:         name,
		DUI:          dui,
		Email:        email,
		passwordHash: sha256.Sum256([]byte(password)),
	}
	r.byEmail[key] = acct
	r.seen.AddString(key)

	return acct, nil
}

// Login checks credentials. The error never reveals whether the email or
// the password was wrong.
func (r *Registry) Login(email, password string) (Account, error) {
	key := strings.ToLower(email)

	r.mu.RLock()
	acct, ok := r.byEmail[key]
	r.mu.RUnlock()

	if !ok {
		return Account{}, ErrInvalidCredentials
	}

	hash := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(hash[:], acct.passwordHash[:]) != 1 {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// Len returns the number of registered accounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}
