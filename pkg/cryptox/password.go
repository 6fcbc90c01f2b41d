package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names a supported one-way hashing scheme.
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

var (
	// ErrMismatch is returned when a plaintext does not match its encoded hash.
	ErrMismatch = errors.New("cryptox: hash does not match")
	// ErrMalformedHash is returned when an encoded hash cannot be parsed.
	ErrMalformedHash = errors.New("cryptox: malformed hash")
	// ErrUnsupportedAlgorithm is returned for unknown algorithm names.
	ErrUnsupportedAlgorithm = errors.New("cryptox: unsupported algorithm")
)

// Argon2Params are the tunable Argon2id cost parameters.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultArgon2Params follows the OWASP minimum recommendation for Argon2id.
var DefaultArgon2Params = Argon2Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// HasherConfig selects the algorithm and cost used for new hashes.
type HasherConfig struct {
	Algorithm  Algorithm
	Argon2     Argon2Params
	BcryptCost int
	Pepper     string
}

// Hasher hashes and verifies passwords and security answers. It is stateless
// and safe for concurrent use.
//
// New hashes use the configured algorithm. Verification dispatches on the
// encoded prefix so hashes written under a previous configuration keep
// verifying after the algorithm is switched.
type Hasher struct {
	cfg HasherConfig
}

// NewHasher validates cfg and fills unset cost parameters with defaults.
func NewHasher(cfg HasherConfig) (*Hasher, error) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmArgon2id
	}
	switch cfg.Algorithm {
	case AlgorithmArgon2id, AlgorithmBcrypt:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}

	d := DefaultArgon2Params
	if cfg.Argon2.Memory == 0 {
		cfg.Argon2.Memory = d.Memory
	}
	if cfg.Argon2.Iterations == 0 {
		cfg.Argon2.Iterations = d.Iterations
	}
	if cfg.Argon2.Parallelism == 0 {
		cfg.Argon2.Parallelism = d.Parallelism
	}
	if cfg.Argon2.KeyLength == 0 {
		cfg.Argon2.KeyLength = d.KeyLength
	}
	if cfg.Argon2.SaltLength == 0 {
		cfg.Argon2.SaltLength = d.SaltLength
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("cryptox: bcrypt cost %d out of range", cfg.BcryptCost)
	}

	return &Hasher{cfg: cfg}, nil
}

// Algorithm reports the algorithm used for new hashes.
func (h *Hasher) Algorithm() Algorithm { return h.cfg.Algorithm }

// HashPassword returns an encoded, salted hash of password.
func (h *Hasher) HashPassword(password string) (string, error) {
	return h.hash(password)
}

// VerifyPassword returns nil when password matches encoded, ErrMismatch when
// it does not, and ErrMalformedHash when encoded cannot be parsed.
func (h *Hasher) VerifyPassword(password, encoded string) error {
	return h.verify(password, encoded)
}

// HashAnswer hashes a security answer after normalising it.
func (h *Hasher) HashAnswer(answer string) (string, error) {
	return h.hash(NormalizeAnswer(answer))
}

// VerifyAnswer normalises answer and verifies it against encoded.
func (h *Hasher) VerifyAnswer(answer, encoded string) error {
	return h.verify(NormalizeAnswer(answer), encoded)
}

// NormalizeAnswer lower-cases and trims a security answer so that
// " Blue " and "blue" hash to the same secret.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// NeedsRehash reports whether encoded was produced with a different
// algorithm or weaker parameters than the current configuration.
func (h *Hasher) NeedsRehash(encoded string) bool {
	switch {
	case isArgon2id(encoded):
		if h.cfg.Algorithm != AlgorithmArgon2id {
			return true
		}
		p, _, _, err := parseArgon2id(encoded)
		if err != nil {
			return true
		}
		return p.Memory < h.cfg.Argon2.Memory ||
			p.Iterations < h.cfg.Argon2.Iterations ||
			p.Parallelism < h.cfg.Argon2.Parallelism
	case isBcrypt(encoded):
		if h.cfg.Algorithm != AlgorithmBcrypt {
			return true
		}
		cost, err := bcrypt.Cost([]byte(encoded))
		return err != nil || cost < h.cfg.BcryptCost
	default:
		return true
	}
}

func (h *Hasher) hash(secret string) (string, error) {
	if h.cfg.Algorithm == AlgorithmBcrypt {
		out, err := bcrypt.GenerateFromPassword(h.bcryptInput(secret), h.cfg.BcryptCost)
		if err != nil {
			return "", fmt.Errorf("cryptox: bcrypt: %w", err)
		}
		return string(out), nil
	}

	p := h.cfg.Argon2
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(secret+h.cfg.Pepper), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Hasher) verify(secret, encoded string) error {
	switch {
	case isArgon2id(encoded):
		p, salt, want, err := parseArgon2id(encoded)
		if err != nil {
			return err
		}
		got := argon2.IDKey([]byte(secret+h.cfg.Pepper), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
		if subtle.ConstantTimeCompare(got, want) == 1 {
			return nil
		}
		return ErrMismatch

	case isBcrypt(encoded):
		err := bcrypt.CompareHashAndPassword([]byte(encoded), h.bcryptInput(secret))
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return ErrMismatch
		default:
			return fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}

	default:
		return fmt.Errorf("%w: unknown prefix", ErrMalformedHash)
	}
}

// bcryptInput pre-hashes the peppered secret with HMAC-SHA256 so inputs never
// exceed bcrypt's 72 byte limit.
func (h *Hasher) bcryptInput(secret string) []byte {
	mac := hmac.New(sha256.New, []byte(h.cfg.Pepper))
	mac.Write([]byte(secret))
	return []byte(base64.RawStdEncoding.EncodeToString(mac.Sum(nil)))
}

func isArgon2id(encoded string) bool {
	return strings.HasPrefix(encoded, "$argon2id$")
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// parseArgon2id decodes $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func parseArgon2id(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, nil, nil, fmt.Errorf("%w: expected 6 parts", ErrMalformedHash)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: wrong version", ErrMalformedHash)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: parameters: %v", ErrMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	p.SaltLength = uint32(len(salt)) // #nosec G115
	p.KeyLength = uint32(len(key))   // #nosec G115

	return p, salt, key, nil
}
