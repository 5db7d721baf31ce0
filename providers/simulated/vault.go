package simulated

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/alovak/paygate/gateway"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
)

// Vault stores card numbers behind opaque tokens, the way the simulated
// provider's real counterpart would hold them server-side. The default
// backend is in-memory; a DSN switches it to Postgres so applications can
// exercise stored references across process restarts.
type Vault struct {
	mu     sync.RWMutex
	tokens map[string]string

	db *sql.DB
}

// NewVault builds a vault. An empty dsn selects the in-memory backend.
func NewVault(dsn string) (*Vault, error) {
	if dsn == "" {
		return &Vault{tokens: make(map[string]string)}, nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &gateway.ConfigurationError{Provider: providerName, Option: "vault_dsn", Reason: err.Error()}
	}
	return &Vault{db: db}, nil
}

// Put stores the card and returns its token.
func (v *Vault) Put(ctx context.Context, card gateway.CreditCard) (string, error) {
	token := "tok_" + uuid.New().String()

	if v.db == nil {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.tokens[token] = card.NormalizedNumber()
		return token, nil
	}

	_, err := v.db.ExecContext(ctx, `
        INSERT INTO simulated_tokens(token, card_number, expiry_mmyy)
        VALUES ($1, $2, $3)
    `, token, card.NormalizedNumber(), card.ExpiryMMYY())
	if isUniqueViolation(err) {
		// uuid collision is not a thing in practice; retry once anyway
		return v.Put(ctx, card)
	}
	if err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}
	return token, nil
}

// Number resolves a token to its card number; "" when unknown.
func (v *Vault) Number(ctx context.Context, token string) (string, error) {
	if v.db == nil {
		v.mu.RLock()
		defer v.mu.RUnlock()
		return v.tokens[token], nil
	}

	var number string
	err := v.db.QueryRowContext(ctx, `
        SELECT card_number FROM simulated_tokens WHERE token = $1
    `, token).Scan(&number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("finding token: %w", err)
	}
	return number, nil
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) && pe.Code == "23505" {
		return true
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		return true
	}
	return false
}
