package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-promptforge/internal/provider"
)

// CredentialInfo describes a stored credential without its secret.
type CredentialInfo struct {
	Provider  provider.Name
	UpdatedAt time.Time
}

// aad binds a sealed value to its row so it cannot be moved to another one.
func aad(user string, p provider.Name) string {
	return user + "|" + p.String()
}

// SaveCredential seals and upserts the API key for (user, p).
// Saving over a removed credential reactivates it.
func (s *Store) SaveCredential(ctx context.Context, user string, p provider.Name, apiKey string) error {
	if err := validUser(user); err != nil {
		return err
	}
	if p.IsZero() {
		return fmt.Errorf("save credential: %w", provider.ErrInvalidName)
	}
	if apiKey == "" {
		return fmt.Errorf("save credential: empty key")
	}
	if s.sealer == nil {
		return ErrSealerMissing
	}

	sealed, err := s.sealer.Seal(apiKey, aad(user, p))
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO credentials(user_name, provider, sealed, active, updated_at)
VALUES(?,?,?,1,?)
ON CONFLICT(user_name, provider) DO UPDATE SET sealed=excluded.sealed, active=1, updated_at=excluded.updated_at;
`, user, p.String(), sealed, s.timestamp())
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Credential returns the decrypted active credential for (user, p).
// Returns ErrNotFound when none is stored or it was removed.
func (s *Store) Credential(ctx context.Context, user string, p provider.Name) (provider.Credential, error) {
	if s.sealer == nil {
		return provider.Credential{}, ErrSealerMissing
	}

	var sealed string
	err := s.db.QueryRowContext(ctx,
		`SELECT sealed FROM credentials WHERE user_name=? AND provider=? AND active=1`,
		user, p.String()).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return provider.Credential{}, fmt.Errorf("%s credential: %w", p, ErrNotFound)
	}
	if err != nil {
		return provider.Credential{}, fmt.Errorf("load credential: %w", err)
	}

	key, err := s.sealer.Open(sealed, aad(user, p))
	if err != nil {
		return provider.Credential{}, fmt.Errorf("open %s credential: %w", p, err)
	}
	return provider.Credential{Provider: p, Secret: key}, nil
}

// RemoveCredential marks the credential inactive.
// Returns ErrNotFound when there is no active credential to remove.
func (s *Store) RemoveCredential(ctx context.Context, user string, p provider.Name) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET active=0, updated_at=? WHERE user_name=? AND provider=? AND active=1`,
		s.timestamp(), user, p.String())
	if err != nil {
		return fmt.Errorf("remove credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove credential: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s credential: %w", p, ErrNotFound)
	}
	return nil
}

// ListCredentials returns the active credentials of user, ordered by provider.
func (s *Store) ListCredentials(ctx context.Context, user string) ([]CredentialInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, updated_at FROM credentials WHERE user_name=? AND active=1 ORDER BY provider`, user)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var out []CredentialInfo
	for rows.Next() {
		var name string
		var updated int64
		if err := rows.Scan(&name, &updated); err != nil {
			return nil, fmt.Errorf("list credentials: %w", err)
		}
		p, err := provider.ParseName(name)
		if err != nil {
			// Rows written by a newer build; skip rather than fail the listing.
			continue
		}
		out = append(out, CredentialInfo{Provider: p, UpdatedAt: fromMillis(updated)})
	}
	return out, rows.Err()
}
