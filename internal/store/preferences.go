package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alnah/go-promptforge/internal/provider"
)

// Preferences are a user's saved defaults. Zero fields mean "not set".
type Preferences struct {
	Provider    provider.Name
	Model       string
	FrameworkID string
}

// Preferences returns the saved preferences of user, or the zero value.
func (s *Store) Preferences(ctx context.Context, user string) (Preferences, error) {
	var name, model, fw string
	err := s.db.QueryRowContext(ctx,
		`SELECT provider, model, framework_id FROM preferences WHERE user_name=?`, user).
		Scan(&name, &model, &fw)
	if errors.Is(err, sql.ErrNoRows) {
		return Preferences{}, nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	prefs := Preferences{Model: model, FrameworkID: fw}
	if name != "" {
		p, err := provider.ParseName(name)
		if err != nil {
			return Preferences{}, fmt.Errorf("load preferences: %w", err)
		}
		prefs.Provider = p
	}
	return prefs, nil
}

// SavePreferences replaces the preferences of user.
func (s *Store) SavePreferences(ctx context.Context, user string, prefs Preferences) error {
	if err := validUser(user); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO preferences(user_name, provider, model, framework_id, updated_at)
VALUES(?,?,?,?,?)
ON CONFLICT(user_name) DO UPDATE SET provider=excluded.provider, model=excluded.model,
  framework_id=excluded.framework_id, updated_at=excluded.updated_at;
`, user, prefs.Provider.String(), prefs.Model, prefs.FrameworkID, s.timestamp())
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
