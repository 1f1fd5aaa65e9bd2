package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/models"
)

const (
	DefaultAvatarURL = "https://cdn.officeledger.local/avatars/default.jpg"
	maskedPassword   = "***"
)

func (l *Ledger) AddUser(ctx context.Context, in NewUser) (models.User, error) {
	if err := in.Validate(); err != nil {
		return models.User{}, err
	}
	hash, err := l.hasher(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var user models.User
	err = l.mutate(ctx, "user.add", func(tx *txn) error {
		if tx.usernameTaken(in.Username, "") {
			return fmt.Errorf("username %q: %w", in.Username, common.ErrAlreadyExists)
		}
		user = models.User{
			ID:        tx.newID("usr"),
			Name:      in.Name,
			Username:  in.Username,
			Password:  hash,
			Role:      in.Role,
			Email:     in.Email,
			AvatarURL: in.AvatarURL,
			CreatedAt: tx.now,
		}
		if user.AvatarURL == "" {
			user.AvatarURL = DefaultAvatarURL
		}
		tx.Users = append(tx.Users, user)
		tx.audit("user.add", "", user.ID, map[string]any{
			"username": user.Username,
			"role":     string(user.Role),
		})
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateUser merges patch into the user with the given id. An unknown id
// leaves the users untouched but is still audited.
func (l *Ledger) UpdateUser(ctx context.Context, id string, patch UserPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	var hash string
	if patch.Password != nil {
		h, err := l.hasher(*patch.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		hash = h
	}

	return l.mutate(ctx, "user.update", func(tx *txn) error {
		if i := tx.userIndex(id); i >= 0 {
			if patch.Username != nil && tx.usernameTaken(*patch.Username, id) {
				return fmt.Errorf("username %q: %w", *patch.Username, common.ErrAlreadyExists)
			}
			u := &tx.Users[i]
			setIf(&u.Name, patch.Name)
			setIf(&u.Username, patch.Username)
			setIf(&u.Role, patch.Role)
			setIf(&u.Email, patch.Email)
			setIf(&u.AvatarURL, patch.AvatarURL)
			if patch.Password != nil {
				u.Password = hash
			}
		}

		payload := auditPayload(patch)
		if _, ok := payload["password"]; ok {
			payload["password"] = maskedPassword
		}
		tx.audit("user.update", "", id, payload)
		return nil
	})
}

// DeleteUser removes the user. Loans and requests keep referring to the id.
func (l *Ledger) DeleteUser(ctx context.Context, id string) error {
	return l.mutate(ctx, "user.delete", func(tx *txn) error {
		tx.Users = slices.DeleteFunc(tx.Users, func(u models.User) bool { return u.ID == id })
		tx.audit("user.delete", "", id, nil)
		return nil
	})
}
