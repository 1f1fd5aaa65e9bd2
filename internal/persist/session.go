package persist

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/logging"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/dmitrijs2005/officeledger/internal/storage"
)

// Session is the persisted login. User never carries a password hash.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type SessionStore struct {
	repo   storage.Repository
	logger logging.Logger
}

func NewSessionStore(repo storage.Repository, logger logging.Logger) *SessionStore {
	return &SessionStore{repo: repo, logger: logger}
}

// Load returns the stored session, or nil when there is none. An unreadable
// document is dropped.
func (s *SessionStore) Load(ctx context.Context) (*Session, error) {
	data, err := s.repo.Get(ctx, SessionKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var sess Session
	if _, err := decode(data, &sess, nil); err != nil {
		if errors.Is(err, common.ErrCorruptDocument) {
			s.logger.Warn(ctx, "session document unusable, discarding", "err", err)
			return nil, s.Clear(ctx)
		}
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	sess.User.Password = ""
	data, err := encode(sess)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, SessionKey, data)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, SessionKey)
}
