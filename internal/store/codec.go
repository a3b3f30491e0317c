package store

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/keikaku/internal/domain"
)

// EncodeUser renders the aggregate snapshot stored by SQL backends.
func EncodeUser(user *domain.User) ([]byte, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: nil user", ErrInvalidEntity)
	}
	doc, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("%w: encode user %s: %w", ErrInvalidEntity, user.ID(), err)
	}
	return doc, nil
}

// DecodeUser rebuilds a user from a stored snapshot. The snapshot is
// revalidated, so a corrupted row surfaces as ErrInvalidEntity.
func DecodeUser(doc []byte) (*domain.User, error) {
	var user domain.User
	if err := json.Unmarshal(doc, &user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	return &user, nil
}
