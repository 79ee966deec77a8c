package mapper

import (
	"time"

	"github.com/AlibekovAA/notes/internal/docstore"
	userdomain "github.com/AlibekovAA/notes/internal/user/domain"
)

const (
	fieldID          = "id"
	fieldEmail       = "email"
	fieldDisplayName = "displayName"
	fieldCreatedAt   = "createdAt"
)

// ProfileFields is the mirrored profile document. createdAt is left to the
// store's clock.
func ProfileFields(id, email, displayName string) docstore.Fields {
	return docstore.Fields{
		fieldID:          id,
		fieldEmail:       email,
		fieldDisplayName: displayName,
		fieldCreatedAt:   docstore.ServerTimestamp(),
	}
}

// UserFromProfile combines the provider identity with the stored profile.
// id and email always come from the provider.
func UserFromProfile(id, email string, profile docstore.Fields) userdomain.User {
	displayName, _ := docstore.StringField(profile, fieldDisplayName)
	return userdomain.User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   docstore.TimeField(profile, fieldCreatedAt),
	}
}

func NewUser(id, email, displayName string, createdAt time.Time) userdomain.User {
	return userdomain.User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   &createdAt,
	}
}
