package docstore

import (
	"fmt"
	"regexp"
	"strings"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
)

var nameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

const maxIDLength = 128

// ValidateName checks collection and field names.
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return commonerrors.ErrInvalidDocumentPath.WithCause(fmt.Errorf("invalid name %q", name))
	}
	return nil
}

func ValidateID(id string) error {
	if id == "" || len(id) > maxIDLength || strings.ContainsAny(id, "/?#") {
		return commonerrors.ErrInvalidDocumentPath.WithCause(fmt.Errorf("invalid id %q", id))
	}
	return nil
}

func ValidatePath(collection, id string) error {
	if err := ValidateName(collection); err != nil {
		return err
	}
	return ValidateID(id)
}
