package service

import (
	"errors"

	"memoryvault/core"

	"gorm.io/gorm"
)

// ErrIDRequired is returned by update and delete operations called without an id.
var ErrIDRequired = &core.ValidationError{Field: "id", Message: "ID required"}

// ErrKeyRequired is returned by setting writes without a key.
var ErrKeyRequired = &core.ValidationError{Field: "key", Message: "Key required"}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
