package common

import (
	"github.com/google/uuid"
)

// GenUUID generates a random UUID string.
func GenUUID() string {
	return uuid.New().String()
}
