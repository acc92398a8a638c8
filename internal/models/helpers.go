package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateRedemptionID() string {
	return fmt.Sprintf("rdm_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateSessionID() string {
	return uuid.New().String()
}

// GenerateIdentityKey mints the opaque anonymous identity a login binds to.
func GenerateIdentityKey() string {
	return uuid.New().String()
}
