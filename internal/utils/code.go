package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewRedemptionCode returns a short uppercase code the barber types in
// at the counter when a customer redeems a prize.  Derived from a v4
// UUID; 12 hex characters keeps collisions implausible at shop scale
// while staying readable over the phone.
func NewRedemptionCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:12])
}
