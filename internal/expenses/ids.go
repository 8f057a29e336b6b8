package expenses

import "github.com/google/uuid"

// IDGenerator returns a new expense id. It only needs to be unique with high
// probability; the repository retries on a collision with an existing id.
type IDGenerator func() string

// NewID returns a time-ordered UUIDv7, falling back to a random UUIDv4 if the
// v7 generator fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
