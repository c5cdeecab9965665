// Space Food - Self-Hosted Meal Planning Application
// Copyright (C) 2025 RGH Software
// Licensed under AGPL-3.0

package mealplan

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid"
)

// IDGenerator produces a new entity id. The default generates ULIDs
// (spec 3: "id (ULID)"); tests inject a deterministic stub.
type IDGenerator func() string

// NewULID returns a fresh ULID string, sortable by millisecond timestamp;
// two ids minted in the same millisecond are not ordered by creation.
func NewULID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
