package model

import "github.com/google/uuid"

// ensureID assigns a fresh UUID before insert. The migrations also declare
// gen_random_uuid() defaults, but generating ids in Go keeps the models usable
// on stores without that function (sqlite in tests).
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
