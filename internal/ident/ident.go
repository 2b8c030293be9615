// Package ident issues list identifiers.
package ident

import (
	"github.com/google/uuid"

	"github.com/Makepad-fr/tada/internal/model"
)

// Generator produces list ids. Ids must not be derivable from earlier ones.
type Generator interface {
	Next() model.ListID
}

// UUID issues random (v4) UUIDs.
type UUID struct{}

// Next returns a fresh UUID v4 token.
func (UUID) Next() model.ListID {
	return model.ListID(uuid.NewString())
}

// Func adapts a plain function to Generator.
type Func func() model.ListID

func (f Func) Next() model.ListID { return f() }

// Default is the generator used when none is configured.
var Default Generator = UUID{}
