// Package models holds the kproduct entities and their gorm mappings.
//
// Identities are optional (*int64): nil until the row is persisted. Two
// entities are equal only when both ids are non-nil and match.
package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers (19.99), not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Entity is implemented by every persisted model.
type Entity interface {
	GetID() *int64
	TableName() string
}

func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

func idOrNil(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
