package specification

import "gorm.io/gorm"

// Specification applies a query constraint. Repositories compose them.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
