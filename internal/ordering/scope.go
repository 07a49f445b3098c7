package ordering

import (
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

// Scope selects the records of a table that share one display order sequence.
type Scope struct {
	column string
	value  any
}

// Global is the scope of tables ordered as a single list.
func Global() Scope {
	return Scope{}
}

// By scopes a table by a foreign key column. A nil value selects rows where the column IS NULL.
func By(column string, value any) Scope {
	return Scope{column: column, value: normalizeValue(value)}
}

// IsGlobal reports whether the scope covers the whole table.
func (s Scope) IsGlobal() bool {
	return s.column == ""
}

// Column returns the filter column, or "" for the global scope.
func (s Scope) Column() string {
	return s.column
}

// Value returns the filter value; nil means IS NULL.
func (s Scope) Value() any {
	return s.value
}

// Apply narrows db to the rows of the scope.
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	if s.IsGlobal() {
		return db
	}
	if s.value == nil {
		return db.Where(fmt.Sprintf("%s IS NULL", s.column))
	}
	return db.Where(fmt.Sprintf("%s = ?", s.column), s.value)
}

// String renders the scope for lock keys and log fields.
func (s Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	if s.value == nil {
		return s.column + "=null"
	}
	return fmt.Sprintf("%s=%v", s.column, s.value)
}

// normalizeValue dereferences pointers so *uuid.UUID(nil) behaves like nil.
func normalizeValue(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Pointer {
		return value
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}
