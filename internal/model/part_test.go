package model

import (
	"reflect"
	"testing"
)

// Identifiers PostgreSQL reserves at the grammar level. A db tag naming one
// of these produces DDL and named queries that fail to parse.
var reservedIdentifiers = map[string]bool{
	"all": true, "and": true, "case": true, "cast": true, "check": true,
	"column": true, "constraint": true, "default": true, "desc": true,
	"distinct": true, "group": true, "limit": true, "not": true, "null": true,
	"offset": true, "order": true, "primary": true, "references": true,
	"row": true, "select": true, "table": true, "then": true, "to": true,
	"union": true, "user": true, "using": true, "when": true, "where": true,
}

func TestColumnNamesAreNotReservedWords(t *testing.T) {
	rows := []interface{}{
		BaseModel{}, Part{}, StockMovement{}, UsageRecord{},
		User{}, AuditEvent{}, Equipment{}, WorkOrder{}, PMCompletion{},
	}
	for _, row := range rows {
		rt := reflect.TypeOf(row)
		for i := 0; i < rt.NumField(); i++ {
			field := rt.Field(i)
			tag := field.Tag.Get("db")
			if reservedIdentifiers[tag] {
				t.Errorf("%s.%s maps to reserved column name %q", rt.Name(), field.Name, tag)
			}
		}
	}
}
