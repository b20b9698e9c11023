package schemagen

import (
	"fmt"
	"strings"
)

// mapPrimitiveType maps a domain-level attribute type name and size to a
// PostgreSQL column type, following the same primitive-to-SQL mapping
// table as internal/orm/codegen/type_mapper.go's MapType. size is the
// attribute's declared size (spec.md §3/§6); 0 means unspecified.
func mapPrimitiveType(t string, size int) string {
	switch strings.ToLower(t) {
	case "string", "text":
		return "TEXT"
	case "varchar":
		if size <= 0 {
			size = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", size)
	case "char":
		if size <= 0 {
			size = 1
		}
		return fmt.Sprintf("CHAR(%d)", size)
	case "int", "integer":
		return "INTEGER"
	case "bigint", "long":
		return "BIGINT"
	case "float", "double":
		return "DOUBLE PRECISION"
	case "decimal", "numeric":
		if size > 0 {
			return fmt.Sprintf("NUMERIC(%d)", size)
		}
		return "NUMERIC"
	case "bool", "boolean":
		return "BOOLEAN"
	case "timestamp", "datetime":
		return "TIMESTAMP"
	case "date":
		return "DATE"
	case "time":
		return "TIME"
	case "uuid":
		return "UUID"
	case "json", "jsonb":
		return "JSONB"
	default:
		return "TEXT"
	}
}
