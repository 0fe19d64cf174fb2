package database

import (
	"fmt"

	"gorm.io/gorm"
)

// MonthKeyLayout is the Go layout matching MonthBucket's SQL output.
const MonthKeyLayout = "2006-01"

// MonthBucket returns a SQL expression truncating a timestamp column to a
// "YYYY-MM" string in UTC for the connected dialect.
func MonthBucket(db *gorm.DB, column string) string {
	switch db.Dialector.Name() {
	case "postgres":
		return fmt.Sprintf("to_char(%s AT TIME ZONE 'UTC', 'YYYY-MM')", column)
	default:
		return fmt.Sprintf("strftime('%%Y-%%m', %s)", column)
	}
}
