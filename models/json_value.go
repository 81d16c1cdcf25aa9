package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONValue holds an arbitrary JSON document. SQLite stores it as TEXT, since a
// JSON-typed column has numeric affinity and turns scalars like 1 into integers;
// PostgreSQL stores it as JSONB.
type JSONValue []byte

func (j JSONValue) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan accepts text as well as the numeric and boolean values older SQLite
// rows may hold.
func (j *JSONValue) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSONValue(nil), v...)
	case string:
		*j = JSONValue(v)
	case int64:
		*j = JSONValue(strconv.FormatInt(v, 10))
	case float64:
		*j = JSONValue(strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		*j = JSONValue(strconv.FormatBool(v))
	default:
		return fmt.Errorf("unsupported JSON column value of type %T", value)
	}
	return nil
}

func (j JSONValue) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONValue) UnmarshalJSON(data []byte) error {
	*j = append(JSONValue(nil), data...)
	return nil
}

func (JSONValue) GormDataType() string {
	return "json"
}

func (JSONValue) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	default:
		return "TEXT"
	}
}
