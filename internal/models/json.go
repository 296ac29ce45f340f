package models

import (
	"database/sql/driver"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON so field values map to a
// column type every supported dialect accepts
type JSON struct {
	datatypes.JSON
}

// NewJSON wraps an encoded field value
func NewJSON(raw []byte) JSON {
	return JSON{JSON: datatypes.JSON(raw)}
}

// Bytes returns the raw encoded value
func (j JSON) Bytes() []byte {
	return []byte(j.JSON)
}

// Value promotes the embedded JSON's Value method
func (j JSON) Value() (driver.Value, error) {
	return j.JSON.Value()
}

// Scan reads a stored value. Columns with numeric affinity hand back bare
// numbers, which are re-encoded as JSON text.
func (j *JSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		j.JSON = datatypes.JSON(strconv.FormatInt(v, 10))
		return nil
	case float64:
		j.JSON = datatypes.JSON(strconv.FormatFloat(v, 'g', -1, 64))
		return nil
	case bool:
		j.JSON = datatypes.JSON(strconv.FormatBool(v))
		return nil
	}
	return j.JSON.Scan(value)
}

// GormDBDataType picks the column type per driver. MSSQL has no json type.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	}
	// sqlite gives a JSON column numeric affinity, so scalars would not scan back
	return "TEXT"
}
