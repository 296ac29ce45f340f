package recordstore

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/localnerve/jurados-presence/internal/models"
)

// Field kinds as stored in record_fields.field_kind
const (
	kindString    = "string"
	kindInt       = "int"
	kindFloat     = "float"
	kindBool      = "bool"
	kindReference = "reference"
	kindAsset     = "asset"
	kindGeoPoint  = "geo"
)

// maxMatchKeyLength is the size of record_fields.match_key. Longer strings are
// stored without a key and cannot be used in equality predicates.
const maxMatchKeyLength = 512

// matchKey renders a value in the form equality predicates compare against.
// References match on their target id.
func matchKey(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case Reference:
		return v.RecordID, nil
	case *Reference:
		return v.RecordID, nil
	}
	return "", fmt.Errorf("unsupported predicate value %T", value)
}

func encodeField(recordID, name string, value any) (models.RecordField, error) {
	field := models.RecordField{RecordID: recordID, FieldName: name}

	switch v := value.(type) {
	case string:
		field.FieldKind = kindString
	case int64:
		field.FieldKind = kindInt
	case float64:
		field.FieldKind = kindFloat
	case bool:
		field.FieldKind = kindBool
	case Reference:
		field.FieldKind = kindReference
		field.RefAction = v.Action
	case Asset:
		field.FieldKind = kindAsset
	case GeoPoint:
		field.FieldKind = kindGeoPoint
	default:
		return field, fmt.Errorf("field %s: unsupported value type %T", name, value)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return field, fmt.Errorf("field %s: %w", name, err)
	}
	field.FieldValue = models.NewJSON(raw)

	if field.FieldKind != kindAsset && field.FieldKind != kindGeoPoint {
		key, err := matchKey(value)
		if err != nil {
			return field, err
		}
		if len(key) <= maxMatchKeyLength {
			field.MatchKey = key
		}
	}

	return field, nil
}

func decodeField(field models.RecordField) (any, error) {
	raw := field.FieldValue.Bytes()

	var (
		value any
		err   error
	)
	switch field.FieldKind {
	case kindString:
		var v string
		err = json.Unmarshal(raw, &v)
		value = v
	case kindInt:
		var v int64
		err = json.Unmarshal(raw, &v)
		value = v
	case kindFloat:
		var v float64
		err = json.Unmarshal(raw, &v)
		value = v
	case kindBool:
		var v bool
		err = json.Unmarshal(raw, &v)
		value = v
	case kindReference:
		var v Reference
		err = json.Unmarshal(raw, &v)
		if err == nil && v.RecordID == "" {
			err = fmt.Errorf("empty reference")
		}
		value = v
	case kindAsset:
		var v Asset
		err = json.Unmarshal(raw, &v)
		value = v
	case kindGeoPoint:
		var v GeoPoint
		err = json.Unmarshal(raw, &v)
		value = v
	default:
		err = fmt.Errorf("unknown kind %q", field.FieldKind)
	}
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", field.FieldName, err)
	}
	return value, nil
}
