package recordstore

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Reference actions
const (
	ActionNone    = "none"
	ActionCascade = "cascade"
)

// Reference points at another record. A cascade reference deletes its
// target when the record holding it is deleted.
type Reference struct {
	RecordID string `json:"recordId"`
	Action   string `json:"action"`
}

// NewReference builds a reference with the given action
func NewReference(recordID, action string) Reference {
	if action == "" {
		action = ActionNone
	}
	return Reference{RecordID: recordID, Action: action}
}

// Asset names a blob held in asset storage
type Asset struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// GeoPoint is a latitude/longitude pair
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record is a typed document with named fields.
// Field values are string, int64, float64, bool, Reference, Asset or GeoPoint.
type Record struct {
	ID        string
	Type      string
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time

	fields map[string]any
}

// NewRecord creates an unsaved record with a generated id
func NewRecord(recordType string) *Record {
	return NewRecordWithID(recordType, uuid.NewString())
}

// NewRecordWithID creates an unsaved record with a caller-chosen id
func NewRecordWithID(recordType, id string) *Record {
	return &Record{ID: id, Type: recordType, fields: make(map[string]any)}
}

// Set assigns a field. A nil value removes the field on save.
func (r *Record) Set(name string, value any) {
	if r.fields == nil {
		r.fields = make(map[string]any)
	}
	if value == nil {
		delete(r.fields, name)
		return
	}
	switch v := value.(type) {
	case int:
		value = int64(v)
	case int32:
		value = int64(v)
	case float32:
		value = float64(v)
	case *Reference:
		if v == nil {
			delete(r.fields, name)
			return
		}
		value = *v
	case *Asset:
		if v == nil {
			delete(r.fields, name)
			return
		}
		value = *v
	}
	r.fields[name] = value
}

// Get returns the raw field value
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Has reports whether the field is set
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// FieldNames returns the set field names in sorted order
func (r *Record) FieldNames() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Record) GetString(name string) (string, bool) {
	v, ok := r.fields[name].(string)
	return v, ok
}

func (r *Record) GetInt(name string) (int64, bool) {
	v, ok := r.fields[name].(int64)
	return v, ok
}

func (r *Record) GetFloat(name string) (float64, bool) {
	switch v := r.fields[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (r *Record) GetBool(name string) (bool, bool) {
	v, ok := r.fields[name].(bool)
	return v, ok
}

// GetReference returns the reference field, or nil when unset
func (r *Record) GetReference(name string) *Reference {
	v, ok := r.fields[name].(Reference)
	if !ok {
		return nil
	}
	return &v
}

// GetAsset returns the asset field, or nil when unset
func (r *Record) GetAsset(name string) *Asset {
	v, ok := r.fields[name].(Asset)
	if !ok {
		return nil
	}
	return &v
}

func (r *Record) GetGeoPoint(name string) (GeoPoint, bool) {
	v, ok := r.fields[name].(GeoPoint)
	return v, ok
}

// Clone returns a deep copy
func (r *Record) Clone() *Record {
	c := *r
	c.fields = make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		c.fields[k] = v
	}
	return &c
}
