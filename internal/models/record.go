package models

import (
	"time"
)

// Record is the stored header of a typed document record
type Record struct {
	RecordID   string `gorm:"primaryKey;size:64"`
	RecordType string `gorm:"size:64;not null;index"`
	Version    uint64 `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Fields     []RecordField `gorm:"foreignKey:RecordID;references:RecordID;constraint:OnDelete:CASCADE"`
}

// RecordField holds one named field of a record.
// MatchKey is the normalized scalar form used by equality predicates.
type RecordField struct {
	FieldID    uint64 `gorm:"primaryKey;autoIncrement"`
	RecordID   string `gorm:"size:64;not null;uniqueIndex:idx_record_field"`
	FieldName  string `gorm:"size:255;not null;uniqueIndex:idx_record_field"`
	FieldKind  string `gorm:"size:16;not null"`
	FieldValue JSON
	MatchKey   string `gorm:"size:512;index"`
	RefAction  string `gorm:"size:16"`
}

// TableName overrides the table name for Record
func (Record) TableName() string {
	return "records"
}

// TableName overrides the table name for RecordField
func (RecordField) TableName() string {
	return "record_fields"
}
