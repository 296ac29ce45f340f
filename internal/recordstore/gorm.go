// gorm.go
//
// Check-in and profile service for Jurado's Burger locations
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jurados-presence.
// jurados-presence is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jurados-presence is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jurados-presence.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.


package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/jurados-presence/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

const matchFieldSQL = "EXISTS (SELECT 1 FROM record_fields f WHERE f.record_id = records.record_id AND f.field_name = ? AND f.match_key = ?)"

// GormStore implements Store on the records/record_fields tables
type GormStore struct {
	db      *gorm.DB
	log     *zap.Logger
	timeout time.Duration
}

// NewGormStore creates a store. A positive timeout bounds every call.
func NewGormStore(db *gorm.DB, log *zap.Logger, timeout time.Duration) *GormStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormStore{db: db, log: log, timeout: timeout}
}

func (s *GormStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// FetchRecord loads one record by id
func (s *GormStore) FetchRecord(ctx context.Context, id string) (*Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row models.Record
	err := s.db.WithContext(ctx).Preload("Fields").Where("record_id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch record %s: %w", id, err)
	}

	record, err := decodeRecord(row)
	if err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return record, nil
}

// Query finds records of a type matching the predicate
func (s *GormStore) Query(ctx context.Context, recordType string, predicate Predicate, sorts ...Sort) ([]*Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q := s.db.WithContext(ctx).
		Clauses(hints.CommentBefore("select", "recordstore:"+recordType)).
		Preload("Fields").
		Where("record_type = ?", recordType)

	for _, c := range predicate.conds {
		key, err := matchKey(c.value)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", recordType, err)
		}
		if len(key) > maxMatchKeyLength {
			return nil, fmt.Errorf("query %s: %s value is too long to match", recordType, c.field)
		}
		q = q.Where(matchFieldSQL, c.field, key)
	}

	var rows []models.Record
	if err := q.Order("record_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", recordType, err)
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		record, err := decodeRecord(row)
		if err != nil {
			s.log.Warn("skipping undecodable record",
				zap.String("record_id", row.RecordID),
				zap.String("record_type", recordType),
				zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	sortRecords(records, sorts)
	return records, nil
}

// SaveOne upserts a record in its own transaction
func (s *GormStore) SaveOne(ctx context.Context, record *Record) (*Record, error) {
	if err := s.SaveBatch(ctx, []*Record{record}); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// SaveBatch upserts records in one transaction. On success each record's
// version and timestamps are updated in place.
func (s *GormStore) SaveBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	saved := make([]models.Record, len(records))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, record := range records {
			row, err := saveRecord(tx, record)
			if err != nil {
				return err
			}
			saved[i] = row
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save batch: %w", err)
	}

	for i, row := range saved {
		records[i].Version = row.Version
		records[i].CreatedAt = row.CreatedAt
		records[i].UpdatedAt = row.UpdatedAt
	}
	return nil
}

func saveRecord(tx *gorm.DB, record *Record) (models.Record, error) {
	if record == nil || record.ID == "" || record.Type == "" {
		return models.Record{}, fmt.Errorf("record id and type are required")
	}

	var row models.Record
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("record_id = ?", record.ID).
		First(&row).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.Record{RecordID: record.ID, RecordType: record.Type, Version: 1}
		if err := tx.Create(&row).Error; err != nil {
			return row, fmt.Errorf("create record %s: %w", record.ID, err)
		}
	case err != nil:
		return row, fmt.Errorf("lock record %s: %w", record.ID, err)
	default:
		if row.RecordType != record.Type {
			return row, fmt.Errorf("record %s is a %s, not a %s", record.ID, row.RecordType, record.Type)
		}
		row.Version++
		row.UpdatedAt = time.Now()
		if err := tx.Model(&row).Updates(map[string]any{
			"version":    row.Version,
			"updated_at": row.UpdatedAt,
		}).Error; err != nil {
			return row, fmt.Errorf("update record %s: %w", record.ID, err)
		}
		if err := tx.Where("record_id = ?", record.ID).Delete(&models.RecordField{}).Error; err != nil {
			return row, fmt.Errorf("clear fields %s: %w", record.ID, err)
		}
	}

	fields := make([]models.RecordField, 0, len(record.fields))
	for _, name := range record.FieldNames() {
		field, err := encodeField(record.ID, name, record.fields[name])
		if err != nil {
			return row, err
		}
		fields = append(fields, field)
	}
	if len(fields) > 0 {
		if err := tx.Create(&fields).Error; err != nil {
			return row, fmt.Errorf("write fields %s: %w", record.ID, err)
		}
	}

	return row, nil
}

// CurrentUserRootID returns the identity record id for the user carried
// by ctx, creating the empty identity record on first use
func (s *GormStore) CurrentUserRootID(ctx context.Context) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", ErrNotAuthenticated
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := IdentityRecordID(userID)
	row := models.Record{RecordID: id, RecordType: TypeUsers, Version: 1}
	if err := s.db.WithContext(ctx).Where("record_id = ?", id).FirstOrCreate(&row).Error; err != nil {
		return "", fmt.Errorf("identity record %s: %w", id, err)
	}
	return id, nil
}

// DeleteRecord removes a record and, recursively, the targets of its
// cascade references
func (s *GormStore) DeleteRecord(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteRecord(tx, id, make(map[string]struct{}))
	})
}

func deleteRecord(tx *gorm.DB, id string, seen map[string]struct{}) error {
	if _, ok := seen[id]; ok {
		return nil
	}
	seen[id] = struct{}{}

	var row models.Record
	if err := tx.Preload("Fields").Where("record_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if len(seen) == 1 {
				return ErrNotFound
			}
			return nil
		}
		return fmt.Errorf("load record %s: %w", id, err)
	}

	for _, field := range row.Fields {
		if field.FieldKind == kindReference && field.RefAction == ActionCascade && field.MatchKey != "" {
			if err := deleteRecord(tx, field.MatchKey, seen); err != nil {
				return err
			}
		}
	}

	if err := tx.Where("record_id = ?", id).Delete(&models.RecordField{}).Error; err != nil {
		return fmt.Errorf("delete fields %s: %w", id, err)
	}
	if err := tx.Where("record_id = ?", id).Delete(&models.Record{}).Error; err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

func decodeRecord(row models.Record) (*Record, error) {
	record := &Record{
		ID:        row.RecordID,
		Type:      row.RecordType,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		fields:    make(map[string]any, len(row.Fields)),
	}
	for _, field := range row.Fields {
		value, err := decodeField(field)
		if err != nil {
			return nil, err
		}
		record.fields[field.FieldName] = value
	}
	return record, nil
}

var _ Store = (*GormStore)(nil)
