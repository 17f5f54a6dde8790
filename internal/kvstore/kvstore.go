// Package kvstore is the storage adapter over the device-local database.
// Plain values live in kv_records, sensitive values in secure_records with
// the value encrypted at rest. Storage failures never escape this package:
// they are logged and surface as an absent value or a dropped write, so
// callers treat a miss as "no value yet", not as an error.
package kvstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Record struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (Record) TableName() string { return "kv_records" }

type SecureRecord struct {
	Key   string `gorm:"primaryKey"`
	Value []byte
	Nonce []byte
}

func (SecureRecord) TableName() string { return "secure_records" }

type Adapter struct {
	db  *gorm.DB
	box *secretBox
	log *slog.Logger
}

// Open connects to the sqlite database at path, creating it if needed.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func New(db *gorm.DB, secret []byte, log *slog.Logger) (*Adapter, error) {
	if err := db.AutoMigrate(&Record{}, &SecureRecord{}); err != nil {
		return nil, err
	}
	box, err := newSecretBox(secret)
	if err != nil {
		return nil, err
	}
	return &Adapter{db: db, box: box, log: log}, nil
}

// Get reads a plain value. The second return is false when the key is
// absent or the read failed.
func (a *Adapter) Get(ctx context.Context, key string) (string, bool) {
	var rec Record
	err := a.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.log.Error("kvstore read failed", "key", key, "error", err)
		}
		return "", false
	}
	return rec.Value, true
}

func (a *Adapter) Set(ctx context.Context, key, value string) {
	rec := Record{Key: key, Value: value}
	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		a.log.Error("kvstore write failed", "key", key, "error", err)
	}
}

func (a *Adapter) Remove(ctx context.Context, key string) {
	if err := a.db.WithContext(ctx).Delete(&Record{}, "key = ?", key).Error; err != nil {
		a.log.Error("kvstore delete failed", "key", key, "error", err)
	}
}

// GetSecure reads and decrypts a value from the secure table.
func (a *Adapter) GetSecure(ctx context.Context, key string) (string, bool) {
	var rec SecureRecord
	err := a.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.log.Error("secure store read failed", "key", key, "error", err)
		}
		return "", false
	}
	plain, err := a.box.open(rec.Value, rec.Nonce)
	if err != nil {
		a.log.Error("secure store decrypt failed", "key", key, "error", err)
		return "", false
	}
	return plain, true
}

func (a *Adapter) SetSecure(ctx context.Context, key, value string) {
	ciphertext, nonce, err := a.box.seal(value)
	if err != nil {
		a.log.Error("secure store encrypt failed", "key", key, "error", err)
		return
	}
	rec := SecureRecord{Key: key, Value: ciphertext, Nonce: nonce}
	err = a.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		a.log.Error("secure store write failed", "key", key, "error", err)
	}
}

func (a *Adapter) RemoveSecure(ctx context.Context, key string) {
	if err := a.db.WithContext(ctx).Delete(&SecureRecord{}, "key = ?", key).Error; err != nil {
		a.log.Error("secure store delete failed", "key", key, "error", err)
	}
}
