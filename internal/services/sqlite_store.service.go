package services

import (
	"encoding/json"
	"fmt"
	"log"

	"wifiprober/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SampleRecord is the GORM model for one probe sample. The payload holds the
// same JSON a sample has in the history document.
type SampleRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Timestamp string `gorm:"index"`
	Payload   string
}

// SQLiteStore implements ResultStore on SQLite through GORM.
type SQLiteStore struct {
	db         *gorm.DB
	maxResults int
}

// NewSQLiteStore opens (or creates) the database at path and migrates it.
func NewSQLiteStore(path string, maxResults int) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newSQLiteStore(db, maxResults)
}

func newSQLiteStore(db *gorm.DB, maxResults int) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&SampleRecord{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, maxResults: maxResults}, nil
}

func (s *SQLiteStore) Append(sample models.ProbeSample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		record := SampleRecord{Timestamp: sample.Timestamp, Payload: string(payload)}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
		if s.maxResults <= 0 {
			return nil
		}

		keep := tx.Model(&SampleRecord{}).Select("id").Order("id DESC").Limit(s.maxResults)
		if err := tx.Where("id NOT IN (?)", keep).Delete(&SampleRecord{}).Error; err != nil {
			return fmt.Errorf("evict old samples: %w", err)
		}
		return nil
	})
}

// Load returns every stored sample oldest first. Rows that fail to decode are
// skipped; a query failure yields an empty log.
func (s *SQLiteStore) Load() models.ResultLog {
	doc := models.ResultLog{ProbeResults: []models.ProbeSample{}}

	var records []SampleRecord
	if err := s.db.Order("id ASC").Find(&records).Error; err != nil {
		log.Printf("[STORE] Treating sqlite store as empty: %v", err)
		return doc
	}

	for _, r := range records {
		var sample models.ProbeSample
		if err := json.Unmarshal([]byte(r.Payload), &sample); err != nil {
			log.Printf("[STORE] Skipping undecodable sample %d: %v", r.ID, err)
			continue
		}
		doc.ProbeResults = append(doc.ProbeResults, sample)
	}
	return doc
}

// Count returns the number of stored rows without decoding them.
func (s *SQLiteStore) Count() int {
	var n int64
	if err := s.db.Model(&SampleRecord{}).Count(&n).Error; err != nil {
		log.Printf("[STORE] Treating sqlite store as empty: %v", err)
		return 0
	}
	return int(n)
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
