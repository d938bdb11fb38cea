package services

import (
	"errors"
	"fmt"
	"log"
	"os"

	"wifiprober/internal/models"
)

// ResultStore is the persistence boundary for probe samples. Analytics only
// depends on Load and Count, so a backend can be swapped without touching
// queries.
type ResultStore interface {
	// Append adds a sample and evicts the oldest entries beyond the bound.
	Append(sample models.ProbeSample) error
	// Load returns the persisted log, or an empty log when it cannot be read.
	Load() models.ResultLog
	// Count returns the number of stored samples, 0 when unreadable.
	Count() int
}

// JSONFileStore keeps the whole log in one JSON document. Every call reads
// the file; nothing is cached and no lock is held across processes, so a read
// racing a write degrades to an empty log.
type JSONFileStore struct {
	path       string
	maxResults int
}

func NewJSONFileStore(path string, maxResults int) *JSONFileStore {
	return &JSONFileStore{path: path, maxResults: maxResults}
}

func (s *JSONFileStore) Path() string {
	return s.path
}

func (s *JSONFileStore) Load() models.ResultLog {
	var doc models.ResultLog
	if err := readJSONDocument(s.path, &doc); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[STORE] Treating %s as empty: %v", s.path, err)
		}
		return models.ResultLog{ProbeResults: []models.ProbeSample{}}
	}
	if doc.ProbeResults == nil {
		doc.ProbeResults = []models.ProbeSample{}
	}
	return doc
}

func (s *JSONFileStore) Count() int {
	return len(s.Load().ProbeResults)
}

func (s *JSONFileStore) Append(sample models.ProbeSample) error {
	doc := s.Load()
	doc.ProbeResults = truncateOldest(append(doc.ProbeResults, sample), s.maxResults)

	if err := writeJSONDocument(s.path, doc); err != nil {
		return fmt.Errorf("save results to %s: %w", s.path, err)
	}
	return nil
}

// truncateOldest keeps the newest max entries. max <= 0 disables the bound.
func truncateOldest(samples []models.ProbeSample, max int) []models.ProbeSample {
	if max <= 0 || len(samples) <= max {
		return samples
	}
	return append([]models.ProbeSample(nil), samples[len(samples)-max:]...)
}
