package collection

import (
	"fmt"

	"github.com/alyssonw2/BD-AJ/filter"
	"github.com/alyssonw2/BD-AJ/models"
	"github.com/rs/zerolog/log"
)

// Create appends a new record to the collection, creating the collection if
// it does not exist yet. Any id in the body is replaced by a freshly assigned
// one.
func (s *Store) Create(name string, body models.Record) (models.Record, error) {
	if err := validateWritableName(name); err != nil {
		return nil, err
	}
	lock := s.locks.forName(name)
	lock.Lock()
	defer lock.Unlock()
	// ---------------------------
	records, _, err := s.readCollection(name)
	if err != nil {
		return nil, err
	}
	record := make(models.Record, len(body)+1)
	for k, v := range body {
		record[k] = v
	}
	id := nextId(records, s.now())
	record[models.FieldId] = id
	records = append(records, record)
	// ---------------------------
	if err := s.writeCollection(name, records); err != nil {
		return nil, err
	}
	log.Debug().Str("collection", name).Int64("id", id).Int("count", len(records)).Msg("Create")
	return record, nil
}

// Update shallow merges partial over the record with the given id. Keys not
// mentioned in partial are preserved.
func (s *Store) Update(name string, id int64, partial models.Record) (models.Record, error) {
	if err := validateWritableName(name); err != nil {
		return nil, err
	}
	lock := s.locks.forName(name)
	lock.Lock()
	defer lock.Unlock()
	// ---------------------------
	records, exists, err := s.readCollection(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	index := -1
	for i, r := range records {
		if rid, ok := r.Id(); ok && rid == id {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, fmt.Errorf("%w: %d in %s", ErrRecordNotFound, id, name)
	}
	// ---------------------------
	records[index] = records[index].Merge(partial)
	if err := s.writeCollection(name, records); err != nil {
		return nil, err
	}
	log.Debug().Str("collection", name).Int64("id", id).Msg("Update")
	return records[index], nil
}

// Delete removes every record carrying the given id.
func (s *Store) Delete(name string, id int64) error {
	if err := validateWritableName(name); err != nil {
		return err
	}
	lock := s.locks.forName(name)
	lock.Lock()
	defer lock.Unlock()
	// ---------------------------
	records, exists, err := s.readCollection(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if rid, ok := r.Id(); ok && rid == id {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == len(records) {
		return fmt.Errorf("%w: %d in %s", ErrRecordNotFound, id, name)
	}
	// ---------------------------
	if err := s.writeCollection(name, kept); err != nil {
		return err
	}
	log.Debug().Str("collection", name).Int64("id", id).Int("removed", len(records)-len(kept)).Msg("Delete")
	return nil
}

// Filter returns the records matching all predicates in storage order.
func (s *Store) Filter(name string, predicates []filter.Predicate) ([]models.Record, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	lock := s.locks.forName(name)
	lock.RLock()
	records, exists, err := s.readCollection(name)
	lock.RUnlock()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	// ---------------------------
	matched, err := filter.Apply(records, predicates)
	if err != nil {
		return nil, fmt.Errorf("could not filter %s: %w", name, err)
	}
	log.Debug().Str("collection", name).Int("predicates", len(predicates)).Int("matched", len(matched)).Msg("Filter")
	return matched, nil
}

func (s *Store) List(name string) ([]models.Record, error) {
	return s.Filter(name, nil)
}
