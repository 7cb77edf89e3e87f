package session

import (
	"time"
)

// MemStore is an in-memory Repository for tests. SaveErr, when set, is
// returned from every save so callers' swallow-and-continue behavior
// can be exercised.
type MemStore struct {
	EditRec   *EditRecord
	TestRec   *TestRecord
	ScanRec   *ScanRecord
	ReviewRec *ReviewRecord
	SaveErr   error

	Saves int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Edits() *EditRecord {
	if m.EditRec == nil {
		return &EditRecord{Meta: NewMeta(time.Now())}
	}
	cp := *m.EditRec
	return &cp
}

func (m *MemStore) SaveEdits(rec *EditRecord) error {
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *rec
	m.EditRec = &cp
	return nil
}

func (m *MemStore) Tests() *TestRecord {
	if m.TestRec == nil {
		return &TestRecord{Meta: NewMeta(time.Now())}
	}
	cp := *m.TestRec
	return &cp
}

func (m *MemStore) SaveTests(rec *TestRecord) error {
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *rec
	m.TestRec = &cp
	return nil
}

func (m *MemStore) Scan() *ScanRecord {
	if m.ScanRec == nil {
		return &ScanRecord{Meta: NewMeta(time.Now())}
	}
	cp := *m.ScanRec
	return &cp
}

func (m *MemStore) SaveScan(rec *ScanRecord) error {
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *rec
	m.ScanRec = &cp
	return nil
}

func (m *MemStore) Review() *ReviewRecord {
	if m.ReviewRec == nil {
		return &ReviewRecord{Meta: NewMeta(time.Now())}
	}
	cp := *m.ReviewRec
	return &cp
}

func (m *MemStore) SaveReview(rec *ReviewRecord) error {
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *rec
	m.ReviewRec = &cp
	return nil
}

func (m *MemStore) Reset(concern Concern) error {
	switch concern {
	case ConcernEdits:
		m.EditRec = nil
	case ConcernTests:
		m.TestRec = nil
	case ConcernScan:
		m.ScanRec = nil
	case ConcernReview:
		m.ReviewRec = nil
	}
	return nil
}
