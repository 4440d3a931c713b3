package store

import (
	"context"
	"sync"

	"github.com/labguard/labguard-backend/dto"
)

type accountState struct {
	identity *dto.PersonIdentity
	reports  []dto.LabReport
}

// MemoryStore is a mutex-guarded in-memory Store. Used by tests and as the
// development default when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*accountState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*accountState)}
}

func (s *MemoryStore) account(accountID string) *accountState {
	st, ok := s.accounts[accountID]
	if !ok {
		st = &accountState{}
		s.accounts[accountID] = st
	}
	return st
}

func (s *MemoryStore) FindBoundIdentity(_ context.Context, accountID string) (*dto.PersonIdentity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.accounts[accountID]
	if !ok || st.identity == nil {
		return nil, nil
	}
	id := *st.identity
	return &id, nil
}

func (s *MemoryStore) BindIdentity(_ context.Context, accountID string, id dto.PersonIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.account(accountID).identity = &id
	return nil
}

func (s *MemoryStore) ListReports(_ context.Context, accountID string) ([]dto.LabReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.accounts[accountID]
	if !ok {
		return nil, nil
	}
	out := make([]dto.LabReport, len(st.reports))
	for i, r := range st.reports {
		out[i] = cloneReport(r)
	}
	return out, nil
}

func (s *MemoryStore) AppendReport(_ context.Context, accountID string, report dto.LabReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.account(accountID)
	st.reports = append(st.reports, cloneReport(report))
	return nil
}

func (s *MemoryStore) DeleteReport(_ context.Context, accountID, reportID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.accounts[accountID]
	if !ok {
		return ErrReportNotFound
	}
	for i, r := range st.reports {
		if r.ID == reportID {
			st.reports = append(st.reports[:i], st.reports[i+1:]...)
			return nil
		}
	}
	return ErrReportNotFound
}

func (s *MemoryStore) UpdateRow(_ context.Context, accountID, reportID string, rowIndex int, row dto.MeasurementRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.findReport(accountID, reportID)
	if err != nil {
		return err
	}
	if rowIndex < 0 || rowIndex >= len(rep.Rows) {
		return ErrRowIndexOutOfRange
	}
	rep.Rows[rowIndex] = row
	return nil
}

func (s *MemoryStore) DeleteRow(_ context.Context, accountID, reportID string, rowIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.findReport(accountID, reportID)
	if err != nil {
		return err
	}
	if rowIndex < 0 || rowIndex >= len(rep.Rows) {
		return ErrRowIndexOutOfRange
	}
	rep.Rows = append(rep.Rows[:rowIndex], rep.Rows[rowIndex+1:]...)
	return nil
}

func (s *MemoryStore) findReport(accountID, reportID string) (*dto.LabReport, error) {
	st, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrReportNotFound
	}
	for i := range st.reports {
		if st.reports[i].ID == reportID {
			return &st.reports[i], nil
		}
	}
	return nil, ErrReportNotFound
}

// cloneReport copies the report and its row slice so callers cannot alias
// stored state.
func cloneReport(r dto.LabReport) dto.LabReport {
	out := r
	out.SourceFiles = append([]string(nil), r.SourceFiles...)
	out.Rows = append([]dto.MeasurementRow(nil), r.Rows...)
	return out
}
