// Package store provides payment.Source implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/teaching-payroll/payment"
)

// =============================================================================
// MEMORY SOURCE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	rates       *payment.RateConfig
	semesters   map[string]payment.SemesterRef
	teachers    map[string]payment.TeacherRef
	departments map[string]payment.DepartmentRef
	assignments []payment.Assignment
}

var _ payment.Source = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		semesters:   make(map[string]payment.SemesterRef),
		teachers:    make(map[string]payment.TeacherRef),
		departments: make(map[string]payment.DepartmentRef),
	}
}

// SetRateConfig replaces the whole rate snapshot.
func (m *Memory) SetRateConfig(r payment.RateConfig) {
	c := r.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = &c
}

func (m *Memory) AddSemester(s payment.SemesterRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semesters[s.ID] = s
}

func (m *Memory) AddDepartment(d payment.DepartmentRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.departments[d.ID] = d
}

// AddTeacher registers the teacher and its department.
func (m *Memory) AddTeacher(t payment.TeacherRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teachers[t.ID] = t
	if _, ok := m.departments[t.Department.ID]; !ok {
		m.departments[t.Department.ID] = t.Department
	}
}

// AddAssignment registers the assignment along with the semester and teacher
// it references.
func (m *Memory) AddAssignment(a payment.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments = append(m.assignments, a)
	if _, ok := m.semesters[a.Semester.ID]; !ok {
		m.semesters[a.Semester.ID] = a.Semester
	}
	if _, ok := m.teachers[a.Teacher.ID]; !ok {
		m.teachers[a.Teacher.ID] = a.Teacher
	}
	if _, ok := m.departments[a.Teacher.Department.ID]; !ok {
		m.departments[a.Teacher.Department.ID] = a.Teacher.Department
	}
}

func (m *Memory) RateConfig(_ context.Context) (payment.RateConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rates == nil {
		return payment.RateConfig{}, &payment.NotFoundError{Kind: "settings", ID: "current"}
	}
	return m.rates.Clone(), nil
}

func (m *Memory) ListAssignments(_ context.Context, f payment.Filter) ([]payment.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payment.Assignment, 0)
	for _, a := range m.assignments {
		if f.SemesterID != "" && a.Semester.ID != f.SemesterID {
			continue
		}
		if f.TeacherID != "" && a.Teacher.ID != f.TeacherID {
			continue
		}
		if f.DepartmentID != "" && a.Teacher.Department.ID != f.DepartmentID {
			continue
		}
		if f.Year != "" && a.Semester.Year != f.Year {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func (m *Memory) GetSemester(_ context.Context, id string) (*payment.SemesterRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.semesters[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *Memory) GetTeacher(_ context.Context, id string) (*payment.TeacherRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.teachers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Memory) GetDepartment(_ context.Context, id string) (*payment.DepartmentRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.departments[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *Memory) ListSemesters(_ context.Context) ([]payment.SemesterRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]payment.SemesterRef, 0, len(m.semesters))
	for _, s := range m.semesters {
		result = append(result, s)
	}
	return result, nil
}
