package inmemdb

import (
	"sort"

	"github.com/profconnect/backend/core/teacher"
)

type teacherRepository struct {
	db *teacherTable
}

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db.teachers}
}

// query returns a snapshot sorted ascending by name; caller must hold a lock.
func (repo *teacherRepository) query() []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, tr := range repo.db.table {
		teachers = append(teachers, *tr)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].Name < teachers[j].Name })
	return teachers
}

func (repo *teacherRepository) CheckEmailUniqueness(email string, excludedTeachers ...teacher.Teacher) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, tr := range repo.db.table {
		if tr.Email == email && !isExcluded(*tr, excludedTeachers) {
			return teacher.ErrEmailExists
		}
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(tr teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.table {
		if existing.Email == tr.Email {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
	}
	repo.db.table[tr.ID] = &tr
	return tr, nil
}

func (repo *teacherRepository) GetTeacherByID(id string) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tr, ok := repo.db.table[id]; ok {
		return *tr, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByEmail(email string) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, tr := range repo.db.table {
		if tr.Email == email {
			return *tr, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) QueryAllTeachers() ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *teacherRepository) FilterTeachers(filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, tr := range repo.query() {
		if tr.HasAnyInterest(filter.Interests) {
			matches = append(matches, tr)
		}
	}
	return matches, nil
}

func (repo *teacherRepository) UpdateTeacher(tr teacher.Teacher, slots *teacher.WeekGrid) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	origTr, ok := repo.db.table[tr.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if tr.Name != "" {
		origTr.Name = tr.Name
	}
	if tr.Email != "" {
		origTr.Email = tr.Email
	}
	if tr.Title != "" {
		origTr.Title = tr.Title
	}
	if tr.School != "" {
		origTr.School = tr.School
	}
	if tr.Department != "" {
		origTr.Department = tr.Department
	}
	if tr.CabinNumber != "" {
		origTr.CabinNumber = tr.CabinNumber
	}
	origTr.LinkedIn = tr.LinkedIn
	origTr.ProfileLink = tr.ProfileLink
	if tr.Photo != "" {
		origTr.Photo = tr.Photo
	}
	if tr.ResearchInterests != nil {
		origTr.ResearchInterests = tr.ResearchInterests
	}
	if slots != nil {
		origTr.AvailableSlots = *slots
	}
	if tr.PasswordHash != nil {
		origTr.PasswordHash = tr.PasswordHash
	}
	origTr.UpdatedAt = tr.UpdatedAt

	repo.db.table[tr.ID] = origTr
	return *origTr, nil
}

func (repo *teacherRepository) DeleteTeacherByID(id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.table, id)
	return nil
}

func (repo *teacherRepository) AppendAnnouncement(id string, ann teacher.Announcement) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tr, ok := repo.db.table[id]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	tr.Announcements = append(tr.Announcements, ann)
	return *tr, nil
}

func (repo *teacherRepository) RemoveAnnouncement(id, announcementID string) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tr, ok := repo.db.table[id]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	kept := make([]teacher.Announcement, 0, len(tr.Announcements))
	var found bool
	for _, ann := range tr.Announcements {
		if ann.ID == announcementID {
			found = true
			continue
		}
		kept = append(kept, ann)
	}
	if !found {
		return teacher.Teacher{}, teacher.ErrAnnouncementNotFound
	}
	tr.Announcements = kept
	return *tr, nil
}

func isExcluded(tr teacher.Teacher, excludedTeachers []teacher.Teacher) bool {
	for _, excl := range excludedTeachers {
		if excl.ID == tr.ID {
			return true
		}
	}
	return false
}
