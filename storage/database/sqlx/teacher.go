package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/profconnect/backend/core/teacher"
)

const pqUniqueViolation = "23505"

type teacherRepository struct {
	db *sqlx.DB
}

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

// teacherRow mirrors the teacher table; the grid, interests and
// announcements live in jsonb columns, stored as-is.
type teacherRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Email             string         `db:"email"`
	Title             string         `db:"title"`
	School            string         `db:"school"`
	Department        string         `db:"department"`
	CabinNumber       string         `db:"cabin_number"`
	LinkedIn          string         `db:"linkedin"`
	ProfileLink       string         `db:"profile_link"`
	Photo             string         `db:"photo"`
	ResearchInterests types.JSONText `db:"research_interests"`
	AvailableSlots    types.JSONText `db:"available_slots"`
	Announcements     types.JSONText `db:"announcements"`
	PasswordHash      []byte         `db:"password_hash"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func newTeacherRow(tr teacher.Teacher) (teacherRow, error) {
	interests, err := json.Marshal(tr.ResearchInterests)
	if err != nil {
		return teacherRow{}, errors.Wrap(err, "marshaling researchInterests")
	}
	slots, err := json.Marshal(tr.AvailableSlots)
	if err != nil {
		return teacherRow{}, errors.Wrap(err, "marshaling availableSlots")
	}
	anns, err := json.Marshal(tr.Announcements)
	if err != nil {
		return teacherRow{}, errors.Wrap(err, "marshaling announcements")
	}
	return teacherRow{
		ID:                tr.ID,
		Name:              tr.Name,
		Email:             tr.Email,
		Title:             tr.Title,
		School:            tr.School,
		Department:        tr.Department,
		CabinNumber:       tr.CabinNumber,
		LinkedIn:          tr.LinkedIn,
		ProfileLink:       tr.ProfileLink,
		Photo:             tr.Photo,
		ResearchInterests: interests,
		AvailableSlots:    slots,
		Announcements:     anns,
		PasswordHash:      tr.PasswordHash,
		CreatedAt:         tr.CreatedAt,
		UpdatedAt:         tr.UpdatedAt,
	}, nil
}

func (row teacherRow) toTeacher() (teacher.Teacher, error) {
	tr := teacher.Teacher{
		ID:                row.ID,
		Name:              row.Name,
		Email:             row.Email,
		Title:             row.Title,
		School:            row.School,
		Department:        row.Department,
		CabinNumber:       row.CabinNumber,
		LinkedIn:          row.LinkedIn,
		ProfileLink:       row.ProfileLink,
		Photo:             row.Photo,
		ResearchInterests: []string{},
		Announcements:     []teacher.Announcement{},
		PasswordHash:      row.PasswordHash,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(row.ResearchInterests, &tr.ResearchInterests); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "unmarshaling researchInterests")
	}
	if err := json.Unmarshal(row.AvailableSlots, &tr.AvailableSlots); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "unmarshaling availableSlots")
	}
	if err := json.Unmarshal(row.Announcements, &tr.Announcements); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "unmarshaling announcements")
	}
	return tr, nil
}

const teacherColumns = `id, name, email, title, school, department, cabin_number, linkedin,
profile_link, photo, research_interests, available_slots, announcements,
password_hash, created_at, updated_at`

func (repo *teacherRepository) CheckEmailUniqueness(email string, excludedTeachers ...teacher.Teacher) error {
	var id string
	err := repo.db.Get(&id, `SELECT id FROM teacher WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	for _, tr := range excludedTeachers {
		if tr.ID == id {
			return nil
		}
	}
	return teacher.ErrEmailExists
}

func (repo *teacherRepository) CreateTeacher(tr teacher.Teacher) (teacher.Teacher, error) {
	row, err := newTeacherRow(tr)
	if err != nil {
		return teacher.Teacher{}, err
	}

	_, err = repo.db.NamedExec(`
		INSERT INTO teacher (`+teacherColumns+`)
		VALUES (:id, :name, :email, :title, :school, :department, :cabin_number, :linkedin,
		        :profile_link, :photo, :research_interests, :available_slots, :announcements,
		        :password_hash, :created_at, :updated_at)`, row)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tr, nil
}

func (repo *teacherRepository) GetTeacherByID(id string) (teacher.Teacher, error) {
	var row teacherRow
	err := repo.db.Get(&row, `SELECT `+teacherColumns+` FROM teacher WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher by id")
	}
	return row.toTeacher()
}

func (repo *teacherRepository) GetTeacherByEmail(email string) (teacher.Teacher, error) {
	var row teacherRow
	err := repo.db.Get(&row, `SELECT `+teacherColumns+` FROM teacher WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher by email")
	}
	return row.toTeacher()
}

func (repo *teacherRepository) QueryAllTeachers() ([]teacher.Teacher, error) {
	var rows []teacherRow
	err := repo.db.Select(&rows, `SELECT `+teacherColumns+` FROM teacher ORDER BY name ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return rowsToTeachers(rows)
}

func (repo *teacherRepository) FilterTeachers(filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	// interest matching is case-insensitive, same as the in-memory repo;
	// done here rather than with jsonb operators to keep both identical
	all, err := repo.QueryAllTeachers()
	if err != nil {
		return nil, err
	}
	matches := make([]teacher.Teacher, 0, len(all))
	for _, tr := range all {
		if tr.HasAnyInterest(filter.Interests) {
			matches = append(matches, tr)
		}
	}
	return matches, nil
}

func (repo *teacherRepository) UpdateTeacher(tr teacher.Teacher, slots *teacher.WeekGrid) (teacher.Teacher, error) {
	orig, err := repo.GetTeacherByID(tr.ID)
	if err != nil {
		return teacher.Teacher{}, err
	}
	merged := mergeTeacher(orig, tr, slots)

	row, err := newTeacherRow(merged)
	if err != nil {
		return teacher.Teacher{}, err
	}
	_, err = repo.db.NamedExec(`
		UPDATE teacher SET
			name = :name, email = :email, title = :title, school = :school,
			department = :department, cabin_number = :cabin_number, linkedin = :linkedin,
			profile_link = :profile_link, photo = :photo,
			research_interests = :research_interests, available_slots = :available_slots,
			password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return teacher.Teacher{}, teacher.ErrEmailExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return merged, nil
}

func (repo *teacherRepository) DeleteTeacherByID(id string) error {
	_, err := repo.db.Exec(`DELETE FROM teacher WHERE id = $1`, id)
	return errors.Wrap(err, "deleting teacher")
}

func (repo *teacherRepository) AppendAnnouncement(id string, ann teacher.Announcement) (teacher.Teacher, error) {
	tr, err := repo.GetTeacherByID(id)
	if err != nil {
		return teacher.Teacher{}, err
	}
	tr.Announcements = append(tr.Announcements, ann)
	return tr, repo.saveAnnouncements(tr)
}

func (repo *teacherRepository) RemoveAnnouncement(id, announcementID string) (teacher.Teacher, error) {
	tr, err := repo.GetTeacherByID(id)
	if err != nil {
		return teacher.Teacher{}, err
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
	return tr, repo.saveAnnouncements(tr)
}

func (repo *teacherRepository) saveAnnouncements(tr teacher.Teacher) error {
	anns, err := json.Marshal(tr.Announcements)
	if err != nil {
		return errors.Wrap(err, "marshaling announcements")
	}
	_, err = repo.db.Exec(`UPDATE teacher SET announcements = $1 WHERE id = $2`, types.JSONText(anns), tr.ID)
	return errors.Wrap(err, "saving announcements")
}

// mergeTeacher applies the set fields of upd onto orig; empty strings, nil
// slices and a nil grid leave the original value. The optional links are
// replaced as submitted so that an edit form can clear them.
func mergeTeacher(orig, upd teacher.Teacher, slots *teacher.WeekGrid) teacher.Teacher {
	merged := orig
	if upd.Name != "" {
		merged.Name = upd.Name
	}
	if upd.Email != "" {
		merged.Email = upd.Email
	}
	if upd.Title != "" {
		merged.Title = upd.Title
	}
	if upd.School != "" {
		merged.School = upd.School
	}
	if upd.Department != "" {
		merged.Department = upd.Department
	}
	if upd.CabinNumber != "" {
		merged.CabinNumber = upd.CabinNumber
	}
	merged.LinkedIn = upd.LinkedIn
	merged.ProfileLink = upd.ProfileLink
	if upd.Photo != "" {
		merged.Photo = upd.Photo
	}
	if upd.PasswordHash != nil {
		merged.PasswordHash = upd.PasswordHash
	}
	if upd.ResearchInterests != nil {
		merged.ResearchInterests = upd.ResearchInterests
	}
	if slots != nil {
		merged.AvailableSlots = *slots
	}
	merged.UpdatedAt = upd.UpdatedAt
	return merged
}

func rowsToTeachers(rows []teacherRow) ([]teacher.Teacher, error) {
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		tr, err := row.toTeacher()
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, tr)
	}
	return teachers, nil
}
