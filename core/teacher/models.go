package teacher

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/profconnect/backend/core"
)

// Announcement is a short note a teacher posts on their own profile.
// The list on a profile is append-only and ordered by creation.
type Announcement struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"` // UTC
}

type Teacher struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	Title             string         `json:"title"`
	School            string         `json:"school"`
	Department        string         `json:"department"`
	CabinNumber       string         `json:"cabinNumber"`
	LinkedIn          string         `json:"linkedin,omitempty"`
	ProfileLink       string         `json:"profileLink,omitempty"`
	Photo             string         `json:"photo,omitempty"`
	ResearchInterests []string       `json:"researchInterests"`
	AvailableSlots    WeekGrid       `json:"availableSlots"`
	Announcements     []Announcement `json:"announcements"`
	PasswordHash      []byte         `json:"-"`
	CreatedAt         time.Time      `json:"createdAt"` // UTC
	UpdatedAt         time.Time      `json:"updatedAt"` // UTC
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

// HasAnyInterest reports whether the teacher's research-interest set
// intersects tags. Matching is case-insensitive.
func (t *Teacher) HasAnyInterest(tags []string) bool {
	for _, tag := range tags {
		for _, interest := range t.ResearchInterests {
			if strings.EqualFold(interest, tag) {
				return true
			}
		}
	}
	return false
}

// NewTeacher contains the information needed to register a Teacher.
type NewTeacher struct {
	Name              string   `json:"name" validate:"required"`
	Email             string   `json:"email" validate:"required,email"`
	Title             string   `json:"title" validate:"required"`
	School            string   `json:"school" validate:"required"`
	Department        string   `json:"department" validate:"required"`
	CabinNumber       string   `json:"cabinNumber" validate:"required"`
	LinkedIn          string   `json:"linkedin"`
	ProfileLink       string   `json:"profileLink"`
	Password          string   `json:"password" validate:"required"`
	ResearchInterests []string `json:"researchInterests"`
	AvailableSlots    WeekGrid `json:"availableSlots"`
	Photo             string   `json:"-"` // reference set after upload
}

func (nt *NewTeacher) Validate(validate *validator.Validate, svc *Service) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Title = core.CleanString(nt.Title)
	nt.School = core.CleanString(nt.School)
	nt.Department = core.CleanString(nt.Department)
	nt.CabinNumber = core.CleanString(nt.CabinNumber)
	nt.LinkedIn = core.CleanString(nt.LinkedIn)
	nt.ProfileLink = core.CleanString(nt.ProfileLink)
	nt.ResearchInterests = core.CleanStrings(nt.ResearchInterests)

	if err := validate.Struct(nt); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nt.Email)
}

// UpdateTeacher defines what information may be provided to modify an
// existing Teacher. Empty required fields fall back to the original record,
// so a page may submit the full form or just the edited parts. The optional
// linkedin and profileLink fields are replaced exactly as submitted:
// clearing them in the form clears them on the record.
type UpdateTeacher struct {
	Name              string    `json:"name"`
	Email             string    `json:"email" validate:"omitempty,email"`
	Title             string    `json:"title"`
	School            string    `json:"school"`
	Department        string    `json:"department"`
	CabinNumber       string    `json:"cabinNumber"`
	LinkedIn          string    `json:"linkedin"`
	ProfileLink       string    `json:"profileLink"`
	ResearchInterests []string  `json:"researchInterests"`
	AvailableSlots    *WeekGrid `json:"availableSlots"`
	Photo             string    `json:"-"` // reference set after upload
}

func (ut *UpdateTeacher) Validate(origTr Teacher, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = origTr.Name
	}
	if email := core.CleanString(ut.Email, true /* lower */); email != "" {
		ut.Email = email
	} else {
		ut.Email = origTr.Email
	}
	if title := core.CleanString(ut.Title); title != "" {
		ut.Title = title
	} else {
		ut.Title = origTr.Title
	}
	if school := core.CleanString(ut.School); school != "" {
		ut.School = school
	} else {
		ut.School = origTr.School
	}
	if dept := core.CleanString(ut.Department); dept != "" {
		ut.Department = dept
	} else {
		ut.Department = origTr.Department
	}
	if cabin := core.CleanString(ut.CabinNumber); cabin != "" {
		ut.CabinNumber = cabin
	} else {
		ut.CabinNumber = origTr.CabinNumber
	}
	ut.LinkedIn = core.CleanString(ut.LinkedIn)
	ut.ProfileLink = core.CleanString(ut.ProfileLink)
	if ut.ResearchInterests != nil {
		ut.ResearchInterests = core.CleanStrings(ut.ResearchInterests)
	}

	if err := validate.Struct(ut); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ut.Email, origTr)
}

// DeleteTeacher is the password re-entry payload required to destroy a profile.
type DeleteTeacher struct {
	TeacherID string `json:"teacherId" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

func (dt *DeleteTeacher) Validate(validate *validator.Validate) error {
	dt.TeacherID = core.CleanString(dt.TeacherID)
	return validate.Struct(dt)
}

// NewAnnouncement is the payload for posting an announcement.
type NewAnnouncement struct {
	Text string `json:"text" validate:"required"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Text = core.CleanString(na.Text)
	return validate.Struct(na)
}

// QueryFilter narrows a teacher search. Empty filter means all records.
type QueryFilter struct {
	Interests []string `query:"interests"`
}

func (qf *QueryFilter) IsEmpty() bool { return len(qf.Interests) == 0 }

func (qf *QueryFilter) Clean() {
	qf.Interests = core.CleanStrings(qf.Interests)
}
