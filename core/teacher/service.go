package teacher

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/profconnect/backend/core"
)

var (
	ErrNotFound             = errors.New("teacher not found")
	ErrEmailExists          = errors.New("a teacher with this email already exists")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
)

type (
	// Repository is the persistence contract consumed by the Service.
	// Implementations enforce email uniqueness across all records and
	// return listings sorted ascending by name.
	Repository interface {
		CheckEmailUniqueness(email string, excludedTeachers ...Teacher) error
		CreateTeacher(tr Teacher) (Teacher, error)
		GetTeacherByID(id string) (Teacher, error)
		GetTeacherByEmail(email string) (Teacher, error)
		QueryAllTeachers() ([]Teacher, error)
		// FilterTeachers returns the subset whose research-interest set
		// intersects QueryFilter.Interests.
		FilterTeachers(filter QueryFilter) ([]Teacher, error)
		// UpdateTeacher merges set fields into the stored record: empty
		// strings, nil slices and nil grids leave the original value.
		// The optional linkedin and profileLink fields are the exception:
		// they are replaced as submitted, so an empty value clears them.
		UpdateTeacher(tr Teacher, slots *WeekGrid) (Teacher, error)
		DeleteTeacherByID(id string) error
		AppendAnnouncement(id string, ann Announcement) (Teacher, error)
		RemoveAnnouncement(id, announcementID string) (Teacher, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) CheckEmailUniqueness(email string, exclTeachers ...Teacher) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclTeachers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates the profile and sends the onboarding email.
func (svc *Service) Register(nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	tr := Teacher{
		ID:                uuid.NewString(),
		Name:              nt.Name,
		Email:             nt.Email,
		Title:             nt.Title,
		School:            nt.School,
		Department:        nt.Department,
		CabinNumber:       nt.CabinNumber,
		LinkedIn:          nt.LinkedIn,
		ProfileLink:       nt.ProfileLink,
		Photo:             nt.Photo,
		ResearchInterests: nt.ResearchInterests,
		AvailableSlots:    nt.AvailableSlots,
		Announcements:     []Announcement{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tr.SetPassword(nt.Password); err != nil {
		return Teacher{}, err
	}

	tr, err := svc.repo.CreateTeacher(tr)
	if err != nil {
		return Teacher{}, err
	}
	svc.sendWelcomeEmail(tr)
	return tr, nil
}

// Authenticate matches email + password against a stored record.
func (svc *Service) Authenticate(email, pwd string) (Teacher, error) {
	tr, err := svc.repo.GetTeacherByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return Teacher{}, ErrInvalidCredentials
		}
		return Teacher{}, err
	}
	if err = tr.CheckPassword(pwd); err != nil {
		return Teacher{}, ErrInvalidCredentials
	}
	return tr, nil
}

func (svc *Service) GetByID(id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(id)
}

func (svc *Service) GetByEmail(email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryAll() ([]Teacher, error) {
	return svc.repo.QueryAllTeachers()
}

// Search returns all teachers when the filter is empty, else the ones
// whose interests intersect it. Always sorted ascending by name.
func (svc *Service) Search(filter QueryFilter) ([]Teacher, error) {
	filter.Clean()
	if filter.IsEmpty() {
		return svc.repo.QueryAllTeachers()
	}
	return svc.repo.FilterTeachers(filter)
}

func (svc *Service) Update(id string, ut UpdateTeacher) (Teacher, error) {
	tr := Teacher{
		ID:                id,
		Name:              ut.Name,
		Email:             ut.Email,
		Title:             ut.Title,
		School:            ut.School,
		Department:        ut.Department,
		CabinNumber:       ut.CabinNumber,
		LinkedIn:          ut.LinkedIn,
		ProfileLink:       ut.ProfileLink,
		Photo:             ut.Photo,
		ResearchInterests: ut.ResearchInterests,
		UpdatedAt:         time.Now().UTC(),
	}
	return svc.repo.UpdateTeacher(tr, ut.AvailableSlots)
}

// Delete destroys the profile after a password re-check. A wrong password
// leaves the record untouched.
func (svc *Service) Delete(id, pwd string) error {
	tr, err := svc.repo.GetTeacherByID(id)
	if err != nil {
		return err
	}
	if err = tr.CheckPassword(pwd); err != nil {
		return ErrInvalidCredentials
	}
	return svc.repo.DeleteTeacherByID(id)
}

// ResetPassword rehashes and stores a new password for the teacher
// registered under email. Used by the admin CLI.
func (svc *Service) ResetPassword(email, pwd string) error {
	tr, err := svc.repo.GetTeacherByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err = tr.SetPassword(pwd); err != nil {
		return err
	}
	tr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateTeacher(tr, nil)
	return err
}

func (svc *Service) Announce(id, text string) (Teacher, error) {
	ann := Announcement{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.AppendAnnouncement(id, ann)
}

func (svc *Service) DeleteAnnouncement(id, announcementID string) (Teacher, error) {
	return svc.repo.RemoveAnnouncement(id, announcementID)
}

func (svc *Service) sendWelcomeEmail(tr Teacher) {
	if svc.mailSvc == nil {
		return
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour consultation profile is live. Students can now find "+
			"your office hours and research interests at %s/teachers/%s.\n\n"+
			"You can edit your profile and post announcements after logging in.",
		tr.Name, svc.conf.FrontendBaseURL, tr.ID,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: tr.Name, Address: tr.Email}},
		Subject: "Welcome to " + svc.conf.AppName,
		Body:    body,
	})
}
