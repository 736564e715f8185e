package teacher_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profconnect/backend/core"
	"github.com/profconnect/backend/core/teacher"
	emailsvc "github.com/profconnect/backend/services/email"
	inmemdb "github.com/profconnect/backend/storage/database/inmem"
)

func setup(t *testing.T) (*teacher.Service, teacher.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewTeacherRepository(db)
	conf := core.NewConfig()
	svc := teacher.NewService(repo, emailsvc.NewConsoleService(conf), conf)
	return svc, repo
}

func newTeacherFixture(name, email string, interests ...string) teacher.NewTeacher {
	return teacher.NewTeacher{
		Name:              name,
		Email:             email,
		Title:             "Prof",
		School:            "SOT",
		Department:        "CSE",
		CabinNumber:       "101",
		Password:          "s3cret",
		ResearchInterests: interests,
	}
}

func mustGrid(t *testing.T, blob string) teacher.WeekGrid {
	var grid teacher.WeekGrid
	if err := json.Unmarshal([]byte(blob), &grid); err != nil {
		t.Fatalf("mustGrid() failed: %v", err)
	}
	return grid
}

func TestServiceRegister(t *testing.T) {
	svc, _ := setup(t)

	nt := newTeacherFixture("A", "a@x.com", "ml")
	nt.AvailableSlots = mustGrid(t, `{"Mon":["9-10"],"Sat":["9-10"]}`)

	tr, err := svc.Register(nt)
	require.NoError(t, err)

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, "A", tr.Name)
	assert.Equal(t, []teacher.Announcement{}, tr.Announcements)

	// stored grid equals the submitted mapping restricted to the vocabulary
	want := mustGrid(t, `{"Mon":["9-10"]}`)
	assert.Equal(t, want, tr.AvailableSlots)

	// password is never stored in the clear
	assert.NoError(t, tr.CheckPassword("s3cret"))
	assert.Error(t, tr.CheckPassword("wrong"))

	got, err := svc.GetByID(tr.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got.AvailableSlots)
}

func TestServiceRegisterSendsWelcomeEmail(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	conf := core.NewConfig()
	mailSvc := emailsvc.NewConsoleService(conf)
	svc := teacher.NewService(inmemdb.NewTeacherRepository(db), mailSvc, conf)

	_, err = svc.Register(newTeacherFixture("A", "a@x.com"))
	require.NoError(t, err)

	msgs := mailSvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "a@x.com", msgs[0].To[0].Address)
}

func TestServiceEmailUniqueness(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Register(newTeacherFixture("A", "a@x.com"))
	require.NoError(t, err)

	err = svc.CheckEmailUniqueness("a@x.com")
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Fields[0].Field)

	// a teacher may keep their own email on update
	tr, err := svc.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.NoError(t, svc.CheckEmailUniqueness("a@x.com", tr))
}

func TestServiceAuthenticate(t *testing.T) {
	svc, _ := setup(t)

	tr, err := svc.Register(newTeacherFixture("A", "a@x.com"))
	require.NoError(t, err)

	got, err := svc.Authenticate("a@x.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)

	_, err = svc.Authenticate("a@x.com", "wrong")
	assert.Equal(t, teacher.ErrInvalidCredentials, err)

	_, err = svc.Authenticate("nobody@x.com", "s3cret")
	assert.Equal(t, teacher.ErrInvalidCredentials, err)
}

func TestServiceSearch(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Register(newTeacherFixture("Carol", "c@x.com", "networks"))
	require.NoError(t, err)
	_, err = svc.Register(newTeacherFixture("Alice", "a@x.com", "ML", "compilers"))
	require.NoError(t, err)
	_, err = svc.Register(newTeacherFixture("Bob", "b@x.com"))
	require.NoError(t, err)

	// empty filter returns everyone, ascending by name
	all, err := svc.Search(teacher.QueryFilter{})
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, tr := range all {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names)

	// interest match is an intersection test, case-insensitive
	got, err := svc.Search(teacher.QueryFilter{Interests: []string{"ml"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].Name)

	got, err = svc.Search(teacher.QueryFilter{Interests: []string{"ml", "networks"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0].Name)
	assert.Equal(t, "Carol", got[1].Name)

	got, err = svc.Search(teacher.QueryFilter{Interests: []string{"biology"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServiceUpdate(t *testing.T) {
	svc, _ := setup(t)

	tr, err := svc.Register(newTeacherFixture("A", "a@x.com"))
	require.NoError(t, err)

	grid := mustGrid(t, `{"Fri":["5-6"]}`)
	got, err := svc.Update(tr.ID, teacher.UpdateTeacher{
		Title:          "Assoc Prof",
		AvailableSlots: &grid,
	})
	require.NoError(t, err)

	// set fields replaced, the rest kept
	assert.Equal(t, "Assoc Prof", got.Title)
	assert.Equal(t, grid, got.AvailableSlots)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "101", got.CabinNumber)

	_, err = svc.Update("no-such-id", teacher.UpdateTeacher{Title: "X"})
	assert.Equal(t, teacher.ErrNotFound, err)
}

func TestServiceUpdateClearsOptionalLinks(t *testing.T) {
	svc, _ := setup(t)

	nt := newTeacherFixture("A", "a@x.com")
	nt.LinkedIn = "https://linkedin.com/in/a"
	nt.ProfileLink = "https://example.edu/a"
	tr, err := svc.Register(nt)
	require.NoError(t, err)
	require.NotEmpty(t, tr.LinkedIn)

	// the optional links are replaced as submitted: empty clears them
	got, err := svc.Update(tr.ID, teacher.UpdateTeacher{Title: "Assoc Prof"})
	require.NoError(t, err)
	assert.Empty(t, got.LinkedIn)
	assert.Empty(t, got.ProfileLink)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "Assoc Prof", got.Title)
}

func TestServiceResetPassword(t *testing.T) {
	svc, _ := setup(t)

	tr, err := svc.Register(newTeacherFixture("A", "a@x.com"))
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword("A@X.com", "new-pwd"))

	got, err := svc.GetByID(tr.ID)
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("new-pwd"))
	assert.Error(t, got.CheckPassword("s3cret"))
	assert.Equal(t, "A", got.Name)

	assert.Equal(t, teacher.ErrNotFound, svc.ResetPassword("nobody@x.com", "x"))
}

func TestServiceDelete(t *testing.T) {
	svc, _ := setup(t)

	tr, err := svc.Register(newTeacherFixture("A", "a@x.com"))
	require.NoError(t, err)

	// wrong password leaves the record unchanged
	err = svc.Delete(tr.ID, "wrong")
	assert.Equal(t, teacher.ErrInvalidCredentials, err)
	_, err = svc.GetByID(tr.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.Delete(tr.ID, "s3cret"))
	_, err = svc.GetByID(tr.ID)
	assert.Equal(t, teacher.ErrNotFound, err)
}

func TestServiceAnnouncements(t *testing.T) {
	svc, _ := setup(t)

	tr, err := svc.Register(newTeacherFixture("A", "a@x.com"))
	require.NoError(t, err)

	tr, err = svc.Announce(tr.ID, "office hours moved")
	require.NoError(t, err)
	tr, err = svc.Announce(tr.ID, "grades are out")
	require.NoError(t, err)

	require.Len(t, tr.Announcements, 2)
	assert.Equal(t, "office hours moved", tr.Announcements[0].Text)
	assert.NotEmpty(t, tr.Announcements[0].ID)
	assert.False(t, tr.Announcements[0].CreatedAt.IsZero())

	tr, err = svc.DeleteAnnouncement(tr.ID, tr.Announcements[0].ID)
	require.NoError(t, err)
	require.Len(t, tr.Announcements, 1)
	assert.Equal(t, "grades are out", tr.Announcements[0].Text)

	_, err = svc.DeleteAnnouncement(tr.ID, "no-such-announcement")
	assert.Equal(t, teacher.ErrAnnouncementNotFound, err)
}
