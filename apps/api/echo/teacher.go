package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/profconnect/backend/core"
	"github.com/profconnect/backend/core/teacher"
)

var errTeacherNotFoundInCtx = errors.New("teacher object not found in echo.Context")

type teacherApi struct {
	svc      *teacher.Service
	auth     *sessionAuth
	uploads  core.FileStorage
	validate *validator.Validate
}

func registerTeacherAPI(g *echo.Group, auth *sessionAuth, deps ServerDeps) {
	api := teacherApi{
		svc:      deps.TeacherSvc,
		auth:     auth,
		uploads:  deps.Uploads,
		validate: deps.Validate,
	}

	// un-authed endpoints: anyone can browse, search and register
	g.POST("/teachers", api.create)
	g.GET("/teachers", api.queryAll)
	g.GET("/teachers/search", api.search)
	g.GET("/teachers/:id", api.retrieve)
	g.POST("/teacher-login", api.login)
	g.POST("/teacher-logout", api.logout)
	g.GET("/check-auth", api.checkAuth)

	// authed endpoints: only the profile owner may mutate it
	g.PUT("/teachers/:id", api.update, auth.requireOwner("id", api.svc))
	g.DELETE("/teachers/delete", api.destroy, auth.require())
	g.POST("/teachers/:id/announcements", api.announce, auth.requireOwner("id", api.svc))
	g.DELETE("/teachers/:teacherId/announcements/:announcementId",
		api.deleteAnnouncement, auth.requireOwner("teacherId", api.svc))
}

// Handlers

func (api *teacherApi) create(ctx echo.Context) error {
	data, err := bindNewTeacher(ctx)
	if err != nil {
		return err
	}
	if err = data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	if data.Photo, err = savePhoto(ctx, api.uploads); err != nil {
		return errors.Wrap(err, "storing photo")
	}

	tr, err := api.svc.Register(data)
	if err != nil {
		return errors.Wrap(err, "registering teacher")
	}

	// registering logs the teacher in
	if err = api.auth.login(ctx, tr.ID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tr)
}

func (api *teacherApi) queryAll(ctx echo.Context) error {
	teachers, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []teacher.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) search(ctx echo.Context) error {
	var filter teacher.QueryFilter
	if raw := ctx.QueryParam("interests"); raw != "" {
		filter.Interests = strings.Split(raw, ",")
	}

	teachers, err := api.svc.Search(filter)
	if err != nil {
		return errors.Wrap(err, "searching teachers")
	}
	if teachers == nil {
		teachers = []teacher.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	tr, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding teacher by ID")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *teacherApi) update(ctx echo.Context) error {
	tr, ok := ctx.Get(contextObjectKey).(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTeacherNotFoundInCtx, "retrieving object from context")
	}

	data, err := bindUpdateTeacher(ctx)
	if err != nil {
		return err
	}
	if err = data.Validate(tr, api.validate, api.svc); err != nil {
		return err
	}

	if data.Photo, err = savePhoto(ctx, api.uploads); err != nil {
		return errors.Wrap(err, "storing photo")
	}

	tr, err = api.svc.Update(tr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	var data teacher.DeleteTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// password re-entry is not enough: the session must own the record
	sess, err := api.auth.current(ctx)
	if err != nil {
		return err
	}
	if sess.TeacherID != data.TeacherID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(data.TeacherID, data.Password); err != nil {
		switch errors.Cause(err) {
		case teacher.ErrNotFound:
			return errHttpNotFound
		case teacher.ErrInvalidCredentials:
			return core.NewValidationError(teacher.ErrInvalidCredentials)
		}
		return errors.Wrap(err, "deleting teacher")
	}

	api.auth.store.DeleteByTeacher(data.TeacherID)
	api.auth.clearCookie(ctx)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Profile deleted"})
}

func (api *teacherApi) announce(ctx echo.Context) error {
	tr, ok := ctx.Get(contextObjectKey).(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTeacherNotFoundInCtx, "retrieving object from context")
	}

	var data teacher.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tr, err := api.svc.Announce(tr.ID, data.Text)
	if err != nil {
		return errors.Wrap(err, "posting announcement")
	}
	return ctx.JSON(http.StatusCreated, tr)
}

func (api *teacherApi) deleteAnnouncement(ctx echo.Context) error {
	tr, ok := ctx.Get(contextObjectKey).(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTeacherNotFoundInCtx, "retrieving object from context")
	}

	tr, err := api.svc.DeleteAnnouncement(tr.ID, ctx.Param("announcementId"))
	if err != nil {
		if errors.Cause(err) == teacher.ErrAnnouncementNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting announcement")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *teacherApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tr, err := api.svc.Authenticate(data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == teacher.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = api.auth.login(ctx, tr.ID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		Teacher: LoginTeacher{ID: tr.ID, Name: tr.Name, Email: tr.Email},
	})
}

func (api *teacherApi) logout(ctx echo.Context) error {
	api.auth.logout(ctx)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Logout successful"})
}

func (api *teacherApi) checkAuth(ctx echo.Context) error {
	sess, err := api.auth.current(ctx)
	if err != nil {
		return ctx.JSON(http.StatusOK, CheckAuthResponse{LoggedIn: false})
	}
	return ctx.JSON(http.StatusOK, CheckAuthResponse{LoggedIn: true, User: sess.TeacherID})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginTeacher struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	LoginResponse struct {
		Message string       `json:"message"`
		Teacher LoginTeacher `json:"teacher"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}

	CheckAuthResponse struct {
		LoggedIn bool   `json:"loggedIn"`
		User     string `json:"user,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
