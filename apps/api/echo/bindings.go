package echoapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/profconnect/backend/core"
	"github.com/profconnect/backend/core/teacher"
)

var (
	errBadSlotsBlob     = errors.New("invalid availableSlots format")
	errBadInterestsBlob = errors.New("invalid researchInterests format")
)

// The registration and profile-edit pages submit multipart forms: plain
// text fields, the photo file, and availableSlots/researchInterests as
// JSON text blobs that must be parsed here.

func bindNewTeacher(ctx echo.Context) (teacher.NewTeacher, error) {
	form, err := ctx.FormParams()
	if err != nil {
		return teacher.NewTeacher{}, echo.NewHTTPError(http.StatusBadRequest, "invalid form payload").SetInternal(err)
	}

	nt := teacher.NewTeacher{
		Name:        ctx.FormValue("name"),
		Email:       ctx.FormValue("email"),
		Title:       ctx.FormValue("title"),
		School:      ctx.FormValue("school"),
		Department:  ctx.FormValue("department"),
		CabinNumber: ctx.FormValue("cabinNumber"),
		LinkedIn:    ctx.FormValue("linkedin"),
		ProfileLink: ctx.FormValue("profileLink"),
		Password:    ctx.FormValue("password"),
	}

	slotsBlob, ok := formValue(form, "availableSlots")
	if !ok || slotsBlob == "" {
		return teacher.NewTeacher{}, core.NewValidationError(
			nil, core.FieldError{Field: "availableSlots", Error: "this field is required"})
	}
	if err = json.Unmarshal([]byte(slotsBlob), &nt.AvailableSlots); err != nil {
		return teacher.NewTeacher{}, core.NewValidationError(errBadSlotsBlob)
	}

	if blob, ok := formValue(form, "researchInterests"); ok && blob != "" {
		if err = json.Unmarshal([]byte(blob), &nt.ResearchInterests); err != nil {
			return teacher.NewTeacher{}, core.NewValidationError(errBadInterestsBlob)
		}
	}
	return nt, nil
}

func bindUpdateTeacher(ctx echo.Context) (teacher.UpdateTeacher, error) {
	form, err := ctx.FormParams()
	if err != nil {
		return teacher.UpdateTeacher{}, echo.NewHTTPError(http.StatusBadRequest, "invalid form payload").SetInternal(err)
	}

	// absent fields stay zero; the record keeps its original values
	ut := teacher.UpdateTeacher{
		Name:        ctx.FormValue("name"),
		Email:       ctx.FormValue("email"),
		Title:       ctx.FormValue("title"),
		School:      ctx.FormValue("school"),
		Department:  ctx.FormValue("department"),
		CabinNumber: ctx.FormValue("cabinNumber"),
		LinkedIn:    ctx.FormValue("linkedin"),
		ProfileLink: ctx.FormValue("profileLink"),
	}

	if blob, ok := formValue(form, "availableSlots"); ok && blob != "" {
		var grid teacher.WeekGrid
		if err = json.Unmarshal([]byte(blob), &grid); err != nil {
			return teacher.UpdateTeacher{}, core.NewValidationError(errBadSlotsBlob)
		}
		ut.AvailableSlots = &grid
	}
	if blob, ok := formValue(form, "researchInterests"); ok && blob != "" {
		if err = json.Unmarshal([]byte(blob), &ut.ResearchInterests); err != nil {
			return teacher.UpdateTeacher{}, core.NewValidationError(errBadInterestsBlob)
		}
	}
	return ut, nil
}

// savePhoto delegates the optional photo file to the upload collaborator
// and returns the stored reference; empty when no file was sent.
func savePhoto(ctx echo.Context, uploads core.FileStorage) (string, error) {
	fh, err := ctx.FormFile("photo")
	if err != nil { // no file attached
		return "", nil
	}
	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening uploaded photo")
	}
	defer src.Close()
	return uploads.Save(fh.Filename, src)
}

func formValue(form url.Values, key string) (string, bool) {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
