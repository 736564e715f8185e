package main

import (
	"github.com/profconnect/backend/core"
	"github.com/profconnect/backend/core/teacher"
)

// addTeacher registers a profile with an empty availability grid; the
// teacher fills the grid in after logging into the portal.
func (cli *commandLine) addTeacher(nt teacher.NewTeacher) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Title = core.CleanString(nt.Title)
	nt.School = core.CleanString(nt.School)
	nt.Department = core.CleanString(nt.Department)
	nt.CabinNumber = core.CleanString(nt.CabinNumber)

	if err := cli.svc.CheckEmailUniqueness(nt.Email); err != nil {
		return err
	}
	_, err := cli.svc.Register(nt)
	return err
}
