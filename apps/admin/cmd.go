package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/profconnect/backend/core/teacher"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db  *sqlx.DB
	svc *teacher.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a migration command: up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix")
	fmt.Println("  addteacher -name NAME -email EMAIL -title TITLE -school SCHOOL -department DEPARTMENT -cabin CABIN - register a teacher profile; the password is prompted")
	fmt.Println("  resetpassword -email EMAIL - reset a teacher's password; the new password is prompted")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ExitOnError)
	addName := addTeacherCmd.String("name", "", "The teacher's full name.")
	addEmail := addTeacherCmd.String("email", "", "The teacher's email. Doubles as the login key.")
	addTitle := addTeacherCmd.String("title", "", "The teacher's title.")
	addSchool := addTeacherCmd.String("school", "", "The teacher's school.")
	addDepartment := addTeacherCmd.String("department", "", "The teacher's department.")
	addCabin := addTeacherCmd.String("cabin", "", "The teacher's cabin number.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The teacher's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addName == "" || *addEmail == "" || *addTitle == "" ||
			*addSchool == "" || *addDepartment == "" || *addCabin == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.addTeacher(teacher.NewTeacher{
			Name:        *addName,
			Email:       *addEmail,
			Title:       *addTitle,
			School:      *addSchool,
			Department:  *addDepartment,
			CabinNumber: *addCabin,
			Password:    pwd,
		})
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}
