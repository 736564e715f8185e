package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/profconnect/backend/core"
	"github.com/profconnect/backend/core/teacher"
	inmemdb "github.com/profconnect/backend/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	svc := teacher.NewService(inmemdb.NewTeacherRepository(db), nil, core.NewConfig())
	return &commandLine{svc: svc}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string   // prompted password, when the command asks for one
	wantErr error
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sqlx.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create requires a NAME argument")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErr: fmt.Errorf("%q: no such command", "lol")},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErr: fmt.Errorf("up-to requires a VERSION argument")},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "announcement_index", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if err == nil || err.Error() != tt.wantErr.Error() {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addTeacher(t *testing.T) {
	cli := setup(t)

	fullArgs := []string{
		"addteacher", "-name", "A", "-email", "A@X.com", "-title", "Prof",
		"-school", "SOT", "-department", "CSE", "-cabin", "101",
	}
	tests := []cliTest{
		{name: "no args", args: []string{"addteacher"}, wantErr: errHelp},
		{name: "missing email", args: []string{"addteacher", "-name", "A"}, wantErr: errHelp},
		{name: "empty password", args: fullArgs, wantErr: errHelp},
		{name: "create", args: fullArgs, pwd: "s3cret"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			// email is lowercased on the way in
			tr, err := cli.svc.GetByEmail("a@x.com")
			if err != nil {
				t.Fatalf("GetByEmail() failed: %v", err)
			}
			if err = tr.CheckPassword("s3cret"); err != nil {
				t.Error("stored password does not match the prompted one")
			}
			if !tr.AvailableSlots.IsEmpty() {
				t.Error("admin-created profile should start with an empty grid")
			}
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cret"), nil }
		err := cli.run(append([]string{"admin"}, fullArgs...))
		if _, ok := err.(*core.ValidationError); !ok {
			t.Fatalf("cli.run() error = %v, want a validation error on email", err)
		}
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	tr, err := cli.svc.Register(teacher.NewTeacher{
		Name: "A", Email: "a@x.com", Title: "Prof", School: "SOT",
		Department: "CSE", CabinNumber: "101", Password: "old-pwd",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "a@x.com"}, wantErr: errHelp},
		{name: "teacher not found", args: []string{"resetpassword", "-email", "lol@x.com"}, pwd: "new-pwd", wantErr: teacher.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "a@x.com"}, pwd: "new-pwd"},
		{name: "reset with mixed-case email", args: []string{"resetpassword", "-email", "A@X.com"}, pwd: "newer-pwd"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			refreshed, err := cli.svc.GetByID(tr.ID)
			if err != nil {
				t.Fatalf("GetByID() failed: %v", err)
			}
			if bytes.Equal(refreshed.PasswordHash, tr.PasswordHash) {
				t.Error("failed to store the new password")
			}
			if err = refreshed.CheckPassword(tt.pwd); err != nil {
				t.Error("new password does not match the prompted one")
			}
		})
	}
}
