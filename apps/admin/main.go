package main

import (
	"log"
	"os"

	"github.com/profconnect/backend/core"
	"github.com/profconnect/backend/core/teacher"
	"github.com/profconnect/backend/storage/database"
	sqlxrepos "github.com/profconnect/backend/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(database.Ping(db))

	// start CLI; no mail service, admin-created profiles get no welcome email
	cli := commandLine{
		db:  db,
		svc: teacher.NewService(sqlxrepos.NewTeacherRepository(db), nil, conf),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
