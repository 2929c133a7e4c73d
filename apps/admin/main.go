package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/admin"
	"github.com/examcenter/backend/core/testdate"
	logsvc "github.com/examcenter/backend/services/logger"
	"github.com/examcenter/backend/storage/cache"
	"github.com/examcenter/backend/storage/database"
	inmemdb "github.com/examcenter/backend/storage/database/inmem"
	sqlxrepos "github.com/examcenter/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	var db *sql.DB
	var repo testdate.Repository
	if conf.Database.UseInMemory() {
		repo = inmemdb.NewTestDateRepository(inmemdb.NewDB())
	} else {
		sqlxDB, err := database.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer func() { _ = sqlxDB.Close() }()
		db, repo = sqlxDB.DB, sqlxrepos.NewTestDateRepository(sqlxDB)
	}

	// writes must invalidate the calendar cache the API reads from
	var calCache testdate.Cache
	if conf.Redis.Addr != "" {
		calCache = cache.NewRedisCache(cache.NewRedisClient(conf), conf, logger)
	}

	// start CLI
	cli := commandLine{
		db:          db,
		testDateSvc: testdate.NewService(repo, calCache, logger, conf.Location()),
		allowlist:   admin.ParseAllowlist(conf.AdminEmails),
		out:         os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			_, _ = fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
