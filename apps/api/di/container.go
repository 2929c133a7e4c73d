// Package di wires the API server dependencies with a dig container.
package di

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/examcenter/backend/apps/api/echo"
	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/admin"
	"github.com/examcenter/backend/core/contact"
	"github.com/examcenter/backend/core/course"
	"github.com/examcenter/backend/core/resource"
	"github.com/examcenter/backend/core/testdate"
	"github.com/examcenter/backend/core/trainer"
	blobsvc "github.com/examcenter/backend/services/blob"
	emailsvc "github.com/examcenter/backend/services/email"
	"github.com/examcenter/backend/services/identity"
	logsvc "github.com/examcenter/backend/services/logger"
	"github.com/examcenter/backend/services/turnstile"
	"github.com/examcenter/backend/storage/cache"
	"github.com/examcenter/backend/storage/database"
	inmemdb "github.com/examcenter/backend/storage/database/inmem"
	sqlxrepos "github.com/examcenter/backend/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are backed by postgres, or by memory when no database engine is configured.
// DB is nil in the latter case.
type Repositories struct {
	dig.Out
	DB        *sqlx.DB
	TestDates testdate.Repository
	Courses   course.Repository
	Trainers  trainer.Repository
	Resources resource.Repository
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.UseInMemory() {
		loggerParam.Logger.Warn("no database engine configured, data lives in memory")
		db := inmemdb.NewDB()
		return Repositories{
			TestDates: inmemdb.NewTestDateRepository(db),
			Courses:   inmemdb.NewCourseRepository(db),
			Trainers:  inmemdb.NewTrainerRepository(db),
			Resources: inmemdb.NewResourceRepository(db),
		}
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return Repositories{
		DB:        db,
		TestDates: sqlxrepos.NewTestDateRepository(db),
		Courses:   sqlxrepos.NewCourseRepository(db),
		Trainers:  sqlxrepos.NewTrainerRepository(db),
		Resources: sqlxrepos.NewResourceRepository(db),
	}
}

func newCalendarCache(conf *core.Config, logger core.Logger) testdate.Cache {
	if conf.Redis.Addr == "" {
		return cache.NewMemoryCache(conf.Redis.TTL)
	}
	return cache.NewRedisCache(cache.NewRedisClient(conf), conf, logger)
}

func newBlobStore(conf *core.Config, logger core.Logger) core.BlobStore {
	if conf.OSS.Bucket == "" {
		return blobsvc.NewConsoleStore(logger)
	}
	store, err := blobsvc.NewOSSStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up object storage: %v", err), err)
	}
	return store
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newIdentityVerifier(conf *core.Config, logger core.Logger) admin.IdentityVerifier {
	return identity.NewGoogleVerifier(conf, logger)
}

func newAuthorizer(conf *core.Config) admin.Authorizer {
	return admin.ParseAllowlist(conf.AdminEmails)
}

func newChallengeVerifier(conf *core.Config) contact.ChallengeVerifier {
	return turnstile.NewVerifier(conf)
}

func newLocation(conf *core.Config) *time.Location {
	return conf.Location()
}

func newContactService(verifier contact.ChallengeVerifier, mailSvc core.EmailService, conf *core.Config) contact.Service {
	return contact.NewService(verifier, mailSvc, conf.ContactRecipients)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type serverParams struct {
	dig.In

	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	AdminSvc    admin.Service
	TestDateSvc testdate.Service
	CourseSvc   course.Service
	TrainerSvc  trainer.Service
	ResourceSvc resource.Service
	ContactSvc  contact.Service
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		AdminSvc:    p.AdminSvc,
		TestDateSvc: p.TestDateSvc,
		CourseSvc:   p.CourseSvc,
		TrainerSvc:  p.TrainerSvc,
		ResourceSvc: p.ResourceSvc,
		ContactSvc:  p.ContactSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newLocation))
	must(c.Provide(newRepositories))
	must(c.Provide(newCalendarCache))
	must(c.Provide(newBlobStore))
	must(c.Provide(newEmailService))
	must(c.Provide(newIdentityVerifier))
	must(c.Provide(newAuthorizer))
	must(c.Provide(newChallengeVerifier))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(admin.NewService))
	must(c.Provide(testdate.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(trainer.NewService))
	must(c.Provide(resource.NewService))
	must(c.Provide(newContactService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
