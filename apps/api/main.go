package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/edulink/backend/apps/api/echo"
	"github.com/edulink/backend/core"
	"github.com/edulink/backend/core/announcement"
	"github.com/edulink/backend/core/student"
	"github.com/edulink/backend/core/user"
	emailsvc "github.com/edulink/backend/services/email"
	identitysvc "github.com/edulink/backend/services/identity"
	logsvc "github.com/edulink/backend/services/logger"
	dummydb "github.com/edulink/backend/storage/dummy"
	firestoredb "github.com/edulink/backend/storage/firestore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	ctx := context.Background()

	// set up record store + identity service; hosted backends in QA/PROD,
	// in-memory stand-ins in DEV/TEST
	var (
		usrRepo user.Repository
		stdRepo student.Repository
		annRepo announcement.Repository
		idSvc   core.IdentityService
	)
	if conf.Debug || conf.TestMode {
		db, err := dummydb.Open()
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening store: %v", err), err)
		}
		usrRepo = dummydb.NewUserRepository(db)
		stdRepo = dummydb.NewStudentRepository(db)
		annRepo = dummydb.NewAnnouncementRepository(db)
		idSvc = identitysvc.NewDummyService(conf)
	} else {
		app, err := firestoredb.NewApp(ctx, conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("initializing backend app: %v", err), err)
		}
		client, err := firestoredb.Open(ctx, app)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening store: %v", err), err)
		}
		defer func() {
			if err = client.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing store: %v", err), err)
			}
		}()
		usrRepo = firestoredb.NewUserRepository(client)
		stdRepo = firestoredb.NewStudentRepository(client)
		annRepo = firestoredb.NewAnnouncementRepository(client)
		if idSvc, err = identitysvc.NewFirebaseService(ctx, app, conf); err != nil {
			logger.Fatal(fmt.Sprintf("initializing identity service: %v", err), err)
		}
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(usrRepo, idSvc, mailSvc, conf)
	stdSvc := student.NewService(stdRepo)
	annSvc := announcement.NewService(annRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			IdentitySvc:     idSvc,
			UserSvc:         usrSvc,
			StudentSvc:      stdSvc,
			AnnouncementSvc: annSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
