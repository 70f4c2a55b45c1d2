package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/edulink/backend/core"
	"github.com/edulink/backend/core/user"
	emailsvc "github.com/edulink/backend/services/email"
	identitysvc "github.com/edulink/backend/services/identity"
	logsvc "github.com/edulink/backend/services/logger"
	dummydb "github.com/edulink/backend/storage/dummy"
	firestoredb "github.com/edulink/backend/storage/firestore"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	ctx := context.Background()

	// set up record store + identity service
	var (
		usrRepo user.Repository
		idSvc   core.IdentityService
	)
	if conf.Debug || conf.TestMode {
		db, err := dummydb.Open()
		errAndDie(err)
		usrRepo = dummydb.NewUserRepository(db)
		idSvc = identitysvc.NewDummyService(conf)
	} else {
		app, err := firestoredb.NewApp(ctx, conf)
		errAndDie(err)
		client, err := firestoredb.Open(ctx, app)
		errAndDie(err)
		defer client.Close()
		usrRepo = firestoredb.NewUserRepository(client)
		idSvc, err = identitysvc.NewFirebaseService(ctx, app, conf)
		errAndDie(err)
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)
	core.ParseEmailTemplates(conf, appLogger)

	// start CLI
	cli := commandLine{
		usrSvc:   user.NewService(usrRepo, idSvc, emailsvc.NewConsoleService(conf), conf),
		idSvc:    idSvc,
		validate: validate,
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

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
