package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                 string
		Addr                 string
		DebugAddr            string
		ShutdownTimeout      time.Duration
		TokenExpirationDelta time.Duration
	}

	FirebaseConfig struct {
		ProjectID       string
		CredentialsFile string
		// WebAPIKey authorizes the Identity Toolkit sign-in endpoint;
		// the admin credentials do not cover it.
		WebAPIKey string
	}

	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		Build            string
		WorkDir          string
		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		// generated credential length for provisioned accounts
		ProvisionedPasswordLength int

		SendgridAPIKey string
		RollbarToken   string

		Server   ServerConfig
		Firebase FirebaseConfig
	}
)

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and environment variables prefixed with the env name.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "EduLink")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "h^$cegm2emy-poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("provisionedPasswordLength", 10)
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.addr", ":8000")
	conf.SetDefault("server.debugAddr", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.tokenExpirationDelta", 7*24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:                   conf.GetString("appName"),
		Env:                       env,
		Debug:                     conf.GetBool("debug"),
		TestMode:                  conf.GetBool("testMode"),
		Build:                     conf.GetString("build"),
		WorkDir:                   wd,
		SecretKey:                 []byte(conf.GetString("secretKey")),
		FrontendBaseURL:           conf.GetString("frontendBaseURL"),
		DefaultFromEmail:          mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		ProvisionedPasswordLength: conf.GetInt("provisionedPasswordLength"),
		SendgridAPIKey:            conf.GetString("sendgridAPIKey"),
		RollbarToken:              conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                 conf.GetString("server.host"),
			Addr:                 conf.GetString("server.addr"),
			DebugAddr:            conf.GetString("server.debugAddr"),
			ShutdownTimeout:      conf.GetDuration("server.shutdownTimeout"),
			TokenExpirationDelta: conf.GetDuration("server.tokenExpirationDelta"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       conf.GetString("firebase.projectID"),
			CredentialsFile: conf.GetString("firebase.credentialsFile"),
			WebAPIKey:       conf.GetString("firebase.webAPIKey"),
		},
	}
}
