package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "Darasa")
	Conf.SetDefault("secretKey", "v#2gk)s8m+ab1e8_k!yc4n(7dz&uoq5wer-h2x$cegm2emy^0t")
	Conf.SetDefault("serverAddr", ":8080")

	// upstream academic API
	Conf.SetDefault("apiBaseURL", "http://localhost:8000/v1")
	Conf.SetDefault("apiTimeout", 15*time.Second)

	// session
	Conf.SetDefault("sessionTokenKey", "darasa.session.token")
	Conf.SetDefault("sessionSnapshotKey", "darasa.session.snapshot")
	Conf.SetDefault("sessionPersistMode", "failOpen") // failOpen | failClosed
	Conf.SetDefault("sessionTTL", 7*24*time.Hour)
	Conf.SetDefault("validationTimeout", 10*time.Second)
	Conf.SetDefault("redisAddr", "") // empty -> in-memory session storage

	// navigation
	Conf.SetDefault("protectedPrefix", "/app")
	Conf.SetDefault("defaultLanding", "/app/home")
	Conf.SetDefault("publicRoot", "/")

	Conf.SetDefault("rollbarToken", "")
	Conf.SetDefault("build", "dev") // overridden by the release pipeline

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case strings.ToUpper("TEST"):
		Conf.SetDefault("testMode", true)
	}
	Conf.SetDefault("env", env)
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	Conf.AutomaticEnv()
}
