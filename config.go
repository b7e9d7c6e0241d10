package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/avoronov/quiz-game-bot/storage"
)

type config struct {
	Token         string `env:"QUIZ_BOT_TOKEN"`
	LogLevel      string `env:"QUIZ_BOT_LOG_LEVEL" env-default:"info"`
	MetricsAddr   string `env:"QUIZ_BOT_METRICS_ADDR" env-default:":8080"`
	QuestionsFile string `env:"QUIZ_BOT_QUESTIONS" env-default:"questions.json"`

	CommandTTL   time.Duration `env:"QUIZ_BOT_COMMAND_TTL" env-default:"5s"`
	ReplyTTL     time.Duration `env:"QUIZ_BOT_REPLY_TTL" env-default:"15s"`
	TopTTL       time.Duration `env:"QUIZ_BOT_TOP_TTL" env-default:"10s"`
	QuizDuration time.Duration `env:"QUIZ_BOT_QUIZ_DURATION" env-default:"20s"`
	AnnounceTTL  time.Duration `env:"QUIZ_BOT_ANNOUNCE_TTL" env-default:"15s"`
}

func loadConfig() (config, error) {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	var cfg config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type dbCredentials struct {
	Host,
	User,
	Pass,
	Name string

	Port int
	KW   storage.KW
}

// Credentials come from QUIZ_BOT_DB_* variables; any key beyond the
// known five is passed through to the connection string as-is.
func getDbCredentialsFromEnv() (dbCredentials, error) {
	prefix := "QUIZ_BOT_DB_"
	ret := dbCredentials{}
	ret.KW = storage.KW{}
	envList := os.Environ()
	env := make(map[string]string)
	for _, v := range envList {
		kv := strings.SplitN(v, "=", 2)
		env[kv[0]] = kv[1]
	}
	var err error

	ret.Port, err = strconv.Atoi(env[prefix+"PORT"])
	if err != nil {
		return ret, err
	}
	delete(env, prefix+"PORT")

	ret.Host = env[prefix+"HOST"]
	ret.User = env[prefix+"USER"]
	ret.Pass = env[prefix+"PASS"]
	ret.Name = env[prefix+"NAME"]
	delete(env, prefix+"HOST")
	delete(env, prefix+"USER")
	delete(env, prefix+"PASS")
	delete(env, prefix+"NAME")

	for k, v := range env {
		if strings.HasPrefix(k, prefix) {
			ret.KW[strings.ToLower(strings.TrimPrefix(k, prefix))] = v
		}
	}

	return ret, nil
}
