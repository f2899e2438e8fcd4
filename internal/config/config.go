package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultMailHost = "live.smtp.mailtrap.io"
	defaultMailPort = 587
)

type Config struct {
	Addr  string
	Debug bool

	DBDriver    string
	MongoURI    string
	MongoDB     string
	DSN         string
	SQLitePath  string
	MaxBodySize int64

	NotifyEmails string
	// NotifyBaseline overrides the address that always receives notifications.
	NotifyBaseline string
	Mail           Mail

	GalleryDir string

	AdminEmails      []string
	GoogleKey        string
	GoogleSecret     string
	OAuthCallbackURL string
	SessionSecret    string
	SecureCookies    bool
	// AdminRedirect is where a successful admin login lands.
	AdminRedirect string
}

// Mail holds SMTP transport settings. Any of Host, User, Pass or From being
// empty leaves the transport unusable.
type Mail struct {
	Host   string
	Port   int
	User   string
	Pass   string
	From   string
	Secure bool
}

func (m Mail) Complete() bool {
	return m.Host != "" && m.User != "" && m.Pass != "" && m.From != ""
}

// LoadDotEnv reads .env into the process environment. A missing file is not
// fatal: production hosts usually inject settings directly.
func LoadDotEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// Load builds the configuration from the process environment.
func Load() *Config {
	c := &Config{
		Addr:  getEnv("ADDR", ":3000"),
		Debug: getBool("DEBUG"),

		MongoURI:    os.Getenv("MONGODB_URI"),
		MongoDB:     getEnv("MONGODB_DB", "michele_memorial"),
		DSN:         os.Getenv("DSN"),
		SQLitePath:  getEnv("SQLITE_PATH", "memorial.db"),
		MaxBodySize: int64(getInt("MAX_BODY_BYTES", 100<<20)),

		NotifyEmails:   os.Getenv("NOTIFY_EMAILS"),
		NotifyBaseline: strings.TrimSpace(os.Getenv("NOTIFY_BASELINE")),
		Mail:           loadMail(),

		GalleryDir: getEnv("GALLERY_DIR", "public/assets"),

		AdminEmails:      splitList(os.Getenv("ADMIN_EMAILS")),
		GoogleKey:        os.Getenv("GOOGLE_KEY"),
		GoogleSecret:     os.Getenv("GOOGLE_SECRET"),
		OAuthCallbackURL: getEnv("OAUTH_CALLBACK_URL", "http://localhost:3000/auth/google/callback"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		SecureCookies:    getBool("SECURE_COOKIES"),
		AdminRedirect:    getEnv("ADMIN_REDIRECT", "/api/admin/data"),
	}

	c.DBDriver = strings.ToLower(os.Getenv("DB_DRIVER"))
	if c.DBDriver == "" {
		switch {
		case c.MongoURI != "":
			c.DBDriver = DriverMongo
		case c.DSN != "":
			c.DBDriver = DriverPostgres
		default:
			c.DBDriver = DriverSQLite
		}
	}

	return c
}

func loadMail() Mail {
	m := Mail{
		Host: firstEnv("MAILTRAP_HOST", "EMAIL_HOST", "SMTP_HOST"),
		User: firstEnv("MAILTRAP_USER", "EMAIL_USER", "SMTP_USER"),
		Pass: firstEnv("MAILTRAP_TOKEN", "EMAIL_PASSWORD", "SMTP_PASS"),
		From: firstEnv("EMAIL_FROM", "SMTP_FROM"),
		Port: defaultMailPort,
	}

	if m.Host == "" {
		m.Host = defaultMailHost
	}

	if m.User == "" && os.Getenv("MAILTRAP_TOKEN") != "" {
		m.User = "api"
	}

	if p := firstEnv("EMAIL_PORT", "SMTP_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			m.Port = n
		}
	}

	m.Secure = getBool("EMAIL_SECURE") || getBool("SMTP_SECURE") || m.Port == 465

	return m
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string) bool {
	return os.Getenv(key) == "true"
}

func splitList(s string) []string {
	var res []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}
