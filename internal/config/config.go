package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign JWTs
	AccessTTLMin    int    // access token time‑to‑live in minutes
	RefreshTTLDays  int    // refresh token time‑to‑live in days
	BcryptCost      int    // bcrypt cost for password hashing
	MaxBookingHours int    // maximum length of a single booking in hours

	MailDriver      string // mail backend: "dev", "smtp" or "mailersend"
	MailFromAddr    string // sender address for outgoing mail
	MailFromName    string // sender display name for outgoing mail
	SMTPHost        string // SMTP server host (smtp driver only)
	SMTPPort        string // SMTP server port (smtp driver only)
	SMTPUser        string // SMTP username (empty disables auth)
	SMTPPass        string // SMTP password
	MailerSendToken string // MailerSend API token (mailersend driver only)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Mail settings are
// only required for the driver that is actually selected, so a local dev
// setup needs nothing beyond MAIL_DRIVER=dev.
func Load() Config {
	cfg := Config{
		Env:             must("APP_ENV"),  // environment (dev/test/prod)
		Port:            must("APP_PORT"), // port to bind the HTTP server
		DBUser:          must("DB_USER"),  // database user
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		MaxBookingHours: envInt("MAX_BOOKING_HOURS", 4),
		MailDriver:      envStr("MAIL_DRIVER", "dev"),
		MailFromAddr:    envStr("MAIL_FROM_ADDR", "noreply@studyroom.local"),
		MailFromName:    envStr("MAIL_FROM_NAME", "Study Room Reservations"),
	}
	switch cfg.MailDriver {
	case "smtp":
		cfg.SMTPHost = must("SMTP_HOST")
		cfg.SMTPPort = must("SMTP_PORT")
		cfg.SMTPUser = os.Getenv("SMTP_USER")
		cfg.SMTPPass = os.Getenv("SMTP_PASS")
	case "mailersend":
		cfg.MailerSendToken = must("MAILERSEND_TOKEN")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
