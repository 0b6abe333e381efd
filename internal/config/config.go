package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string
	HTTPPort string

	MongoURI  string
	MongoName string

	RedisAddr string

	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Timezone is the IANA zone used for week bucketing and the run schedule.
	Timezone          string
	ComplianceRRule   string
	ComplianceLockTTL time.Duration

	ReminderWindow time.Duration
	ReminderSweep  time.Duration

	QueueBackend    string
	RateLimitPerMin int

	AppName      string
	SendgridKey  string
	MailFrom     string
	MailFromName string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() App {
	_ = godotenv.Load()

	return App{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPPort: getEnv("HTTP_PORT", "8081"),

		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoName: getEnv("MONGO_DB", "tutorhub"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		JWTIssuer:     getEnv("JWT_ISSUER", "tutorhub"),
		JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:     durationEnv("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    durationEnv("REFRESH_TTL", 24*time.Hour),

		Timezone:          getEnv("TIMEZONE", "UTC"),
		ComplianceRRule:   getEnv("COMPLIANCE_RRULE", "FREQ=WEEKLY;BYDAY=SA;BYHOUR=6;BYMINUTE=0;BYSECOND=0"),
		ComplianceLockTTL: durationEnv("COMPLIANCE_LOCK_TTL", 30*time.Minute),

		ReminderWindow: durationEnv("REMINDER_WINDOW", 24*time.Hour),
		ReminderSweep:  durationEnv("REMINDER_SWEEP", time.Hour),

		QueueBackend:    getEnv("QUEUE_BACKEND", "redis"),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),

		AppName:      getEnv("APP_NAME", "TutorHub"),
		SendgridKey:  getEnv("SENDGRID_API_KEY", ""),
		MailFrom:     getEnv("MAIL_FROM", "noreply@tutorhub.local"),
		MailFromName: getEnv("MAIL_FROM_NAME", "TutorHub"),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "tutorhub"),
	}
}

// Location resolves the configured timezone, falling back to UTC on bad input.
func (a App) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Printf("invalid TIMEZONE %q: %v, using UTC", a.Timezone, err)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
