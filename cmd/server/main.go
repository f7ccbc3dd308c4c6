package main // Entry point package

import (
	"context" // cancellation for the background workers
	"log"     // Logging library
	"strconv" // SMTP port parsing

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/studyroom-seat-reservation/internal/clock"      // UTC time source
	"github.com/iliyamo/studyroom-seat-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/studyroom-seat-reservation/internal/database"   // MySQL pool
	"github.com/iliyamo/studyroom-seat-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/studyroom-seat-reservation/internal/mailer"     // notification backends
	"github.com/iliyamo/studyroom-seat-reservation/internal/middleware" // rate limit + cache middleware
	"github.com/iliyamo/studyroom-seat-reservation/internal/queue"      // booking.confirmed consumer
	"github.com/iliyamo/studyroom-seat-reservation/internal/repository" // DB repositories
	"github.com/iliyamo/studyroom-seat-reservation/internal/router"     // Internal router setup
	"github.com/iliyamo/studyroom-seat-reservation/internal/scheduler"  // lifecycle sweeps
	"github.com/iliyamo/studyroom-seat-reservation/internal/service"    // booking engine
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and response cache disabled")
	}

	clk := clock.Real{}

	rooms := repository.NewRoomRepo(db)
	seats := repository.NewSeatRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	reservations := service.NewReservationService(rooms, seats, bookings, clk, cfg.MaxBookingHours)
	checkins := service.NewCheckInService(rooms, seats, bookings, clk)
	codes := service.NewCodeIssuer(rooms, clk)

	notifier := buildNotifier(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reminder, expiry, completion and code-rotation sweeps.
	sched := scheduler.New(bookings, rooms, codes, notifier, clk)
	go sched.Run(ctx)

	// Consumes booking.confirmed events into the audit log.  Failures
	// here must not take the API down.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(rooms, seats)
	studentH := handler.NewStudentHandler(reservations, checkins, bookings, rooms, seats, users, clk)
	adminH := handler.NewAdminHandler(rooms, seats, bookings, users, codes, clk)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, cacheMW)
	router.RegisterStudent(e, studentH, cfg.JWTSecret, nil)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// buildNotifier selects the mail backend from MAIL_DRIVER.  Unknown
// drivers fall back to the log-only dev mailer rather than failing
// startup.
func buildNotifier(cfg config.Config) mailer.Notifier {
	switch cfg.MailDriver {
	case "smtp":
		port, err := strconv.Atoi(cfg.SMTPPort)
		if err != nil {
			log.Fatalf("invalid SMTP_PORT: %q", cfg.SMTPPort)
		}
		return mailer.NewSMTPMailer(cfg.SMTPHost, port, cfg.MailFromAddr, cfg.SMTPUser, cfg.SMTPPass)
	case "mailersend":
		return mailer.NewMailerSendMailer(cfg.MailerSendToken, cfg.MailFromName, cfg.MailFromAddr)
	case "dev":
		return mailer.NewDevMailer()
	default:
		log.Printf("unknown MAIL_DRIVER %q, using dev mailer", cfg.MailDriver)
		return mailer.NewDevMailer()
	}
}
