package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/database"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/queue"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/reservation"
	"github.com/iliyamo/study-room-reservation/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and occupancy cache disabled")
	}

	slots := repository.NewSlotCounterRepo(db)
	usage := repository.NewUsageRepo(db)
	bookings := repository.NewBookingRepo(db)
	students := repository.NewStudentRepo(db)
	tokens := repository.NewTokenRepo(db)
	records := repository.NewRecordRepo(db)

	store := repository.NewLedgerStore(db, slots, usage, bookings)
	engine := reservation.NewEngine(store)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, students, tokens),
		Slots:        handler.NewSlotHandler(slots),
		Reservations: handler.NewReservationHandler(engine, bookings),
		Records:      handler.NewRecordHandler(records, bookings),
		Students:     handler.NewAdminStudentHandler(cfg, students, tokens),
		AdminRes:     handler.NewAdminReservationHandler(bookings),
	}

	// The consumer reconnects on its own; losing the broker never takes
	// the API down.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
