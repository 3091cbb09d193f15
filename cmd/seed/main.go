// Command seed loads a handful of sample buses into an empty database.
// It waits for the database to come up, making it safe to run alongside
// docker compose.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/busreserve/bus-reservation/internal/domain"
	"github.com/busreserve/bus-reservation/internal/repository"
	"github.com/busreserve/bus-reservation/internal/service"
	"github.com/busreserve/bus-reservation/pkg/config"
	"github.com/busreserve/bus-reservation/pkg/database"
	"github.com/busreserve/bus-reservation/pkg/logger"
	"github.com/busreserve/bus-reservation/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: "seed",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var db *database.PostgresDB
	result := retry.Do(ctx, &retry.Config{
		MaxRetries:      10,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
	}, func(ctx context.Context) error {
		var err error
		db, err = database.NewPostgres(ctx, &database.PostgresConfig{
			Host:           cfg.Database.Host,
			Port:           cfg.Database.Port,
			User:           cfg.Database.User,
			Password:       cfg.Database.Password,
			Database:       cfg.Database.DBName,
			SSLMode:        cfg.Database.SSLMode,
			MaxConns:       5,
			MinConns:       1,
			ConnectTimeout: 5 * time.Second,
		})
		return err
	})
	if result.Err != nil {
		appLog.Fatal(fmt.Sprintf("Database never became ready: %v", result.LastError))
	}
	defer db.Close()

	busRepo := repository.NewPostgresBusRepository(db.Pool())
	reservationRepo := repository.NewPostgresReservationRepository(db.Pool())
	busService := service.NewBusService(busRepo, reservationRepo, nil, &service.BusServiceConfig{Logger: appLog})

	existing, err := busRepo.List(ctx)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to list buses: %v", err))
	}
	if len(existing) > 0 {
		appLog.Info("Buses already present, nothing to seed", zap.Int("count", len(existing)))
		return
	}

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	buses := []*domain.Bus{
		{BusNumber: "BR-101", Source: "Delhi", Destination: "Mumbai", Price: 1200, DepartureTime: base.Add(6 * time.Hour), TotalSeats: 40},
		{BusNumber: "BR-102", Source: "Mumbai", Destination: "Delhi", Price: 1150, DepartureTime: base.Add(8 * time.Hour), TotalSeats: 40},
		{BusNumber: "BR-201", Source: "Delhi", Destination: "Jaipur", Price: 650, DepartureTime: base.Add(3 * time.Hour), TotalSeats: 35},
		{BusNumber: "BR-301", Source: "Bangalore", Destination: "Chennai", Price: 800, DepartureTime: base.Add(12 * time.Hour), TotalSeats: 45},
		{BusNumber: "BR-302", Source: "Chennai", Destination: "Bangalore", Price: 780, DepartureTime: base.Add(14 * time.Hour), TotalSeats: 45},
	}

	for _, bus := range buses {
		if _, err := busService.CreateBus(ctx, bus); err != nil {
			appLog.Error("Failed to seed bus",
				zap.String("bus_number", bus.BusNumber),
				zap.Error(err),
			)
			continue
		}
	}

	appLog.Info("Seeding complete", zap.Int("buses", len(buses)))
}
