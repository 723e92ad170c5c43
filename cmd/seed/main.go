package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medislot/medislot-server/internal/booking"
	"github.com/medislot/medislot-server/internal/catalog"
	"github.com/medislot/medislot-server/internal/config"
	"github.com/medislot/medislot-server/internal/db"
)

// clampPerSlot caps the per-slot row count at the slot capacity.
func clampPerSlot(perSlot, capacity int) int {
	if perSlot > capacity {
		return capacity
	}
	if perSlot < 0 {
		return 0
	}
	return perSlot
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// How many appointments to place in each (doctor, slot) pair. Rows
	// are inserted directly, so the count must stay within the capacity
	// the service enforces.
	perSlot := 10
	if v := os.Getenv("SEED_PER_SLOT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid SEED_PER_SLOT=%q: %v", v, err)
		}
		perSlot = n
	}
	if clamped := clampPerSlot(perSlot, cfg.SlotCapacity); clamped != perSlot {
		log.Printf("SEED_PER_SLOT=%d exceeds SLOT_CAPACITY=%d, clamping", perSlot, cfg.SlotCapacity)
		perSlot = clamped
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolSettings{
		MaxConns: 4,
		MinConns: 1,
	})
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedAppointments(context.Background(), pool, perSlot); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, perSlot int) error {
	total := 0

	for _, doctor := range catalog.Doctors("") {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for _, slot := range doctor.AvailableTimings {
			for i := 0; i < perSlot; i++ {
				id := uuid.New()
				patient := gofakeit.Name()

				_, err := tx.Exec(ctx, `
					INSERT INTO appointments (id, patient_name, phone_number, address, category_id, doctor_id, doctor_name, time_slot, amount, booking_date, qr_payload, idempotency_key, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULL, now())
				`,
					id,
					patient,
					gofakeit.Phone(),
					gofakeit.Address().Address,
					string(doctor.Category),
					doctor.ID,
					doctor.Name,
					slot,
					doctor.ConsultationFee,
					time.Now().UTC().Truncate(24*time.Hour),
					booking.EncodeQRPayload(id, patient, doctor.Name, slot),
				)
				if err != nil {
					_ = tx.Rollback(ctx)
					return err
				}
				total++
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("seeded doctor %s: %d slots x %d", doctor.ID, len(doctor.AvailableTimings), perSlot)
	}

	log.Printf("appointments seeded: %d", total)
	return nil
}
