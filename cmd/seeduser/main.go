// cmd/seeduser upserts the admin user, the "Cliente General" customer and a
// default punto de venta.
// Usage: SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"time"

	"cellfie/internal/config"
	"cellfie/internal/infra"
	"cellfie/internal/model"
	"cellfie/internal/repository"
	"cellfie/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	username := envOr("SEED_USERNAME", "admin")
	password := envOr("SEED_PASSWORD", "cellfie2026")
	pvNombre := envOr("SEED_PUNTO_VENTA", "Local Central")

	db, err := infra.NewDatabase(cfg.DatabaseURL, 2)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.RunMigrations {
		if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	ctx := context.Background()
	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pv := model.PuntoVenta{Nombre: pvNombre, Activo: true}
		if err := tx.Where("nombre = ?", pvNombre).FirstOrCreate(&pv).Error; err != nil {
			return err
		}

		u := model.Usuario{
			Username:     username,
			Nombre:       "Administrador",
			PasswordHash: hash,
			Rol:          "administrador",
			Activo:       true,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "rol", "activo", "updated_at"}),
		}).Create(&u).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	if _, err := repository.NewClienteRepository(db).EnsureGeneral(ctx); err != nil {
		log.Fatal().Err(err).Msg("seed cliente general failed")
	}

	log.Info().Str("username", username).Str("punto_venta", pvNombre).Msg("seed completed")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
