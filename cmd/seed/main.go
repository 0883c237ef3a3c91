// Command seed loads the base exercise catalog and, optionally, an admin account.
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"alcyxob/fitness-coach/internal/config"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/observability"
	"alcyxob/fitness-coach/internal/repository/mongo"
	"alcyxob/fitness-coach/internal/service"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var catalogYAML []byte

type catalogEntry struct {
	Name             string   `yaml:"name"`
	TargetMuscle     string   `yaml:"target_muscle"`
	BodyPart         string   `yaml:"body_part"`
	Equipment        string   `yaml:"equipment"`
	SecondaryMuscles []string `yaml:"secondary_muscles"`
	Description      string   `yaml:"description"`
}

// parseCatalog decodes the embedded catalog. Every entry needs a name and an
// equipment tag, otherwise the planner can never pick it.
func parseCatalog(data []byte) ([]domain.Exercise, error) {
	var entries []catalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	out := make([]domain.Exercise, 0, len(entries))
	for i, e := range entries {
		if e.Name == "" || e.Equipment == "" {
			return nil, fmt.Errorf("catalog entry %d: name and equipment are required", i)
		}
		out = append(out, domain.Exercise{
			Name:             e.Name,
			TargetMuscle:     e.TargetMuscle,
			BodyPart:         e.BodyPart,
			Equipment:        e.Equipment,
			SecondaryMuscles: e.SecondaryMuscles,
			Description:      e.Description,
		})
	}
	return out, nil
}

func main() {
	configPath := pflag.String("config", ".", "directory containing config.yaml")
	adminEmail := pflag.String("admin-email", "", "create an admin account with this email")
	adminName := pflag.String("admin-name", "Administrator", "display name of the admin account")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}
	log := observability.NewLogger(cfg.Log)

	if err := run(cfg, log, *adminEmail, *adminName, os.Getenv("SEED_ADMIN_PASSWORD")); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger, adminEmail, adminName, adminPassword string) error {
	exercises, err := parseCatalog(catalogYAML)
	if err != nil {
		return err
	}

	client, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return err
	}
	defer func() { _ = mongo.DisconnectDB(client) }()
	db := client.Database(cfg.Database.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	catalog := service.NewCatalogService(mongo.NewMongoExerciseRepository(db), mongo.NewMongoWorkoutExerciseRepository(db), nil)
	added, err := catalog.Seed(ctx, exercises)
	if err != nil {
		return err
	}
	log.Info("catalog seeded", "added", added, "total", len(exercises))

	if adminEmail == "" {
		return nil
	}
	if adminPassword == "" {
		return errors.New("SEED_ADMIN_PASSWORD must be set to create an admin")
	}
	auth := service.NewAuthService(mongo.NewMongoUserRepository(db), cfg.JWT.Secret, cfg.JWT.Expiration, service.SystemClock)
	admin, err := auth.Register(ctx, service.RegisterInput{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, service.ErrUserAlreadyExists) {
		log.Info("admin already exists", "email", adminEmail)
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("admin created", "user_id", admin.ID.Hex(), "email", admin.Email)
	return nil
}
