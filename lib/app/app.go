// Package app builds the process-wide Console every lambda entry point owns:
// configuration, logger, record store, AWS clients and services.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"opsconsole/lib/auth"
	"opsconsole/lib/bulk"
	"opsconsole/lib/clients"
	"opsconsole/lib/config"
	"opsconsole/lib/constants"
	"opsconsole/lib/dashboard"
	"opsconsole/lib/data"
	"opsconsole/lib/models"
	"opsconsole/lib/service"
	"opsconsole/lib/util"
	"opsconsole/lib/workflow"
)

// Console is the explicitly constructed process context. main creates it
// once and closes it on shutdown; handlers receive it rather than reading
// package-level state.
type Console struct {
	Name    string
	IsLocal bool
	Logger  *logrus.Logger
	Config  *config.Config
	Store   data.RecordStore

	// Files and Identity are nil when no bucket or user pool is configured.
	Files    clients.S3ClientInterface
	Identity clients.IdentityProvider
	Verifier *auth.TokenVerifier

	Clients     *service.RecordService[models.Client]
	Contractors *service.RecordService[models.Contractor]
	Employees   *service.RecordService[models.Employee]
	Assets      *service.RecordService[models.Asset]
	Users       *service.UserService
	Approvals   *workflow.Approvals
	Dashboard   *dashboard.Aggregator
	Importer    *bulk.Importer
	Exporter    *bulk.Exporter
}

// ParseIsLocal reports whether the process runs against LocalStack.
func ParseIsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	return isLocal
}

// SetupLogger returns a JSON logger at LOG_LEVEL, pretty-printed locally.
func SetupLogger(isLocal bool) *logrus.Logger {
	logger := logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: isLocal})
	return logger
}

// LoadConfig reads the console parameters from SSM, unless SKIP_SSM is set,
// and overlays the environment.
func LoadConfig(ctx context.Context, isLocal bool, logger *logrus.Logger) (*config.Config, error) {
	params := map[string]string{}
	if os.Getenv("SKIP_SSM") == "" {
		ssmClient, err := clients.NewSSMClient(ctx, isLocal)
		if err != nil {
			return nil, fmt.Errorf("error creating SSM client: %w", err)
		}
		repo := &data.SSMDao{SSM: ssmClient, Logger: logger}
		params, err = repo.GetParameters(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting SSM parameters: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"operation":    "LoadConfig",
			"params_count": len(params),
		}).Debug("Retrieved SSM parameters")
	}
	return config.Load(config.Merge(params, os.Getenv))
}

// Bootstrap loads configuration, connects the configured store and AWS
// clients, and seeds the first Admin when asked to.
func Bootstrap(ctx context.Context, name string) (*Console, error) {
	isLocal := ParseIsLocal()
	logger := SetupLogger(isLocal)

	cfg, err := LoadConfig(ctx, isLocal, logger)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var files clients.S3ClientInterface
	if cfg.FilesBucket != "" {
		s3Client, err := clients.NewS3Client(ctx, isLocal, cfg.FilesBucket)
		if err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("error creating S3 client: %w", err)
		}
		files = s3Client
	}

	var identity clients.IdentityProvider
	if cfg.UserPoolID != "" {
		cognito, err := clients.NewCognitoIdentityProviderClient(ctx, isLocal)
		if err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("error creating Cognito client: %w", err)
		}
		identity = &clients.CognitoIdentityProvider{Client: cognito, UserPoolID: cfg.UserPoolID}
	}

	console := New(name, cfg, logger, store, files, identity)
	console.IsLocal = isLocal

	if created, err := console.Users.EnsureSeedAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminName); err != nil {
		_ = console.Close(ctx)
		return nil, fmt.Errorf("error seeding admin user: %w", err)
	} else if created {
		logger.WithField("operation", "Bootstrap").Info("Seed admin created")
	}

	logger.WithFields(logrus.Fields{
		"operation": "Bootstrap",
		"lambda":    name,
		"store":     cfg.StoreDriver,
	}).Info("Console initialization completed successfully")
	return console, nil
}

// New wires the services over already-open collaborators. files and
// identity may be nil.
func New(name string, cfg *config.Config, logger *logrus.Logger, store data.RecordStore, files clients.S3ClientInterface, identity clients.IdentityProvider) *Console {
	opts := service.Options{
		Logger:   logger,
		Now:      cfg.Now,
		FetchCap: cfg.FetchCap,
		Org:      cfg.OrgName,
	}

	c := &Console{
		Name:        name,
		Logger:      logger,
		Config:      cfg,
		Store:       store,
		Files:       files,
		Identity:    identity,
		Clients:     service.NewRecordService[models.Client](service.ClientKind, store, opts),
		Contractors: service.NewRecordService[models.Contractor](service.ContractorKind, store, opts),
		Employees:   service.NewRecordService[models.Employee](service.EmployeeKind, store, opts),
		Assets:      service.NewRecordService[models.Asset](service.AssetKind, store, opts),
		Users:       service.NewUserService(store, identity, opts),
		Approvals:   workflow.NewApprovals(store, logger, workflow.WithClock(cfg.Now), workflow.WithFetchCap(cfg.FetchCap)),
		Importer:    bulk.NewImporter(files, logger),
		Exporter:    bulk.NewExporter(files, logger),
	}
	c.Exporter.Now = cfg.Now
	c.Dashboard = &dashboard.Aggregator{
		Clients:     c.Clients,
		Employees:   c.Employees,
		Contractors: c.Contractors,
		Logger:      logger,
		Now:         cfg.Now,
	}
	if cfg.TokenSecret != "" {
		c.Verifier = auth.NewTokenVerifier(cfg.TokenSecret)
	}
	return c
}

// Close releases the store connection.
func (c *Console) Close(ctx context.Context) error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close(ctx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (data.RecordStore, error) {
	switch cfg.StoreDriver {
	case constants.STORE_POSTGRES:
		sqlDB, err := clients.NewPostgresSQLClient(
			cfg.Postgres.Host,
			cfg.Postgres.Port,
			cfg.Postgres.Name,
			cfg.Postgres.User,
			cfg.Postgres.Password,
			cfg.Postgres.SSLMode,
		)
		if err != nil {
			return nil, fmt.Errorf("error creating PostgreSQL client: %w", err)
		}
		store := &data.PostgresStore{DB: sqlDB, Logger: logger}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("error preparing schema: %w", err)
		}
		return store, nil
	case constants.STORE_MONGO:
		mongoClient, err := clients.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("error creating MongoDB client: %w", err)
		}
		return &data.MongoStore{DB: mongoClient.Database(cfg.MongoDatabase), Logger: logger}, nil
	case constants.STORE_MEMORY:
		logger.WithField("operation", "openStore").Warn("Using in-memory store; records are lost when the process exits")
		return data.NewMemoryStore(), nil
	default:
		return nil, errors.New("unknown store driver " + cfg.StoreDriver)
	}
}
