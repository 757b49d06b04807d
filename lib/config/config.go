// Package config turns the console's SSM parameters, overlaid with
// environment variables, into a typed Config.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"opsconsole/lib/constants"
	"opsconsole/lib/data"
)

// Postgres holds the RDS connection parameters.
type Postgres struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// Config is everything a console process needs at startup.
type Config struct {
	StoreDriver    string
	Postgres       Postgres
	MongoURI       string
	MongoDatabase  string
	FilesBucket    string
	UserPoolID     string
	TokenSecret    string
	FetchCap       int
	Location       *time.Location
	OrgName        string
	AllowedOrigins []string
	SeedAdminEmail string
	SeedAdminName  string
}

var keys = []string{
	constants.ALLOWED_ORIGINS,
	constants.STORE_DRIVER,
	constants.DATABASE_RDS_ENDPOINT,
	constants.DATABASE_PORT,
	constants.DATABASE_NAME,
	constants.DATABASE_USERNAME,
	constants.DATABASE_PASSWORD,
	constants.SSL_MODE,
	constants.MONGO_URI,
	constants.MONGO_DATABASE,
	constants.FILES_BUCKET,
	constants.COGNITO_USER_POOL_ID,
	constants.TOKEN_SECRET,
	constants.FETCH_CAP,
	constants.TIME_ZONE,
	constants.ORG_NAME,
	constants.SEED_ADMIN_EMAIL,
	constants.SEED_ADMIN_NAME,
}

// Merge returns params with every non-empty environment value of a known
// key laid over it. getenv is usually os.Getenv.
func Merge(params map[string]string, getenv func(string) string) map[string]string {
	merged := make(map[string]string, len(params))
	for k, v := range params {
		merged[k] = v
	}
	if getenv == nil {
		return merged
	}
	for _, key := range keys {
		if v := getenv(key); v != "" {
			merged[key] = v
		}
	}
	return merged
}

// Load builds a Config from merged parameters and checks that the chosen
// store driver has what it needs.
func Load(params map[string]string) (*Config, error) {
	cfg := &Config{
		StoreDriver: strings.ToLower(strings.TrimSpace(params[constants.STORE_DRIVER])),
		Postgres: Postgres{
			Host:     params[constants.DATABASE_RDS_ENDPOINT],
			Port:     params[constants.DATABASE_PORT],
			Name:     params[constants.DATABASE_NAME],
			User:     params[constants.DATABASE_USERNAME],
			Password: params[constants.DATABASE_PASSWORD],
			SSLMode:  params[constants.SSL_MODE],
		},
		MongoURI:       params[constants.MONGO_URI],
		MongoDatabase:  params[constants.MONGO_DATABASE],
		FilesBucket:    params[constants.FILES_BUCKET],
		UserPoolID:     params[constants.COGNITO_USER_POOL_ID],
		TokenSecret:    params[constants.TOKEN_SECRET],
		FetchCap:       data.DefaultFetchCap,
		OrgName:        params[constants.ORG_NAME],
		AllowedOrigins: splitList(params[constants.ALLOWED_ORIGINS]),
		SeedAdminEmail: params[constants.SEED_ADMIN_EMAIL],
		SeedAdminName:  params[constants.SEED_ADMIN_NAME],
	}

	if cfg.StoreDriver == "" {
		cfg.StoreDriver = constants.STORE_POSTGRES
	}
	switch cfg.StoreDriver {
	case constants.STORE_POSTGRES:
		if cfg.Postgres.Host == "" || cfg.Postgres.Name == "" || cfg.Postgres.User == "" {
			return nil, fmt.Errorf("config: postgres store needs %s, %s and %s",
				constants.DATABASE_RDS_ENDPOINT, constants.DATABASE_NAME, constants.DATABASE_USERNAME)
		}
		if cfg.Postgres.Port == "" {
			cfg.Postgres.Port = "5432"
		}
	case constants.STORE_MONGO:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("config: mongo store needs %s", constants.MONGO_URI)
		}
		if cfg.MongoDatabase == "" {
			cfg.MongoDatabase = constants.DEFAULT_MONGODB
		}
	case constants.STORE_MEMORY:
	default:
		return nil, fmt.Errorf("config: unknown %s %q", constants.STORE_DRIVER, cfg.StoreDriver)
	}

	if raw := params[constants.FETCH_CAP]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: %s must be a positive integer, got %q", constants.FETCH_CAP, raw)
		}
		cfg.FetchCap = n
	}

	zone := params[constants.TIME_ZONE]
	if zone == "" {
		zone = constants.DEFAULT_TZ
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", constants.TIME_ZONE, err)
	}
	cfg.Location = loc

	if cfg.OrgName == "" {
		cfg.OrgName = constants.DEFAULT_ORG
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return cfg, nil
}

// Now is the current time in the console's time zone.
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
