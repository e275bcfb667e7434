package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Access        AccessConfig
	Notifications NotificationsConfig
	Cron          CronConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Access.RoleSectionMap(); err != nil {
		return nil, err
	}
	if _, err := cfg.Notifications.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PLANTOPS_APP_ENV" required:"true"`
	Port         string `envconfig:"PLANTOPS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PLANTOPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PLANTOPS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PLANTOPS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PLANTOPS_DB_DSN"`
	Driver string `envconfig:"PLANTOPS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PLANTOPS_DB_HOST"`
	Port     int    `envconfig:"PLANTOPS_DB_PORT" default:"5432"`
	User     string `envconfig:"PLANTOPS_DB_USER"`
	Password string `envconfig:"PLANTOPS_DB_PASSWORD"`
	Name     string `envconfig:"PLANTOPS_DB_NAME"`
	SSLMode  string `envconfig:"PLANTOPS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PLANTOPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PLANTOPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PLANTOPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PLANTOPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"PLANTOPS_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`

	AutoMigrate bool `envconfig:"PLANTOPS_DB_AUTO_MIGRATE" default:"false"`
}

// IsSQLite reports whether the sqlite driver is configured (local runs).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL            string        `envconfig:"PLANTOPS_REDIS_URL"`
	Address        string        `envconfig:"PLANTOPS_REDIS_ADDR"`
	Password       string        `envconfig:"PLANTOPS_REDIS_PASSWORD"`
	DB             int           `envconfig:"PLANTOPS_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"PLANTOPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"PLANTOPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"PLANTOPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"PLANTOPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"PLANTOPS_REDIS_WRITE_TIMEOUT" default:"5s"`
	UnreadCountTTL time.Duration `envconfig:"PLANTOPS_REDIS_UNREAD_COUNT_TTL" default:"5s"`
}

// Enabled reports whether a Redis endpoint is configured. Without one the
// unread-count cache is off and the cron worker assumes a single instance.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PLANTOPS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PLANTOPS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PLANTOPS_JWT_EXPIRATION_MINUTES" default:"480"`
}

// AccessConfig maps roles to the production sections they can see.
// Format: "role:1 2 3,role2:2".
type AccessConfig struct {
	RoleSections map[string]string `envconfig:"PLANTOPS_ACCESS_ROLE_SECTIONS" default:"admin:1 2 3,supervisor:1 2 3,raw_material_manager:1,processing_manager:2,packaging_manager:3,viewer:"`
}

// RoleSectionMap parses RoleSections and validates every section number.
func (a AccessConfig) RoleSectionMap() (map[string][]int, error) {
	out := make(map[string][]int, len(a.RoleSections))
	roles := make([]string, 0, len(a.RoleSections))
	for role := range a.RoleSections {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		name := strings.TrimSpace(strings.ToLower(role))
		if name == "" {
			return nil, fmt.Errorf("%s: empty role name", EnvAccessRoleSections)
		}
		sections := []int{}
		for _, raw := range strings.Fields(a.RoleSections[role]) {
			n, err := strconv.Atoi(raw)
			if err != nil || n < MinSection || n > MaxSection {
				return nil, fmt.Errorf("%s: role %q has invalid section %q", EnvAccessRoleSections, name, raw)
			}
			sections = append(sections, n)
		}
		out[name] = sections
	}
	return out, nil
}

type NotificationsConfig struct {
	RecentLimit int    `envconfig:"PLANTOPS_NOTIFICATIONS_RECENT_LIMIT" default:"5"`
	TimeZone    string `envconfig:"PLANTOPS_NOTIFICATIONS_TIME_ZONE" default:"UTC"`
}

// Location resolves the zone used to decide what "today" is for expiry checks.
func (n NotificationsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(n.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvNotificationsTimeZone, err)
	}
	return loc, nil
}

type CronConfig struct {
	Interval      time.Duration `envconfig:"PLANTOPS_CRON_INTERVAL" default:"1h"`
	RetentionDays int           `envconfig:"PLANTOPS_CRON_RETENTION_DAYS" default:"30"`
	LockTTL       time.Duration `envconfig:"PLANTOPS_CRON_LOCK_TTL" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PLANTOPS_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:plantops.db?cache=shared"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
