package constants

import "time"

const (
	PasswordMinLength  = 6
	PasswordMaxLength  = 72
	EmailMaxLength     = 254
	DisplayNameMaxLen  = 100
	JWTSecretMinLength = 32
	BcryptCost         = 12

	DefaultMaxRequestSize = 1 << 20
	MaxDocumentFields     = 64

	RevokedTokenCleanupInterval = 1 * time.Hour

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = 1 * time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultBackendHTTPPort = "8090"
	DefaultSessionTTL      = 7 * 24 * time.Hour

	DefaultClientTimeout = 15 * time.Second

	RateLimitLoginRequestsPerSecond    = 1.0
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.2
	RateLimitRegisterBurst             = 3
	RateLimitGeneralRequestsPerSecond  = 20.0
	RateLimitGeneralBurst              = 40
	RateLimitCleanupInterval           = 5 * time.Minute

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28

	ProfilesCollection = "profiles"
	NotesCollection    = "notes"
	NoteOwnerField     = "ownerId"
	UntitledNoteTitle  = "Untitled"
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
