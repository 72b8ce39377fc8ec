package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// MongoDB configuration
	MongoURI      string `json:"mongo_uri"`
	MongoDatabase string `json:"mongo_database"`

	// Redis configuration
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// Collection names
	UserCollection             string `json:"mongo_user_collection"`
	OTPCollection              string `json:"mongo_otp_collection"`
	AuditLogCollection         string `json:"mongo_audit_log_collection"`
	EmergencyContactCollection string `json:"mongo_emergency_contact_collection"`
	FamilyMemberCollection     string `json:"mongo_family_member_collection"`
	HouseWorkerCollection      string `json:"mongo_house_worker_collection"`
	ResidenceCollection        string `json:"mongo_residence_collection"`
	LandlordCollection         string `json:"mongo_landlord_collection"`
	PreviousLandlordCollection string `json:"mongo_previous_landlord_collection"`
	DocumentCollection         string `json:"mongo_document_collection"`
	NotificationCollection     string `json:"mongo_notification_collection"`

	// OTP configuration
	OTPExpiry         time.Duration `json:"otp_expiry"`
	OTPResendCooldown time.Duration `json:"otp_resend_cooldown"`
	OTPDemoMode       bool          `json:"otp_demo_mode"`

	// Pending registration flow configuration
	PendingFlowTTL time.Duration `json:"pending_flow_ttl"`

	// JWT configuration
	JWTSecret   string        `json:"-"`
	JWTIssuer   string        `json:"jwt_issuer"`
	JWTAudience string        `json:"jwt_audience"`
	JWTExpiry   time.Duration `json:"jwt_expiry"`

	// Credential policy
	PasswordPolicyEnforced bool `json:"password_policy_enforced"`

	// Identity registry configuration
	IdentityCrossCheckStrict bool   `json:"identity_crosscheck_strict"`
	IdentityRegistryMode     string `json:"identity_registry_mode"`
	IdentityRegistryURL      string `json:"identity_registry_url"`

	// SMS gateway configuration (mock dispatcher when empty)
	SMSGatewayURL string `json:"sms_gateway_url"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`

	// Audit worker configuration
	AuditWorkers    int `json:"audit_workers"`
	AuditBufferSize int `json:"audit_buffer_size"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	otpExpiry, err := time.ParseDuration(getEnvOrDefault("OTP_EXPIRY", "5m"))
	if err != nil {
		return fmt.Errorf("invalid OTP_EXPIRY: %w", err)
	}

	otpResendCooldown, err := time.ParseDuration(getEnvOrDefault("OTP_RESEND_COOLDOWN", "60s"))
	if err != nil {
		return fmt.Errorf("invalid OTP_RESEND_COOLDOWN: %w", err)
	}

	pendingFlowTTL, err := time.ParseDuration(getEnvOrDefault("PENDING_FLOW_TTL", "15m"))
	if err != nil {
		return fmt.Errorf("invalid PENDING_FLOW_TTL: %w", err)
	}

	jwtExpiry, err := time.ParseDuration(getEnvOrDefault("JWT_EXPIRY", "60m"))
	if err != nil {
		return fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}

	auditWorkers, err := strconv.Atoi(getEnvOrDefault("AUDIT_WORKERS", "2"))
	if err != nil {
		return fmt.Errorf("invalid AUDIT_WORKERS: %w", err)
	}

	auditBufferSize, err := strconv.Atoi(getEnvOrDefault("AUDIT_BUFFER_SIZE", "1000"))
	if err != nil {
		return fmt.Errorf("invalid AUDIT_BUFFER_SIZE: %w", err)
	}

	environment := getEnvOrDefault("ENVIRONMENT", "development")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		if environment == "production" {
			return fmt.Errorf("JWT_SECRET environment variable is required in production")
		}
		jwtSecret = "insecure-development-secret"
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: environment,

		// MongoDB configuration
		MongoURI:      getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGODB_DATABASE", "thikana"),

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		// Collection names
		UserCollection:             getEnvOrDefault("MONGODB_USER_COLLECTION", "users"),
		OTPCollection:              getEnvOrDefault("MONGODB_OTP_COLLECTION", "otps"),
		AuditLogCollection:         getEnvOrDefault("MONGODB_AUDIT_LOG_COLLECTION", "audit_logs"),
		EmergencyContactCollection: getEnvOrDefault("MONGODB_EMERGENCY_CONTACT_COLLECTION", "emergency_contacts"),
		FamilyMemberCollection:     getEnvOrDefault("MONGODB_FAMILY_MEMBER_COLLECTION", "family_members"),
		HouseWorkerCollection:      getEnvOrDefault("MONGODB_HOUSE_WORKER_COLLECTION", "house_workers"),
		ResidenceCollection:        getEnvOrDefault("MONGODB_RESIDENCE_COLLECTION", "residences"),
		LandlordCollection:         getEnvOrDefault("MONGODB_LANDLORD_COLLECTION", "landlords"),
		PreviousLandlordCollection: getEnvOrDefault("MONGODB_PREVIOUS_LANDLORD_COLLECTION", "previous_landlords"),
		DocumentCollection:         getEnvOrDefault("MONGODB_DOCUMENT_COLLECTION", "documents"),
		NotificationCollection:     getEnvOrDefault("MONGODB_NOTIFICATION_COLLECTION", "notifications"),

		// OTP configuration
		OTPExpiry:         otpExpiry,
		OTPResendCooldown: otpResendCooldown,
		OTPDemoMode:       getEnvOrDefault("OTP_DEMO_MODE", "false") == "true",

		// Pending registration flow configuration
		PendingFlowTTL: pendingFlowTTL,

		// JWT configuration
		JWTSecret:   jwtSecret,
		JWTIssuer:   getEnvOrDefault("JWT_ISSUER", "thikana-verification"),
		JWTAudience: getEnvOrDefault("JWT_AUDIENCE", "thikana-tenants"),
		JWTExpiry:   jwtExpiry,

		// Credential policy
		PasswordPolicyEnforced: getEnvOrDefault("PASSWORD_POLICY_ENFORCED", "true") == "true",

		// Identity registry configuration
		IdentityCrossCheckStrict: getEnvOrDefault("IDENTITY_CROSSCHECK_STRICT", "false") == "true",
		IdentityRegistryMode:     getEnvOrDefault("IDENTITY_REGISTRY_MODE", "mock"),
		IdentityRegistryURL:      getEnvOrDefault("IDENTITY_REGISTRY_URL", ""),

		// SMS gateway configuration
		SMSGatewayURL: getEnvOrDefault("SMS_GATEWAY_URL", ""),

		// Tracing configuration
		TracingEnabled:  getEnvOrDefault("TRACING_ENABLED", "false") == "true",
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),

		// Audit worker configuration
		AuditWorkers:    auditWorkers,
		AuditBufferSize: auditBufferSize,
	}

	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
