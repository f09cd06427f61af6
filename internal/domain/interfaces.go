package domain

import (
	"context"

	"github.com/google/uuid"
)

// GeneRepository defines persistence for genes
type GeneRepository interface {
	Create(ctx context.Context, gene *Gene) error
	GetByID(ctx context.Context, id int64) (*Gene, error)
	List(ctx context.Context) ([]*Gene, error)
	Update(ctx context.Context, gene *Gene) error
	Delete(ctx context.Context, id int64) error
}

// VariantRepository defines persistence for genetic variants
type VariantRepository interface {
	Create(ctx context.Context, variant *GeneticVariant) error
	GetByID(ctx context.Context, id uuid.UUID) (*GeneticVariant, error)
	List(ctx context.Context) ([]*GeneticVariant, error)
	Update(ctx context.Context, variant *GeneticVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReportRepository defines persistence for patient variant reports
type ReportRepository interface {
	Create(ctx context.Context, report *PatientVariantReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*PatientVariantReport, error)
	List(ctx context.Context) ([]*PatientVariantReport, error)
	ListByPatient(ctx context.Context, patientID string) ([]*PatientVariantReport, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Transactor runs fn inside a single store transaction. Repositories called
// with the context passed to fn participate in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PatientVerifier confirms that an external patient identifier exists.
// It returns nil when confirmed, ErrPatientNotFound when the clinic denies it,
// and an error matching ErrUpstreamUnavailable when the clinic cannot be reached.
type PatientVerifier interface {
	VerifyPatient(ctx context.Context, patientID, authorization string) error
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetClinicConfig() *ClinicConfig
	GetServerConfig() *ServerConfig
	GetLoggingConfig() *LoggingConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetDatabaseURL() string
	IsProduction() bool
	IsDevelopment() bool
}
