// Package constants provides shared constants for the payout-quote application.
package constants

// Payout schedule constants
const (
	// MonthsPerQuarter is the number of monthly payouts folded into one quarter
	MonthsPerQuarter = 3

	// QuartersPerYear is the number of schedule periods in a year
	QuartersPerYear = 4

	// ShortDurationQuarters is the "5 år" payout horizon
	ShortDurationQuarters = 5 * QuartersPerYear

	// LongDurationQuarters is the "10 år" payout horizon
	LongDurationQuarters = 10 * QuartersPerYear

	// EligibilityThreshold is the exclusive upper bound on the total payout
	// for a High verdict
	EligibilityThreshold int64 = 1_500_000
)

// Quote form defaults
const (
	// DefaultPropertyValue is the pre-filled property value in DKK
	DefaultPropertyValue int64 = 5_000_000

	// DefaultEquityValue is the pre-filled equity value in DKK
	DefaultEquityValue int64 = 3_500_000

	// DefaultPayoutStep is the granularity of the monthly payout input in DKK
	DefaultPayoutStep int64 = 500

	// DefaultMinOwnerAge is the minimum owner age of the primary quote form
	DefaultMinOwnerAge = 60

	// FormOnlyMinOwnerAge is the minimum owner age of the form-only variants
	FormOnlyMinOwnerAge = 18
)

// Lead contact constants
const (
	// MinContactAge is the lowest accepted age on a lead submission
	MinContactAge = 18

	// MaxContactAge is the highest accepted age on a lead submission
	MaxContactAge = 120
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Credential names
const (
	// DefaultGateSecretName is the credential holding the shared site password
	DefaultGateSecretName = "Site_Pass"

	// DefaultSMTPUserSecretName is the credential holding the SMTP username
	DefaultSMTPUserSecretName = "SMTP_User"

	// DefaultSMTPPassSecretName is the credential holding the SMTP password
	DefaultSMTPPassSecretName = "SMTP_Pass"

	// SessionKeySecretName is the credential holding the session signing key
	SessionKeySecretName = "Session_Key"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum API request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultSessionTTL is the idle lifetime of a session
	DefaultSessionTTL = "30m"
)

// Mail defaults
const (
	// DefaultSMTPPort is the STARTTLS submission port
	DefaultSMTPPort = 587

	// DefaultMailTimeout bounds a single dispatch
	DefaultMailTimeout = "15s"

	// DefaultSubjectPrefix precedes the lead name in notification subjects
	DefaultSubjectPrefix = "New lead"

	// NotificationTimeZone is the zone submission timestamps are rendered in
	NotificationTimeZone = "Europe/Copenhagen"
)
