// Package config defines the application configuration and loads it from
// YAML with environment overrides.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/payout-quote/internal/quote"
	"github.com/iwvelando/payout-quote/pkg/constants"
	"github.com/iwvelando/payout-quote/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PAYOUT_QUOTE_MAIL_HOST.
const EnvPrefix = "PAYOUT_QUOTE"

// Configuration holds all configuration for payout-quote.
type Configuration struct {
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
	Quote       quote.Rules       `yaml:"quote,omitempty"`
	Gate        GateConfig        `yaml:"gate,omitempty"`
	Mail        MailConfig        `yaml:"mail,omitempty"`
	Postal      PostalConfig      `yaml:"postal,omitempty"`
	Credentials CredentialsConfig `yaml:"credentials,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// GateConfig names the credential holding the shared site password.
type GateConfig struct {
	SecretName string `yaml:"secretName,omitempty"`
}

// MailConfig describes the SMTP endpoint and the fixed notification
// recipients. The SMTP login is resolved through the named secrets.
type MailConfig struct {
	Host           string        `yaml:"host,omitempty"`
	Port           int           `yaml:"port,omitempty"`
	From           string        `yaml:"from,omitempty"`
	To             []string      `yaml:"to,omitempty"`
	Cc             []string      `yaml:"cc,omitempty"`
	UsernameSecret string        `yaml:"usernameSecret,omitempty"`
	PasswordSecret string        `yaml:"passwordSecret,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	SubjectPrefix  string        `yaml:"subjectPrefix,omitempty"`
}

// PostalConfig points at the postal code reference file.
type PostalConfig struct {
	File string `yaml:"file,omitempty"`
}

// CredentialsConfig lists .env files consulted after the process
// environment.
type CredentialsConfig struct {
	EnvFiles []string `yaml:"envFiles,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

// LoadDefaults returns the built-in configuration with environment
// overrides applied, for runs without a config file.
func LoadDefaults() (*Configuration, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("quote.minOwnerAge", constants.DefaultMinOwnerAge)
	v.SetDefault("quote.payoutStep", constants.DefaultPayoutStep)
	v.SetDefault("gate.secretName", constants.DefaultGateSecretName)
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", constants.DefaultSMTPPort)
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.to", []string{})
	v.SetDefault("mail.cc", []string{})
	v.SetDefault("mail.usernameSecret", constants.DefaultSMTPUserSecretName)
	v.SetDefault("mail.passwordSecret", constants.DefaultSMTPPassSecretName)
	v.SetDefault("mail.timeout", constants.DefaultMailTimeout)
	v.SetDefault("mail.subjectPrefix", constants.DefaultSubjectPrefix)
	v.SetDefault("postal.file", "")
	v.SetDefault("credentials.envFiles", []string{".env"})
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := configuration.validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// validate rejects settings no component can run with.
func (c *Configuration) validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Gate.SecretName == "" {
		return fmt.Errorf("gate.secretName must not be empty")
	}
	if c.Mail.Timeout < 0 {
		return fmt.Errorf("mail.timeout must not be negative, got %s", c.Mail.Timeout)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		Quote: validation.QuoteConfig{
			MinOwnerAge: c.Quote.MinOwnerAge,
			PayoutStep:  c.Quote.PayoutStep,
		},
		Mail: validation.MailConfig{
			Host:    c.Mail.Host,
			Port:    c.Mail.Port,
			From:    c.Mail.From,
			To:      c.Mail.To,
			Cc:      c.Mail.Cc,
			Timeout: c.Mail.Timeout,
		},
		Postal: validation.PostalConfig{File: c.Postal.File},
	}
	return validator.ValidateAll()
}
