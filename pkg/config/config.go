package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full configuration for the email channel.
type Config struct {
	// FromAddress is the address outbound replies are sent from. It doubles
	// as the default login for both protocols.
	FromAddress string `yaml:"from_address"`
	Password    string `yaml:"password"`
	Provider    string `yaml:"provider"` // gmail, outlook, or custom

	// IMAP settings
	IMAPServer   string `yaml:"imap_server"`
	IMAPPort     int    `yaml:"imap_port"`
	IMAPLogin    string `yaml:"imap_login,omitempty"`
	IMAPPassword string `yaml:"imap_password,omitempty"`
	IMAPStartTLS bool   `yaml:"imap_starttls"`
	InboxFolder  string `yaml:"inbox_folder"`

	// SMTP settings
	SMTPServer   string `yaml:"smtp_server"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPLogin    string `yaml:"smtp_login,omitempty"`
	SMTPPassword string `yaml:"smtp_password,omitempty"`
	SMTPStartTLS bool   `yaml:"smtp_starttls"`

	// Listener settings
	PollIntervalSeconds int      `yaml:"poll_interval_seconds"`
	AllowedSenders      []string `yaml:"allowed_senders"` // "*" allows everyone
	SeenLimit           int      `yaml:"seen_limit"`      // 0 = unbounded dedup set

	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		Provider:            "gmail",
		InboxFolder:         "INBOX",
		PollIntervalSeconds: 10,
		TimeoutSeconds:      120, // 2 minutes default
		SMTPStartTLS:        true,
	}
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	cfg.FromAddress = os.Getenv("EMAIL_ADDRESS")
	cfg.Password = os.Getenv("EMAIL_APP_PASSWORD")

	if provider := os.Getenv("EMAIL_PROVIDER"); provider != "" {
		cfg.Provider = provider
	}
	cfg.applyProviderDefaults()

	// Override with explicit settings if provided
	if server := os.Getenv("EMAIL_IMAP_SERVER"); server != "" {
		cfg.IMAPServer = server
	}
	if port := os.Getenv("EMAIL_IMAP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_IMAP_PORT: %w", err)
		}
		cfg.IMAPPort = p
	}
	if server := os.Getenv("EMAIL_SMTP_SERVER"); server != "" {
		cfg.SMTPServer = server
	}
	if port := os.Getenv("EMAIL_SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = p
	}
	if v := os.Getenv("EMAIL_IMAP_STARTTLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_IMAP_STARTTLS: %w", err)
		}
		cfg.IMAPStartTLS = b
	}
	if v := os.Getenv("EMAIL_SMTP_STARTTLS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_SMTP_STARTTLS: %w", err)
		}
		cfg.SMTPStartTLS = b
	}
	cfg.IMAPLogin = os.Getenv("EMAIL_IMAP_LOGIN")
	cfg.IMAPPassword = os.Getenv("EMAIL_IMAP_PASSWORD")
	cfg.SMTPLogin = os.Getenv("EMAIL_SMTP_LOGIN")
	cfg.SMTPPassword = os.Getenv("EMAIL_SMTP_PASSWORD")

	if folder := os.Getenv("EMAIL_IMAP_FOLDER"); folder != "" {
		cfg.InboxFolder = folder
	}
	if interval := os.Getenv("EMAIL_POLL_INTERVAL_SECONDS"); interval != "" {
		i, err := strconv.Atoi(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_POLL_INTERVAL_SECONDS: %w", err)
		}
		cfg.PollIntervalSeconds = i
	}
	if senders := os.Getenv("EMAIL_ALLOWED_SENDERS"); senders != "" {
		cfg.AllowedSenders = splitList(senders)
	}
	if limit := os.Getenv("EMAIL_SEEN_LIMIT"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_SEEN_LIMIT: %w", err)
		}
		cfg.SeenLimit = l
	}
	if timeout := os.Getenv("EMAIL_TIMEOUT_SECONDS"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_TIMEOUT_SECONDS: %w", err)
		}
		cfg.TimeoutSeconds = t
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile loads configuration from a YAML file. Fields absent from
// the file keep the same defaults LoadConfig applies.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyProviderDefaults()

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProviderDefaults fills server settings for known providers. Explicit
// settings always win over the preset.
func (c *Config) applyProviderDefaults() {
	var imapServer, smtpServer string
	var imapPort, smtpPort int
	switch c.Provider {
	case "gmail":
		imapServer, imapPort = "imap.gmail.com", 993
		smtpServer, smtpPort = "smtp.gmail.com", 587
	case "outlook":
		imapServer, imapPort = "outlook.office365.com", 993
		smtpServer, smtpPort = "smtp-mail.outlook.com", 587
	default:
		return
	}
	if c.IMAPServer == "" {
		c.IMAPServer = imapServer
	}
	if c.IMAPPort == 0 {
		c.IMAPPort = imapPort
	}
	if c.SMTPServer == "" {
		c.SMTPServer = smtpServer
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = smtpPort
	}
}

func (c *Config) finish() error {
	c.Timeout = time.Duration(c.TimeoutSeconds) * time.Second

	if c.IMAPServer == "" {
		return fmt.Errorf("EMAIL_IMAP_SERVER is required")
	}
	if c.IMAPPort == 0 {
		return fmt.Errorf("EMAIL_IMAP_PORT is required")
	}
	if c.SMTPServer == "" {
		return fmt.Errorf("EMAIL_SMTP_SERVER is required")
	}
	if c.SMTPPort == 0 {
		return fmt.Errorf("EMAIL_SMTP_PORT is required")
	}
	return nil
}

// IsConfigured checks if email credentials are available.
func (c *Config) IsConfigured() bool {
	return c.FromAddress != "" && (c.Password != "" || (c.IMAPPassword != "" && c.SMTPPassword != ""))
}

// ValidateForOperation checks if configuration is valid for email operations.
func (c *Config) ValidateForOperation() error {
	if c.FromAddress == "" {
		return fmt.Errorf("email not configured: EMAIL_ADDRESS environment variable is required")
	}
	if c.Password == "" && (c.IMAPPassword == "" || c.SMTPPassword == "") {
		return fmt.Errorf("email not configured: EMAIL_APP_PASSWORD environment variable is required")
	}
	if c.IMAPServer == "" || c.IMAPPort == 0 {
		return fmt.Errorf("IMAP server configuration is incomplete")
	}
	if c.SMTPServer == "" || c.SMTPPort == 0 {
		return fmt.Errorf("SMTP server configuration is incomplete")
	}
	return nil
}

// Validate checks if basic configuration is valid (used for startup).
func (c *Config) Validate() error {
	if c.PollIntervalSeconds < 0 {
		return fmt.Errorf("invalid poll interval")
	}
	if c.SeenLimit < 0 {
		return fmt.Errorf("invalid seen limit")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid timeout")
	}
	return nil
}

// IMAPCredentials returns the login/password pair for the IMAP session,
// falling back to the account-level credentials.
func (c *Config) IMAPCredentials() (login, password string) {
	login, password = c.FromAddress, c.Password
	if c.IMAPLogin != "" {
		login = c.IMAPLogin
	}
	if c.IMAPPassword != "" {
		password = c.IMAPPassword
	}
	return login, password
}

// SMTPCredentials returns the login/password pair for SMTP transports,
// falling back to the account-level credentials.
func (c *Config) SMTPCredentials() (login, password string) {
	login, password = c.FromAddress, c.Password
	if c.SMTPLogin != "" {
		login = c.SMTPLogin
	}
	if c.SMTPPassword != "" {
		password = c.SMTPPassword
	}
	return login, password
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
