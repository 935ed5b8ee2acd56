package config

// Config contains all application settings
type Config struct {
	BindPort        int    `mapstructure:"PORT" yaml:"port"`
	BindHost        string `mapstructure:"HOST" yaml:"host"`
	DatabaseURL     string `mapstructure:"DATABASE_URL" yaml:"database_url"`
	NATSServerURL   string `mapstructure:"NATS_URL" yaml:"nats_url"`
	OrderAckTimeout int    `mapstructure:"ORDER_ACK_TIMEOUT" yaml:"order_ack_timeout"`
	SessionTimeout  int    `mapstructure:"SESSION_TIMEOUT" yaml:"session_timeout"`

	// Version
	BuildVersion string `yaml:"-"`
	BuildHash    string `yaml:"-"`
	BuildTime    string `yaml:"-"`
}
