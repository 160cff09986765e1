package monitor_config

import (
	"time"

	"github.com/NordCoder/uptimed/internal/obs"
	pginfra "github.com/NordCoder/uptimed/internal/repository/postgres"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"

	NotifierLog   = "log"
	NotifierKafka = "kafka"
	NotifierSMTP  = "smtp"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Store struct {
	Driver string `mapstructure:"driver"`
	Dir    string `mapstructure:"dir"`
}

type Logs struct {
	Dir string `mapstructure:"dir"`
}

type SchedCfg struct {
	ProbeInterval  time.Duration `mapstructure:"probe_interval"`
	RotateInterval time.Duration `mapstructure:"rotate_interval"`
	MaxInFlight    int           `mapstructure:"max_in_flight"`
}

type HTTPProbe struct {
	UserAgent       string `mapstructure:"user_agent"`
	VerifyTLS       bool   `mapstructure:"verify_tls"`
	FollowRedirects bool   `mapstructure:"follow_redirects"`
}

type KafkaOut struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type SMTP struct {
	Addr          string        `mapstructure:"addr"`
	From          string        `mapstructure:"from"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	UseTLS        bool          `mapstructure:"use_tls"`
	Timeout       time.Duration `mapstructure:"timeout"`
	GatewayDomain string        `mapstructure:"gateway_domain"`
}

type Notifier struct {
	Driver string   `mapstructure:"driver"`
	Kafka  KafkaOut `mapstructure:"kafka"`
	SMTP   SMTP     `mapstructure:"smtp"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Config struct {
	App      App            `mapstructure:"app"`
	Store    Store          `mapstructure:"store"`
	DB       pginfra.Config `mapstructure:"db"`
	Logs     Logs           `mapstructure:"logs"`
	Sched    SchedCfg       `mapstructure:"sched"`
	HTTP     HTTPProbe      `mapstructure:"http"`
	Notifier Notifier       `mapstructure:"notifier"`
	OTEL     OTEL           `mapstructure:"otel"`
	Log      Log            `mapstructure:"log"`
	Server   Server         `mapstructure:"server"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}
