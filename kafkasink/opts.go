package kafkasink

import (
	"time"
)

type Acks string

const (
	NoAck     Acks = "NoAck"
	LeaderAck Acks = "LeaderAck"
	AllISRAck Acks = "AllISRAck"
)

type CompressionCodec string

const (
	gzip   CompressionCodec = "gzip"
	snappy CompressionCodec = "snappy"
	lz4    CompressionCodec = "lz4"
	zstd   CompressionCodec = "zstd"
)

type SASLMechanism string

const (
	basic       SASLMechanism = "plain"
	scramSha256 SASLMechanism = "SCRAM-SHA-256"
	scramSha512 SASLMechanism = "SCRAM-SHA-512"
	awsMskIam   SASLMechanism = "aws_msk_iam"
)

// Config is the kafka section of the console plugin configuration.
type Config struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	TLS     *TLS     `mapstructure:"tls"`
	SASL    *SASL    `mapstructure:"sasl"`
	Ping    *Ping    `mapstructure:"ping"`

	ProducerOpts *ProducerOpts `mapstructure:"producer_options"`
}

type SASL struct {
	Type SASLMechanism `mapstructure:"mechanism"`

	// plain + SHA
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Zid      string `mapstructure:"zid"`
	Nonce    []byte `mapstructure:"nonce"`
	IsToken  bool   `mapstructure:"is_token"`

	// aws_msk_iam
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	SessionToken string `mapstructure:"session_token"`
	UserAgent    string `mapstructure:"user_agent"`
}

type Ping struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type ProducerOpts struct {
	RequiredAcks     Acks             `mapstructure:"required_acks"`
	MaxMessageBytes  int32            `mapstructure:"max_message_bytes"`
	RequestTimeout   time.Duration    `mapstructure:"request_timeout"`
	DeliveryTimeout  time.Duration    `mapstructure:"delivery_timeout"`
	CompressionCodec CompressionCodec `mapstructure:"compression_codec"`
}

type TLS struct {
	Key    string `mapstructure:"key"`
	Cert   string `mapstructure:"cert"`
	RootCA string `mapstructure:"root_ca"`
}
