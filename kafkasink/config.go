package kafkasink

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/roadrunner-server/errors"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	kaws "github.com/twmb/franz-go/pkg/sasl/aws"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"
	"go.uber.org/zap"
)

const (
	defaultBroker string = "127.0.0.1:9092"
	defaultTopic  string = "console-audit"
)

// InitDefault fills the defaults and translates the configuration into kgo options.
func (c *Config) InitDefault(log *zap.Logger) ([]kgo.Opt, error) {
	const op = errors.Op("kafka_sink_init_default")

	if len(c.Brokers) == 0 {
		c.Brokers = []string{defaultBroker}
	}

	if c.Topic == "" {
		c.Topic = defaultTopic
	}

	if c.Ping == nil {
		c.Ping = &Ping{
			Timeout: time.Second * 10,
		}
	}

	if c.ProducerOpts == nil {
		c.ProducerOpts = &ProducerOpts{}
	}

	if c.ProducerOpts.RequiredAcks == "" {
		c.ProducerOpts.RequiredAcks = AllISRAck
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Brokers...),
		kgo.DefaultProduceTopic(c.Topic),
		kgo.WithLogger(newLogger(log)),
	}

	popts, err := c.ProducerOpts.opts()
	if err != nil {
		return nil, errors.E(op, err)
	}
	opts = append(opts, popts...)

	if c.TLS != nil {
		tlsCfg, errT := c.TLS.config()
		if errT != nil {
			return nil, errors.E(op, errT)
		}
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}

	if c.SASL != nil {
		mech, errS := c.SASL.mechanism()
		if errS != nil {
			return nil, errors.E(op, errS)
		}
		opts = append(opts, kgo.SASL(mech))
	}

	return opts, nil
}

func (p *ProducerOpts) opts() ([]kgo.Opt, error) {
	var opts []kgo.Opt

	switch p.RequiredAcks {
	case AllISRAck:
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	case LeaderAck:
		// idempotent writes require all ISR acks
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite())
	case NoAck:
		opts = append(opts, kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite())
	default:
		return nil, errors.Errorf("unknown required_acks value: %s", p.RequiredAcks)
	}

	switch p.CompressionCodec {
	case "":
	case gzip:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.GzipCompression()))
	case snappy:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.SnappyCompression()))
	case lz4:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.Lz4Compression()))
	case zstd:
		opts = append(opts, kgo.ProducerBatchCompression(kgo.ZstdCompression()))
	default:
		return nil, errors.Errorf("unknown compression codec: %s", p.CompressionCodec)
	}

	if p.MaxMessageBytes > 0 {
		opts = append(opts, kgo.ProducerBatchMaxBytes(p.MaxMessageBytes))
	}

	if p.RequestTimeout > 0 {
		opts = append(opts, kgo.RequestTimeoutOverhead(p.RequestTimeout))
	}

	if p.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(p.DeliveryTimeout))
	}

	return opts, nil
}

func (s *SASL) mechanism() (sasl.Mechanism, error) {
	switch s.Type {
	case basic:
		return plain.Auth{
			User: s.Username,
			Pass: s.Password,
			Zid:  s.Zid,
		}.AsMechanism(), nil
	case scramSha256:
		return s.scram().AsSha256Mechanism(), nil
	case scramSha512:
		return s.scram().AsSha512Mechanism(), nil
	case awsMskIam:
		return kaws.ManagedStreamingIAM(s.awsAuth), nil
	default:
		return nil, errors.Errorf("unknown SASL mechanism: %s", s.Type)
	}
}

func (s *SASL) scram() scram.Auth {
	return scram.Auth{
		User:    s.Username,
		Pass:    s.Password,
		Zid:     s.Zid,
		Nonce:   s.Nonce,
		IsToken: s.IsToken,
	}
}

// awsAuth uses the static keys when set, the default AWS credential chain otherwise.
func (s *SASL) awsAuth(ctx context.Context) (kaws.Auth, error) {
	if s.AccessKey != "" && s.SecretKey != "" {
		return kaws.Auth{
			AccessKey:    s.AccessKey,
			SecretKey:    s.SecretKey,
			SessionToken: s.SessionToken,
			UserAgent:    s.UserAgent,
		}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return kaws.Auth{}, err
	}

	if cfg.Credentials == nil {
		return kaws.Auth{}, errors.Str("no AWS credentials found for aws_msk_iam")
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return kaws.Auth{}, err
	}

	return kaws.Auth{
		AccessKey:    creds.AccessKeyID,
		SecretKey:    creds.SecretAccessKey,
		SessionToken: creds.SessionToken,
		UserAgent:    s.UserAgent,
	}, nil
}

func (t *TLS) config() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if t.Cert != "" || t.Key != "" {
		cert, err := tls.LoadX509KeyPair(t.Cert, t.Key)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if t.RootCA != "" {
		pem, err := os.ReadFile(t.RootCA)
		if err != nil {
			return nil, err
		}

		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}

		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.Errorf("failed to append root CA from %s", t.RootCA)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
