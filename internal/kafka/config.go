package kafka

import (
	"time"

	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/IBM/sarama"
)

// Config конфигурация для Kafka
type Config struct {
	Brokers  []string
	Producer ProducerConfig
	Consumer ConsumerConfig
}

// ProducerConfig конфигурация для продюсера
type ProducerConfig struct {
	MaxMessageBytes  int
	Compression      sarama.CompressionCodec
	RequiredAcks     sarama.RequiredAcks
	FlushMaxMessages int
	RetryMax         int
}

// ConsumerConfig конфигурация для консьюмера
type ConsumerConfig struct {
	Group             string
	InitialOffset     int64
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration
	AutoCommit        bool
}

// NewConfig создает новую конфигурацию Kafka
func NewConfig(brokers []string, groupID string) *Config {
	return &Config{
		Brokers: brokers,
		Producer: ProducerConfig{
			MaxMessageBytes:  1000000,
			Compression:      sarama.CompressionSnappy,
			RequiredAcks:     sarama.WaitForAll,
			FlushMaxMessages: 100,
			RetryMax:         3,
		},
		Consumer: ConsumerConfig{
			Group:             groupID,
			InitialOffset:     sarama.OffsetOldest,
			SessionTimeout:    10 * time.Second,
			HeartbeatInterval: 3 * time.Second,
			AutoCommit:        true,
		},
	}
}

// NewSaramaConfig создает новую конфигурацию Sarama
func NewSaramaConfig(cfg *Config, log *logger.Logger) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.ClientID = "course-marketplace"
	saramaConfig.Version = sarama.V3_3_0_0

	// Настройки продюсера; SyncProducer требует Return.Successes
	saramaConfig.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	saramaConfig.Producer.Compression = cfg.Producer.Compression
	saramaConfig.Producer.RequiredAcks = cfg.Producer.RequiredAcks
	saramaConfig.Producer.Flush.MaxMessages = cfg.Producer.FlushMaxMessages
	saramaConfig.Producer.Retry.Max = cfg.Producer.RetryMax
	saramaConfig.Producer.Idempotent = false
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	// Настройки консьюмера
	saramaConfig.Consumer.Group.Session.Timeout = cfg.Consumer.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = cfg.Consumer.HeartbeatInterval
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	saramaConfig.Consumer.Offsets.Initial = cfg.Consumer.InitialOffset
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = cfg.Consumer.AutoCommit
	saramaConfig.Consumer.Return.Errors = true

	log.Debugw("Sarama config prepared", "brokers", cfg.Brokers, "group", cfg.Consumer.Group)
	return saramaConfig
}
