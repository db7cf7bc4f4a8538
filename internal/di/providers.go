package di

import (
	"context"
	"fmt"
	"time"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/repository"
	mid "github.com/haniae/Team2-CBA-Project-sub004/internal/middleware"
	internalrepo "github.com/haniae/Team2-CBA-Project-sub004/internal/repository"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/service/finnhub"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/usecase"
	pkgch "github.com/haniae/Team2-CBA-Project-sub004/pkg/clickhouse"
	"github.com/haniae/Team2-CBA-Project-sub004/pkg/config"
	pkgkafka "github.com/haniae/Team2-CBA-Project-sub004/pkg/kafka"
	"github.com/haniae/Team2-CBA-Project-sub004/pkg/metrics"
	"github.com/haniae/Team2-CBA-Project-sub004/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".observations (ts DateTime, ticker String, metric String, value Float64, source String, event_id String) ENGINE=ReplacingMergeTree ORDER BY (ticker, metric, ts)",
		"CREATE TABLE IF NOT EXISTS " + db + ".fundamentals (ts DateTime, ticker String, metric String, value Float64) ENGINE=MergeTree ORDER BY (ticker, metric, ts)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideObservationStorage creates ClickHouse storage repository.
func ProvideObservationStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".observations")
}

// ProvideObservationPublisher creates Kafka publisher repository.
func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaObservationsHandler registers handler for the observations topic.
func ProvideKafkaObservationsHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaObservationsHandler {
	return usecase.NewKafkaObservationsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideFinnhubStream creates Finnhub WebSocket stream.
func ProvideFinnhubStream(cfg *config.Config) repository.MarketStream {
	return finnhub.New(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Tickers,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
	)
}

// ProvideObservationProcessor creates the observation processor use case.
func ProvideObservationProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ObservationProcessor {
	return usecase.NewObservationProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideObservationCollector creates the observation collector use case.
func ProvideObservationCollector(
	stream repository.MarketStream,
	processor *usecase.ObservationProcessor,
	metrics repository.Metrics,
) *usecase.ObservationCollector {
	// Build the ingest pipeline between WebSocket and the backend
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewObservationCollector(stream, processor, metrics, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.ObservationCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaObservationsHandler,
	chClient *pkgch.Client,
	metrics repository.Metrics,
) *server.App {
	// Attach hook to consumer: NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, metrics)
	// attach observation processor to app for closing resources via collector
	if collector != nil {
		app.ObsProc = collector.Processor()
	}
	return app
}
