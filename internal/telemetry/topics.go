// v0
// internal/telemetry/topics.go
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// EnsureTopic creates topic through the cluster controller when it does not
// exist yet and checks that it carries at least the requested partitions.
func EnsureTopic(ctx context.Context, log *slog.Logger, brokers []string, topic string, partitions, replication int) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := kafka.DialContext(dialCtx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker %s: %w", brokers[0], err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Warn("broker close", "err", cerr)
		}
	}()
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("fetch controller metadata: %w", err)
	}
	ctrlAddr := fmt.Sprintf("%s:%d", controller.Host, controller.Port)
	admin, err := kafka.DialContext(dialCtx, "tcp", ctrlAddr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", ctrlAddr, err)
	}
	defer func() {
		if cerr := admin.Close(); cerr != nil {
			log.Warn("controller close", "err", cerr)
		}
	}()
	if err := admin.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		log.Warn("controller deadline", "err", err)
	}

	err = admin.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: partitions, ReplicationFactor: replication})
	switch {
	case err == nil:
		log.Info("topic created", "topic", topic, "partitions", partitions, "replication", replication)
	case isAlreadyExists(err):
		log.Info("topic exists", "topic", topic)
	default:
		return fmt.Errorf("create topic %s: %w", topic, err)
	}

	parts, err := admin.ReadPartitions(topic)
	if err != nil {
		return fmt.Errorf("read partitions for %s: %w", topic, err)
	}
	if n := countPartitions(parts, topic); n < partitions {
		return fmt.Errorf("topic %s has %d partitions; expected at least %d", topic, n, partitions)
	}
	return nil
}

func countPartitions(parts []kafka.Partition, topic string) int {
	seen := map[int]struct{}{}
	for _, p := range parts {
		if p.Topic != topic {
			continue
		}
		seen[p.ID] = struct{}{}
	}
	return len(seen)
}

func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, kafka.TopicAlreadyExists) {
		return true
	}
	return strings.Contains(err.Error(), "Topic with this name already exists")
}
