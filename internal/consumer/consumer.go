package consumer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/IBM/sarama"

	"github.com/campusjam/CampusJam/internal/services"
	"github.com/campusjam/CampusJam/pkg/mq"
)

// EventConsumer 消费社交事件主题，目前只有关注事件
type EventConsumer struct {
	notificationService *services.NotificationService
}

func NewEventConsumer(notificationService *services.NotificationService) *EventConsumer {
	return &EventConsumer{notificationService: notificationService}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (c *EventConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (c *EventConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (c *EventConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event mq.FollowEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("unmarshal event failed: %v", err)
			session.MarkMessage(message, "")
			continue
		}

		if event.Type != mq.EventFollow {
			log.Printf("unknown event type %q, skipping", event.Type)
			session.MarkMessage(message, "")
			continue
		}

		// 落库并推送。失败也标记消费，避免坏事件造成死循环
		if err := c.notificationService.CreateFollowNotification(event.RecipientID, event.SenderID, event.SenderName); err != nil {
			log.Printf("create notification from event failed: %v", err)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// StartConsumer 启动消费者组循环，失败时在后台持续重试
func StartConsumer(brokers []string, groupID string, topic string, consumer *EventConsumer) error {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	client, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return err
	}

	ctx := context.Background()
	go func() {
		for {
			if err := client.Consume(ctx, []string{topic}, consumer); err != nil {
				log.Printf("consumer error: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return nil
}
