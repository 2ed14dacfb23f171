package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/jengzang/fieldtrack-backend-go/internal/config"
	"github.com/jengzang/fieldtrack-backend-go/internal/models"
)

const fixQoS = 1

// MQTTSource receives device fixes published to <prefix>/<subjectId>/fix
type MQTTSource struct {
	client    mqtt.Client
	prefix    string
	connected func() bool
	logger    *zap.Logger

	mu       sync.Mutex
	nextID   int
	watchers map[string]map[int]FixHandler
	waiters  map[string]map[int]chan models.RawFix
	closed   bool
}

// NewMQTTSource connects to the broker and subscribes to the fix topic.
// The subscription is renewed on every reconnect.
func NewMQTTSource(cfg config.MQTTConfig, logger *zap.Logger) (*MQTTSource, error) {
	s := newMQTTSource(cfg.TopicPrefix, nil, logger)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		token := c.Subscribe(s.topicFilter(), fixQoS, func(_ mqtt.Client, msg mqtt.Message) {
			s.handleMessage(msg.Topic(), msg.Payload())
		})
		if token.Wait() && token.Error() != nil {
			s.logger.Error("failed to subscribe to fix topic",
				zap.String("topic", s.topicFilter()), zap.Error(token.Error()))
			return
		}
		s.logger.Info("subscribed to fix topic", zap.String("topic", s.topicFilter()))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn("mqtt connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	s.client = client
	s.connected = client.IsConnectionOpen
	return s, nil
}

func newMQTTSource(prefix string, connected func() bool, logger *zap.Logger) *MQTTSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if connected == nil {
		connected = func() bool { return false }
	}
	return &MQTTSource{
		prefix:    strings.TrimRight(prefix, "/"),
		connected: connected,
		logger:    logger,
		watchers:  make(map[string]map[int]FixHandler),
		waiters:   make(map[string]map[int]chan models.RawFix),
	}
}

func (s *MQTTSource) topicFilter() string {
	return s.prefix + "/+/fix"
}

// subjectFromTopic extracts the subject from <prefix>/<subjectId>/fix
func (s *MQTTSource) subjectFromTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, s.prefix+"/")
	if !ok {
		return "", false
	}
	subject, ok := strings.CutSuffix(rest, "/fix")
	if !ok || subject == "" || strings.Contains(subject, "/") {
		return "", false
	}
	return subject, true
}

func (s *MQTTSource) handleMessage(topic string, payload []byte) {
	subjectID, ok := s.subjectFromTopic(topic)
	if !ok {
		s.logger.Debug("ignoring message on unexpected topic", zap.String("topic", topic))
		return
	}

	var fix models.RawFix
	if err := json.Unmarshal(payload, &fix); err != nil {
		s.logger.Warn("dropping undecodable fix",
			zap.String("subject_id", subjectID), zap.Error(err))
		return
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = time.Now().UTC()
	}

	if !fix.HasPosition() {
		s.logger.Warn("dropping fix without position", zap.String("subject_id", subjectID))
		return
	}

	// A fix that answers a pending CurrentFix is not also pushed to watchers,
	// otherwise a tracker holding both would record it twice.
	s.mu.Lock()
	var handlers []FixHandler
	if len(s.waiters[subjectID]) > 0 {
		for id, ch := range s.waiters[subjectID] {
			ch <- fix // buffered, one per waiter
			delete(s.waiters[subjectID], id)
		}
	} else {
		for _, h := range s.watchers[subjectID] {
			handlers = append(handlers, h)
		}
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(fix)
	}
}

// CurrentFix waits for the subject's next published fix
func (s *MQTTSource) CurrentFix(ctx context.Context, subjectID string, timeout time.Duration) (models.RawFix, error) {
	s.mu.Lock()
	if s.closed || !s.connected() {
		s.mu.Unlock()
		return models.RawFix{}, ErrSourceUnavailable
	}
	id := s.nextID
	s.nextID++
	ch := make(chan models.RawFix, 1)
	if s.waiters[subjectID] == nil {
		s.waiters[subjectID] = make(map[int]chan models.RawFix)
	}
	s.waiters[subjectID][id] = ch
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case fix := <-ch:
		return fix, nil
	case <-timer.C:
		s.dropWaiter(subjectID, id)
		return models.RawFix{}, ErrFixTimeout
	case <-ctx.Done():
		s.dropWaiter(subjectID, id)
		return models.RawFix{}, ctx.Err()
	}
}

func (s *MQTTSource) dropWaiter(subjectID string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.waiters[subjectID], id)
}

// Watch registers handler for every fix published for the subject
func (s *MQTTSource) Watch(subjectID string, handler FixHandler) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceUnavailable
	}

	id := s.nextID
	s.nextID++
	if s.watchers[subjectID] == nil {
		s.watchers[subjectID] = make(map[int]FixHandler)
	}
	s.watchers[subjectID][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers[subjectID], id)
		})
	}, nil
}

// Close drops all watchers and disconnects from the broker
func (s *MQTTSource) Close() {
	s.mu.Lock()
	s.closed = true
	s.watchers = make(map[string]map[int]FixHandler)
	s.mu.Unlock()

	if s.client != nil {
		s.client.Disconnect(250)
	}
}
