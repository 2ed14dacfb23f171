package source

import "go.uber.org/zap"

// NewOnlineMQTTSource builds a broker-less source that reports itself connected
func NewOnlineMQTTSource(prefix string) *MQTTSource {
	return newMQTTSource(prefix, func() bool { return true }, zap.NewNop())
}

// Deliver feeds a payload as if it arrived on topic
func (s *MQTTSource) Deliver(topic string, payload []byte) {
	s.handleMessage(topic, payload)
}

// Pending counts the CurrentFix calls waiting for the subject
func (s *MQTTSource) Pending(subjectID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters[subjectID])
}
