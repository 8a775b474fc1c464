package twilio

import "sync"

type SentMessage struct {
	To   string
	Body string
}

// MessageSenderStub records messages instead of sending them.
type MessageSenderStub struct {
	mu   sync.Mutex
	Sent []SentMessage
	Err  error
}

func (s *MessageSenderStub) SendMessage(to, msg string) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, SentMessage{To: to, Body: msg})
	return nil
}

func (s *MessageSenderStub) Messages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := make([]SentMessage, len(s.Sent))
	copy(sent, s.Sent)
	return sent
}
