// Package relay is the local peer notification channel: a named-topic
// broadcast between portal instances in the same process, standing in for
// server-pushed updates when no remote subscription is active. Semantics
// mirror a browser BroadcastChannel, with one deliberate difference: the
// publisher receives its own messages too, so every consumer must
// de-duplicate by record id.
package relay

import (
	"sync"

	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

const channelBuffer = 64

// Broker routes published documents to every channel open on a topic.
type Broker struct {
	mu     sync.RWMutex
	topics map[string][]*Channel
}

func NewBroker() *Broker {
	return &Broker{topics: make(map[string][]*Channel)}
}

// Open subscribes to a topic and returns the channel handle.
func (b *Broker) Open(topic string) *Channel {
	c := &Channel{broker: b, topic: topic, msgs: make(chan models.Document, channelBuffer)}
	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], c)
	b.mu.Unlock()
	return c
}

func (b *Broker) publish(topic string, doc models.Document) {
	// sends happen under the lock so Close cannot close a channel with a
	// publish in flight; sends are non-blocking so this never stalls
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, c := range b.topics[topic] {
		select {
		case c.msgs <- doc.Clone():
		default:
			// a stalled consumer loses messages rather than blocking the
			// publisher; there is no delivery guarantee on this channel
		}
	}
}

func (b *Broker) remove(ch *Channel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[ch.topic]
	for i, c := range subs {
		if c == ch {
			b.topics[ch.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

// Channel is one open subscription on a topic.
type Channel struct {
	broker *Broker
	topic  string
	msgs   chan models.Document
	once   sync.Once
}

// Publish broadcasts a document to every channel on the topic, including
// this one.
func (c *Channel) Publish(doc models.Document) {
	c.broker.publish(c.topic, doc)
}

// Messages returns the stream of received documents. The channel is closed
// by Close.
func (c *Channel) Messages() <-chan models.Document {
	return c.msgs
}

// Close unsubscribes and closes the message stream.
func (c *Channel) Close() {
	c.once.Do(func() {
		c.broker.remove(c)
		close(c.msgs)
	})
}
