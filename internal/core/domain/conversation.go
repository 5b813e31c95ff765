package domain

import "time"

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// A Reply is the assistant answer to one user message.
//
// Products and Buckets are the optional result sets;
// a fallback reply carries neither.
type Reply struct {
	Text     string
	Products []Product
	Buckets  *Buckets
}

func (r Reply) HasResults() bool {
	return len(r.Products) != 0 || (r.Buckets != nil && !r.Buckets.Empty())
}

// A Message is one conversation history entry.
type Message struct {
	Sender Sender
	Reply  Reply
	At     time.Time
}
