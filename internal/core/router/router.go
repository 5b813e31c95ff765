// Package router drives the scripted shopping assistant conversation.
//
// The conversation is a table-driven state machine. The state is a step
// counter; each step has a keyword set and a handler. A message whose text
// contains a keyword of the current step runs the handler, any other
// message gets the fallback reply. Every accepted message advances the step.
package router

import (
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/matcher"
	"github.com/niksmo/storefront/internal/core/ranker"
)

const (
	WelcomeText  = "Hi! I'm your shopping assistant. Ask me about today's deals, clothing or beauty products."
	FallbackText = "I'm here to help you find great products! Try asking about deals, clothing, or beauty products."

	dealsLimit    = 5
	lipstickLimit = 5
)

// Suggestions are quick replies offered to the user.
var Suggestions = []string{
	"Show me today's deals",
	"Best deals",
	"Today's offers",
	"Clothing products",
	"Fashion items",
	"Lipstick options",
	"Beauty products",
}

// A Handler builds the reply result sets from the product collection.
type Handler func(ps []domain.Product) domain.Reply

type Step struct {
	Keywords []string
	Handler  Handler
}

func (s Step) matches(lower string) bool {
	for _, k := range s.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// A Script maps a conversation step to its rule.
type Script map[int]Step

// DefaultScript returns the assistant script: deals, then clothing, then lipstick.
func DefaultScript() Script {
	return Script{
		0: {
			Keywords: []string{"deal", "best", "today", "offer"},
			Handler: func(ps []domain.Product) domain.Reply {
				return domain.Reply{
					Text:     "Here are today's best deals for you:",
					Products: first(ranker.Discounted(ps), dealsLimit),
				}
			},
		},
		1: {
			Keywords: []string{"clothing", "clothes", "fashion", "apparel"},
			Handler: func(ps []domain.Product) domain.Reply {
				b := ranker.Buckets(matcher.ByCategory(ps, string(domain.Clothing)))
				return domain.Reply{
					Text:    "Here are our clothing picks, grouped for you:",
					Buckets: &b,
				}
			},
		},
		2: {
			Keywords: []string{"lipstick", "beauty", "makeup"},
			Handler: func(ps []domain.Product) domain.Reply {
				return domain.Reply{
					Text:     "Here are some lipstick options you might like:",
					Products: first(matcher.ByTitle(ps, "lipstick"), lipstickLimit),
				}
			},
		},
	}
}

type Router struct {
	script   Script
	products []domain.Product
}

func New(script Script, products []domain.Product) Router {
	return Router{script: script, products: products}
}

// Route answers text at step. Steps missing from the script always
// get the fallback reply.
func (r Router) Route(step int, text string) domain.Reply {
	s, ok := r.script[step]
	if !ok || s.Handler == nil || !s.matches(strings.ToLower(text)) {
		return domain.Reply{Text: FallbackText}
	}
	return s.Handler(r.products)
}

func Welcome() domain.Reply {
	return domain.Reply{Text: WelcomeText}
}

// A Conversation is a single user session. It is not safe for
// concurrent use.
type Conversation struct {
	router  Router
	step    int
	history []domain.Message
	now     func() time.Time
}

func NewConversation(r Router) *Conversation {
	return &Conversation{router: r, now: time.Now}
}

// Send routes a user message and records both sides in the history.
// Blank text is ignored and ok is false.
func (c *Conversation) Send(text string) (reply domain.Reply, ok bool) {
	if strings.TrimSpace(text) == "" {
		return domain.Reply{}, false
	}

	c.history = append(c.history, domain.Message{
		Sender: domain.SenderUser,
		Reply:  domain.Reply{Text: text},
		At:     c.now(),
	})

	reply = c.router.Route(c.step, text)
	c.step++

	c.history = append(c.history, domain.Message{
		Sender: domain.SenderAssistant,
		Reply:  reply,
		At:     c.now(),
	})
	return reply, true
}

func (c *Conversation) Reset() {
	c.step = 0
	c.history = nil
}

func (c *Conversation) Step() int {
	return c.step
}

func (c *Conversation) History() []domain.Message {
	out := make([]domain.Message, len(c.history))
	copy(out, c.history)
	return out
}

func first(ps []domain.Product, n int) []domain.Product {
	if len(ps) > n {
		return ps[:n]
	}
	return ps
}
