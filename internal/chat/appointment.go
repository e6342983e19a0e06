package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

// Gateway is the slice of the API client the chat views need.
type Gateway interface {
	AppointmentMessages(ctx context.Context, appointmentID int64) ([]api.ChatMessage, error)
	SendAppointmentMessage(ctx context.Context, appointmentID int64, message string) error
	HelpMessages(ctx context.Context) ([]api.HelpMessage, error)
	HelpConversation(ctx context.Context, email string) ([]api.HelpMessage, error)
	SendHelpMessage(ctx context.Context, message, recipientEmail string) error
	HelpChatUsers(ctx context.Context) ([]api.HelpChatUser, error)
}

// AppointmentChat polls one appointment's conversation. Each refresh
// replaces the whole message list in server order; no client-side resorting
// or deduplication.
type AppointmentChat struct {
	gw            Gateway
	logger        *logging.Logger
	appointmentID int64
	poller        *Poller

	mu       sync.Mutex
	messages []api.ChatMessage
	errMsg   string
	onUpdate func([]api.ChatMessage)
}

func NewAppointmentChat(gw Gateway, appointmentID int64, interval time.Duration, logger *logging.Logger) *AppointmentChat {
	if logger == nil {
		logger = logging.Default()
	}
	c := &AppointmentChat{
		gw:            gw,
		logger:        logger.WithComponent("chat"),
		appointmentID: appointmentID,
	}
	c.poller = NewPoller(interval, c.refresh, c.logger)
	return c
}

// OnUpdate registers an observer invoked with each fresh snapshot. Set it
// before Start.
func (c *AppointmentChat) OnUpdate(fn func([]api.ChatMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// Start fetches immediately and then polls until Stop.
func (c *AppointmentChat) Start(ctx context.Context) {
	c.poller.Start(ctx)
}

// Stop tears the poll loop down. Idempotent.
func (c *AppointmentChat) Stop() {
	c.poller.Stop()
}

func (c *AppointmentChat) refresh(ctx context.Context) {
	messages, err := c.gw.AppointmentMessages(ctx, c.appointmentID)
	c.mu.Lock()
	if err != nil {
		// Keep the last good snapshot; the next tick retries.
		c.errMsg = api.Message(err, "Failed to load messages")
		c.mu.Unlock()
		return
	}
	c.messages = messages
	c.errMsg = ""
	observer := c.onUpdate
	c.mu.Unlock()

	if observer != nil {
		observer(messages)
	}
}

// Send posts a message and force-refreshes so the sender sees it without
// waiting for the next tick. Blank bodies are a no-op.
func (c *AppointmentChat) Send(ctx context.Context, body string) error {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	if err := c.gw.SendAppointmentMessage(ctx, c.appointmentID, body); err != nil {
		c.mu.Lock()
		c.errMsg = api.Message(err, "Failed to send message")
		c.mu.Unlock()
		return err
	}
	c.refresh(ctx)
	return nil
}

func (c *AppointmentChat) Messages() []api.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.ChatMessage(nil), c.messages...)
}

func (c *AppointmentChat) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}
