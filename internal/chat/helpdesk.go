package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"clinicdesk/internal/api"
	"clinicdesk/pkg/logging"
)

// HelpDesk polls the support channel. Non-admin users see their own thread;
// an admin selects a counterpart whose thread to view and reply into.
// Switching counterpart cancels the old poll loop and starts a fresh one
// scoped to the new conversation key.
type HelpDesk struct {
	gw       Gateway
	logger   *logging.Logger
	interval time.Duration

	mu          sync.Mutex
	counterpart string // empty: caller's own thread (or all threads for admins)
	poller      *Poller
	messages    []api.HelpMessage
	errMsg      string
	onUpdate    func([]api.HelpMessage)
}

func NewHelpDesk(gw Gateway, interval time.Duration, logger *logging.Logger) *HelpDesk {
	if logger == nil {
		logger = logging.Default()
	}
	h := &HelpDesk{
		gw:       gw,
		logger:   logger.WithComponent("helpdesk"),
		interval: interval,
	}
	h.poller = NewPoller(interval, h.refresh, h.logger)
	return h
}

func (h *HelpDesk) OnUpdate(fn func([]api.HelpMessage)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onUpdate = fn
}

func (h *HelpDesk) Start(ctx context.Context) {
	h.poller.Start(ctx)
}

func (h *HelpDesk) Stop() {
	h.poller.Stop()
}

// SetConversation switches the admin view to another user's thread. The old
// poll loop is stopped before the new one starts so a slow response for the
// previous key cannot land in the new view.
func (h *HelpDesk) SetConversation(ctx context.Context, counterpartEmail string) {
	h.mu.Lock()
	if h.counterpart == counterpartEmail {
		h.mu.Unlock()
		return
	}
	h.counterpart = counterpartEmail
	h.messages = nil
	h.errMsg = ""
	h.mu.Unlock()

	h.poller.Stop()
	h.poller = NewPoller(h.interval, h.refresh, h.logger)
	h.poller.Start(ctx)
}

func (h *HelpDesk) refresh(ctx context.Context) {
	h.mu.Lock()
	counterpart := h.counterpart
	h.mu.Unlock()

	var (
		messages []api.HelpMessage
		err      error
	)
	if counterpart == "" {
		messages, err = h.gw.HelpMessages(ctx)
	} else {
		messages, err = h.gw.HelpConversation(ctx, counterpart)
	}

	h.mu.Lock()
	if counterpart != h.counterpart {
		// Conversation switched while this fetch was in flight.
		h.mu.Unlock()
		return
	}
	if err != nil {
		h.errMsg = api.Message(err, "Failed to load messages")
		h.mu.Unlock()
		return
	}
	h.messages = messages
	h.errMsg = ""
	observer := h.onUpdate
	h.mu.Unlock()

	if observer != nil {
		observer(messages)
	}
}

// Send posts to the help channel, targeting the selected counterpart when
// one is set, then force-refreshes. Blank bodies are a no-op.
func (h *HelpDesk) Send(ctx context.Context, body string) error {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	h.mu.Lock()
	recipient := h.counterpart
	h.mu.Unlock()

	if err := h.gw.SendHelpMessage(ctx, body, recipient); err != nil {
		h.mu.Lock()
		h.errMsg = api.Message(err, "Failed to send message")
		h.mu.Unlock()
		return err
	}
	h.refresh(ctx)
	return nil
}

// Users lists the non-admin participants an admin can reply to.
func (h *HelpDesk) Users(ctx context.Context) ([]api.HelpChatUser, error) {
	return h.gw.HelpChatUsers(ctx)
}

func (h *HelpDesk) Messages() []api.HelpMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]api.HelpMessage(nil), h.messages...)
}

func (h *HelpDesk) ErrorMessage() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errMsg
}
