package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AppointmentMessages fetches the full message list for one appointment's
// conversation, ordered by the server.
func (c *Client) AppointmentMessages(ctx context.Context, appointmentID int64) ([]ChatMessage, error) {
	var out []ChatMessage
	if err := c.doList(ctx, "chat_messages", fmt.Sprintf("/chat/appointment/%d", appointmentID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendAppointmentMessage(ctx context.Context, appointmentID int64, message string) error {
	req := SendMessageRequest{Message: message}
	return c.do(ctx, "chat_send", http.MethodPost, fmt.Sprintf("/chat/appointment/%d", appointmentID), req, nil)
}

// HelpMessages fetches the caller's help-desk thread. Admins get all
// threads interleaved.
func (c *Client) HelpMessages(ctx context.Context) ([]HelpMessage, error) {
	var out []HelpMessage
	if err := c.doList(ctx, "help_messages", "/help-chat", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HelpChatUsers lists non-admin participants an admin can reply to.
func (c *Client) HelpChatUsers(ctx context.Context) ([]HelpChatUser, error) {
	var out []HelpChatUser
	if err := c.doList(ctx, "help_chat_users", "/help-chat/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HelpConversation fetches the thread between the admin and one user.
func (c *Client) HelpConversation(ctx context.Context, email string) ([]HelpMessage, error) {
	var out []HelpMessage
	path := "/help-chat/conversation/" + url.PathEscape(email)
	if err := c.doList(ctx, "help_conversation", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendHelpMessage posts to the help-desk channel; recipientEmail targets a
// specific user's thread (admin replies) and is omitted otherwise.
func (c *Client) SendHelpMessage(ctx context.Context, message, recipientEmail string) error {
	req := SendMessageRequest{Message: message, RecipientEmail: recipientEmail}
	return c.do(ctx, "help_send", http.MethodPost, "/help-chat", req, nil)
}
