package main

import (
	"context"
	"fmt"

	"clinicdesk/internal/api"
	"clinicdesk/internal/chat"
)

func printChatMessage(m api.ChatMessage) {
	fmt.Printf("[%s] %s: %s\n", m.SentAt.Local().Format("15:04"), m.SenderName, m.Message)
}

func printHelpMessage(m api.HelpMessage) {
	who := m.SenderEmail
	if m.SenderType == api.RoleAdmin {
		who = "support"
	}
	fmt.Printf("[%s] %s: %s\n", m.SentAt.Local().Format("15:04"), who, m.Message)
}

func cmdChat(ctx context.Context, a *app, args []string) error {
	fs := flagSet("chat")
	appointmentID := fs.Int64("appointment", 0, "appointment id")
	send := fs.String("send", "", "message to send")
	follow := fs.Bool("follow", false, "keep polling for new messages until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *appointmentID == 0 {
		return fmt.Errorf("-appointment is required")
	}

	conv := chat.NewAppointmentChat(a.client, *appointmentID, a.cfg.ChatPollInterval, a.logger)

	if *send != "" {
		if err := conv.Send(ctx, *send); err != nil {
			return fmt.Errorf("%s", conv.ErrorMessage())
		}
	}

	if !*follow {
		messages, err := a.client.AppointmentMessages(ctx, *appointmentID)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "Failed to load messages"))
		}
		for _, m := range messages {
			printChatMessage(m)
		}
		return nil
	}

	var lastID int64
	conv.OnUpdate(func(messages []api.ChatMessage) {
		for _, m := range messages {
			if m.ID > lastID {
				printChatMessage(m)
				lastID = m.ID
			}
		}
	})
	conv.Start(ctx)
	defer conv.Stop()
	<-ctx.Done()
	return nil
}

func cmdHelpChat(ctx context.Context, a *app, args []string) error {
	fs := flagSet("help-chat")
	send := fs.String("send", "", "message to send")
	to := fs.String("to", "", "recipient email (admin replies)")
	conversation := fs.String("conversation", "", "view one user's thread (admins)")
	users := fs.Bool("users", false, "list users who wrote to support (admins)")
	follow := fs.Bool("follow", false, "keep polling for new messages until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}

	desk := chat.NewHelpDesk(a.client, a.cfg.ChatPollInterval, a.logger)

	if *users {
		list, err := desk.Users(ctx)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "Failed to load users"))
		}
		if len(list) == 0 {
			fmt.Println("Nobody has written to support yet")
			return nil
		}
		for _, u := range list {
			fmt.Printf("%s (%s)\n", u.Email, u.Type)
		}
		return nil
	}

	key := *conversation
	if key == "" {
		key = *to
	}

	if *send != "" {
		if err := a.client.SendHelpMessage(ctx, *send, key); err != nil {
			return fmt.Errorf("%s", api.Message(err, "Failed to send message"))
		}
	}

	if !*follow {
		var (
			messages []api.HelpMessage
			err      error
		)
		if key != "" {
			messages, err = a.client.HelpConversation(ctx, key)
		} else {
			messages, err = a.client.HelpMessages(ctx)
		}
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "Failed to load messages"))
		}
		for _, m := range messages {
			printHelpMessage(m)
		}
		return nil
	}

	if key != "" {
		defer desk.Stop()
		// SetConversation starts its own poller scoped to the key.
		var lastID int64
		desk.OnUpdate(func(messages []api.HelpMessage) {
			for _, m := range messages {
				if m.ID > lastID {
					printHelpMessage(m)
					lastID = m.ID
				}
			}
		})
		desk.SetConversation(ctx, key)
		<-ctx.Done()
		return nil
	}

	var lastID int64
	desk.OnUpdate(func(messages []api.HelpMessage) {
		for _, m := range messages {
			if m.ID > lastID {
				printHelpMessage(m)
				lastID = m.ID
			}
		}
	})
	desk.Start(ctx)
	defer desk.Stop()
	<-ctx.Done()
	return nil
}
