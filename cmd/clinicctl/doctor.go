package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"clinicdesk/internal/api"
	"clinicdesk/internal/schedule"
)

func loadedController(ctx context.Context, a *app) (*schedule.Controller, error) {
	c := schedule.NewController(a.client, a.logger)
	if err := c.Load(ctx); err != nil {
		return nil, fmt.Errorf("%s", c.ErrorMessage())
	}
	return c, nil
}

func printAppointments(title string, appointments []api.Appointment) {
	fmt.Println(title)
	if len(appointments) == 0 {
		fmt.Println("  (none)")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tWHEN\tPATIENT\tSTATUS\tNOTES")
	for _, appt := range appointments {
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
			appt.ID,
			appt.StartTime.Local().Format("2006-01-02 15:04"),
			appt.PatientName,
			appt.Status,
			appt.Notes,
		)
	}
	w.Flush()
}

func cmdQueue(ctx context.Context, a *app, args []string) error {
	fs := flagSet("queue")
	view := fs.String("view", "all", "pending, today, history, or all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := loadedController(ctx, a)
	if err != nil {
		return err
	}
	switch *view {
	case "pending":
		printAppointments("Pending requests:", c.Pending())
	case "today":
		printAppointments("Today:", c.Today())
	case "history":
		printAppointments("History:", c.History())
	case "all":
		printAppointments("Pending requests:", c.Pending())
		printAppointments("Today:", c.Today())
		printAppointments("History:", c.History())
	default:
		return fmt.Errorf("unknown view %q", *view)
	}
	return nil
}

func appointmentAction(ctx context.Context, a *app, args []string, name string,
	act func(context.Context, *schedule.Controller, int64) error, done string) error {
	fs := flagSet(name)
	appointmentID := fs.Int64("appointment", 0, "appointment id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *appointmentID == 0 {
		return fmt.Errorf("-appointment is required")
	}

	c, err := loadedController(ctx, a)
	if err != nil {
		return err
	}
	if err := act(ctx, c, *appointmentID); err != nil {
		if msg := c.ErrorMessage(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	fmt.Println(done)
	return nil
}

func cmdAccept(ctx context.Context, a *app, args []string) error {
	return appointmentAction(ctx, a, args, "accept",
		func(ctx context.Context, c *schedule.Controller, id int64) error { return c.Accept(ctx, id) },
		"Appointment accepted")
}

func cmdReject(ctx context.Context, a *app, args []string) error {
	return appointmentAction(ctx, a, args, "reject",
		func(ctx context.Context, c *schedule.Controller, id int64) error { return c.Reject(ctx, id) },
		"Appointment rejected")
}

func cmdComplete(ctx context.Context, a *app, args []string) error {
	return appointmentAction(ctx, a, args, "complete",
		func(ctx context.Context, c *schedule.Controller, id int64) error { return c.Complete(ctx, id) },
		"Appointment completed")
}

func cmdDashboard(ctx context.Context, a *app, args []string) error {
	dash, err := a.client.DoctorDashboard(ctx)
	if err != nil {
		return fmt.Errorf("%s", api.Message(err, "Failed to load dashboard"))
	}
	fmt.Printf("%s (%s)\n", dash.FullName, dash.Specialization)
	fmt.Printf("  Today:     %d\n", dash.TodaysAppointments)
	fmt.Printf("  Pending:   %d\n", dash.PendingAppointments)
	fmt.Printf("  Completed: %d\n", dash.CompletedAppointments)
	return nil
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	fs := flagSet("profile")
	name := fs.String("name", "", "new full name")
	phone := fs.String("phone", "", "new phone number")
	gender := fs.String("gender", "", "new gender")
	specialization := fs.String("specialization", "", "new specialization (doctors only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id := a.session.Identity()
	if !id.LoggedIn() {
		return fmt.Errorf("not signed in")
	}
	upd := api.UpdateProfileRequest{
		FullName:       *name,
		Phone:          *phone,
		Gender:         *gender,
		Specialization: *specialization,
	}
	editing := *name != "" || *phone != "" || *gender != "" || *specialization != ""

	switch id.Role {
	case api.RolePatient:
		if editing {
			profile, err := a.client.UpdatePatientMe(ctx, upd)
			if err != nil {
				return fmt.Errorf("%s", api.Message(err, "Failed to update profile"))
			}
			fmt.Printf("%s  %s  %s\n", profile.FullName, profile.Email, profile.Phone)
			return nil
		}
		profile, err := a.client.PatientMe(ctx)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "Failed to load profile"))
		}
		fmt.Printf("%s  %s  %s\n", profile.FullName, profile.Email, profile.Phone)
		if profile.DateOfBirth != "" {
			fmt.Printf("Born %s\n", profile.DateOfBirth)
		}
	case api.RoleDoctor:
		if editing {
			profile, err := a.client.UpdateDoctorMe(ctx, upd)
			if err != nil {
				return fmt.Errorf("%s", api.Message(err, "Failed to update profile"))
			}
			fmt.Printf("%s  %s  %s  %s\n", profile.FullName, profile.Email, profile.Phone, profile.Specialization)
			return nil
		}
		profile, err := a.client.DoctorMe(ctx)
		if err != nil {
			return fmt.Errorf("%s", api.Message(err, "Failed to load profile"))
		}
		fmt.Printf("%s  %s  %s  %s\n", profile.FullName, profile.Email, profile.Phone, profile.Specialization)
	default:
		fmt.Println("Admin accounts have no editable profile")
	}
	return nil
}
