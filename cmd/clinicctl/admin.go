package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"clinicdesk/internal/adminpanel"
	"clinicdesk/internal/api"
)

func loadedPanel(ctx context.Context, a *app) (*adminpanel.Panel, error) {
	p := adminpanel.NewPanel(a.client, a.logger)
	if err := p.Load(ctx); err != nil {
		return nil, fmt.Errorf("%s", p.ErrorMessage())
	}
	return p, nil
}

func printUsers(title string, users []api.AdminUser) {
	fmt.Println(title)
	if len(users) == 0 {
		fmt.Println("  (none)")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tEMAIL\tPHONE\tDETAILS")
	for _, u := range users {
		details := u.Specialization
		if u.Type == api.RolePatient {
			details = u.DateOfBirth
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", u.ID, u.FullName, u.Email, u.Phone, details)
	}
	w.Flush()
}

func cmdAdminUsers(ctx context.Context, a *app, args []string) error {
	p, err := loadedPanel(ctx, a)
	if err != nil {
		return err
	}
	printUsers("Patients:", p.Patients())
	printUsers("Doctors:", p.Doctors())
	return nil
}

func userTypeFlag(raw string) (api.Role, error) {
	switch strings.ToUpper(raw) {
	case string(api.RolePatient):
		return api.RolePatient, nil
	case string(api.RoleDoctor):
		return api.RoleDoctor, nil
	}
	return "", fmt.Errorf("-type must be patient or doctor")
}

func cmdAdminUpdate(ctx context.Context, a *app, args []string) error {
	fs := flagSet("admin-update")
	userType := fs.String("type", "", "patient or doctor")
	id := fs.Int64("id", 0, "user id")
	name := fs.String("name", "", "new full name")
	email := fs.String("email", "", "new email")
	phone := fs.String("phone", "", "new phone number")
	gender := fs.String("gender", "", "new gender")
	specialization := fs.String("specialization", "", "new specialization (doctors)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	role, err := userTypeFlag(*userType)
	if err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("-id is required")
	}

	p, err := loadedPanel(ctx, a)
	if err != nil {
		return err
	}
	err = p.UpdateUser(ctx, role, *id, api.AdminUserUpdate{
		FullName:       *name,
		Email:          *email,
		Phone:          *phone,
		Gender:         *gender,
		Specialization: *specialization,
	})
	if err != nil {
		if msg := p.ErrorMessage(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	fmt.Println("User updated")
	return nil
}

func cmdAdminDelete(ctx context.Context, a *app, args []string) error {
	fs := flagSet("admin-delete")
	userType := fs.String("type", "", "patient or doctor")
	id := fs.Int64("id", 0, "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	role, err := userTypeFlag(*userType)
	if err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("-id is required")
	}

	p, err := loadedPanel(ctx, a)
	if err != nil {
		return err
	}
	if err := p.DeleteUser(ctx, role, *id); err != nil {
		if msg := p.ErrorMessage(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	fmt.Println("User deleted")
	return nil
}

func cmdAdminAppointments(ctx context.Context, a *app, args []string) error {
	p := adminpanel.NewPanel(a.client, a.logger)
	if err := p.LoadAppointments(ctx); err != nil {
		return fmt.Errorf("%s", p.ErrorMessage())
	}
	appointments := p.Appointments()
	if len(appointments) == 0 {
		fmt.Println("No appointments")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tDOCTOR\tPATIENT\tSTATUS")
	for _, appt := range appointments {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			appt.ID,
			appt.StartTime.Local().Format("2006-01-02 15:04"),
			appt.DoctorName,
			appt.PatientName,
			appt.Status,
		)
	}
	return w.Flush()
}
