package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"clinicdesk/internal/api"
	"clinicdesk/internal/booking"
	"clinicdesk/internal/directory"
	"clinicdesk/internal/forms"
	"clinicdesk/internal/history"
)

func printFormErrors(errs forms.Errors) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", field, errs[field])
	}
	return fmt.Errorf("registration form has errors")
}

func cmdRegisterPatient(ctx context.Context, a *app, args []string) error {
	fs := flagSet("register-patient")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	dob := fs.String("dob", "", "date of birth (YYYY-MM-DD)")
	gender := fs.String("gender", "", "gender (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if errs := forms.PatientRegistration(*email, *password, *name, *phone, *dob); errs.Any() {
		return printFormErrors(errs)
	}
	res, err := a.session.RegisterPatient(ctx, api.RegisterPatientRequest{
		Email:       *email,
		Password:    *password,
		FullName:    *name,
		Phone:       *phone,
		DateOfBirth: *dob,
		Gender:      *gender,
	})
	if err != nil {
		return fmt.Errorf("%s", api.Message(err, "Registration failed"))
	}
	fmt.Println(res.Message)
	return nil
}

func cmdRegisterDoctor(ctx context.Context, a *app, args []string) error {
	fs := flagSet("register-doctor")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	specialization := fs.String("specialization", "", "medical specialization")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if errs := forms.DoctorRegistration(*email, *password, *name, *phone, *specialization); errs.Any() {
		return printFormErrors(errs)
	}
	res, err := a.session.RegisterDoctor(ctx, api.RegisterDoctorRequest{
		Email:          *email,
		Password:       *password,
		FullName:       *name,
		Phone:          *phone,
		Specialization: *specialization,
	})
	if err != nil {
		return fmt.Errorf("%s", api.Message(err, "Registration failed"))
	}
	fmt.Println(res.Message)
	return nil
}

func cmdDoctors(ctx context.Context, a *app, args []string) error {
	fs := flagSet("doctors")
	search := fs.String("search", "", "filter by name or specialization")
	if err := fs.Parse(args); err != nil {
		return err
	}

	browser := directory.NewBrowser(a.client, a.logger)
	if err := browser.Load(ctx); err != nil {
		return fmt.Errorf("%s", browser.ErrorMessage())
	}
	if *search != "" {
		if err := browser.Search(ctx, *search); err != nil {
			return fmt.Errorf("%s", browser.ErrorMessage())
		}
	}

	doctors := browser.Doctors()
	if len(doctors) == 0 {
		fmt.Println("No doctors found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSPECIALIZATION\tRATING")
	for _, d := range doctors {
		rating := "-"
		if d.AverageRating > 0 {
			rating = fmt.Sprintf("%.1f", d.AverageRating)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.ID, d.FullName, d.Specialization, rating)
	}
	return w.Flush()
}

func cmdRatings(ctx context.Context, a *app, args []string) error {
	fs := flagSet("ratings")
	doctorID := fs.Int64("doctor", 0, "doctor id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *doctorID == 0 {
		return fmt.Errorf("-doctor is required")
	}

	ratings, err := a.client.DoctorRatings(ctx, *doctorID)
	if err != nil {
		return fmt.Errorf("%s", api.Message(err, "Failed to load ratings"))
	}
	if len(ratings) == 0 {
		fmt.Println("No reviews yet")
		return nil
	}
	for _, r := range ratings {
		fmt.Printf("%s  %s", strings.Repeat("*", r.Stars), r.PatientName)
		if r.Comment != "" {
			fmt.Printf("  %q", r.Comment)
		}
		fmt.Println()
	}
	return nil
}

func cmdSlots(ctx context.Context, a *app, args []string) error {
	fs := flagSet("slots")
	doctorID := fs.Int64("doctor", 0, "doctor id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *doctorID == 0 {
		return fmt.Errorf("-doctor is required")
	}

	vm := booking.NewViewModel(a.client, a.logger)
	if err := vm.Load(ctx); err != nil {
		return fmt.Errorf("%s", vm.ErrorMessage())
	}
	if err := vm.SelectDoctor(ctx, *doctorID); err != nil {
		return fmt.Errorf("%s", vm.ErrorMessage())
	}

	slots := vm.Slots()
	if len(slots) == 0 {
		fmt.Println("No slots available")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tDATE\tTIME\tAVAILABLE")
	for i, s := range slots {
		avail := "yes"
		if !s.Available {
			avail = "no"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, s.Date, s.Time, avail)
	}
	return w.Flush()
}

func cmdBook(ctx context.Context, a *app, args []string) error {
	fs := flagSet("book")
	doctorID := fs.Int64("doctor", 0, "doctor id")
	slot := fs.Int("slot", 0, "slot number from the slots listing")
	notes := fs.String("notes", "", "notes for the doctor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *doctorID == 0 || *slot == 0 {
		return fmt.Errorf("both -doctor and -slot are required")
	}

	vm := booking.NewViewModel(a.client, a.logger)
	if err := vm.Load(ctx); err != nil {
		return fmt.Errorf("%s", vm.ErrorMessage())
	}
	if err := vm.SelectDoctor(ctx, *doctorID); err != nil {
		return fmt.Errorf("%s", vm.ErrorMessage())
	}

	slots := vm.Slots()
	if *slot < 1 || *slot > len(slots) {
		return fmt.Errorf("slot %d does not exist; run clinicctl slots -doctor %d", *slot, *doctorID)
	}
	if err := vm.SelectSlot(slots[*slot-1]); err != nil {
		return fmt.Errorf("%s", vm.ErrorMessage())
	}
	vm.SetNotes(*notes)

	id, err := vm.Submit(ctx)
	if err != nil {
		return fmt.Errorf("%s", vm.ErrorMessage())
	}
	fmt.Printf("Appointment %d requested; waiting for the doctor to confirm\n", id)
	return nil
}

func cmdHistory(ctx context.Context, a *app, args []string) error {
	view := history.NewView(a.client, a.logger)
	if err := view.Load(ctx); err != nil {
		return fmt.Errorf("%s", view.ErrorMessage())
	}
	appointments := view.Appointments()
	if len(appointments) == 0 {
		fmt.Println("No appointments yet")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tDOCTOR\tSTATUS\tRATABLE")
	for _, appt := range appointments {
		ratable := ""
		if view.CanRate(appt.ID) {
			ratable = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			appt.ID,
			appt.StartTime.Local().Format("2006-01-02 15:04"),
			appt.DoctorName,
			appt.Status,
			ratable,
		)
	}
	return w.Flush()
}

func cmdRate(ctx context.Context, a *app, args []string) error {
	fs := flagSet("rate")
	appointmentID := fs.Int64("appointment", 0, "appointment id")
	stars := fs.Int("stars", 0, "stars, 1 to 5")
	comment := fs.String("comment", "", "review comment (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *appointmentID == 0 {
		return fmt.Errorf("-appointment is required")
	}

	view := history.NewView(a.client, a.logger)
	if err := view.Load(ctx); err != nil {
		return fmt.Errorf("%s", view.ErrorMessage())
	}
	if err := view.Rate(ctx, *appointmentID, *stars, *comment); err != nil {
		if msg := view.ErrorMessage(); msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	fmt.Println("Thanks for your review")
	return nil
}
