// Package cli is the presentation collaborator: a line-oriented terminal
// front-end over the tracker services. It owns all user-facing message text
// and the export file write; every rule worth enforcing lives below it in
// the service and input packages.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/healthtrack/internal/tracker/domain"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/input"
	"github.com/aussiebroadwan/healthtrack/internal/tracker/service"
	"github.com/aussiebroadwan/healthtrack/pkg/slogx"
)

type Options struct {
	Users   *service.UserService
	Records *service.RecordService
	Session *service.Session

	In  io.Reader
	Out io.Writer
}

type Terminal struct {
	users   *service.UserService
	records *service.RecordService
	session *service.Session

	in  *bufio.Scanner
	out io.Writer

	// base is the ctx Run was started with; ctx additionally carries the
	// session id between login and logout so service logs can be tied to a
	// session.
	base context.Context
	ctx  context.Context
}

func New(opts Options) *Terminal {
	return &Terminal{
		users:   opts.Users,
		records: opts.Records,
		session: opts.Session,
		in:      bufio.NewScanner(opts.In),
		out:     opts.Out,
	}
}

// Run reads commands until quit, EOF or ctx cancellation. It returns io.EOF
// when input runs out.
func (t *Terminal) Run(ctx context.Context) error {
	t.base = ctx
	t.ctx = ctx

	t.printf("My Health Tracker. Type 'help' for commands.\n")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := t.readLine("> ")
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}

		if err := t.dispatch(t.ctx, cmd, args); err != nil {
			t.printf("Error: %s\n", userMessage(err))
		}
	}
}

func (t *Terminal) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		t.printHelp()
		return nil
	case "register":
		return t.handleRegister(ctx, args)
	case "login":
		return t.handleLogin(ctx, args)
	case "logout":
		t.session.End()
		t.ctx = t.base
		t.printf("Logged out.\n")
		return nil
	case "whoami":
		return t.handleWhoami()
	case "profile":
		return t.handleProfile(ctx, args)
	case "records":
		return t.handleRecords(ctx)
	case "add":
		return t.handleAdd(ctx)
	case "edit":
		return t.handleEdit(ctx, args)
	case "delete":
		return t.handleDelete(ctx, args)
	case "export":
		return t.handleExport(ctx, args)
	default:
		t.printf("Unknown command %q. Type 'help' for commands.\n", cmd)
		return nil
	}
}

func (t *Terminal) printHelp() {
	t.printf(`Commands:
  register <username> <password> <first> <last>
  login <username> <password>
  logout
  whoami
  profile <first> <last>
  records
  add
  edit <record-id>
  delete <record-id>
  export <path>
  quit
`)
}

func (t *Terminal) handleRegister(ctx context.Context, args []string) error {
	if len(args) != 4 {
		t.printf("Usage: register <username> <password> <first> <last>\n")
		return nil
	}

	user, err := t.users.Register(ctx, args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}

	t.beginSession(user)
	t.printf("Welcome, %s.\n", user.FullName())
	return nil
}

func (t *Terminal) handleLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		t.printf("Usage: login <username> <password>\n")
		return nil
	}

	user, err := t.users.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	t.beginSession(user)
	t.printf("Welcome back, %s.\n", user.FullName())
	return nil
}

// beginSession fills the session slot and scopes the terminal's context to
// the new session id, so everything done while logged in logs it.
func (t *Terminal) beginSession(user domain.User) {
	sid := t.session.Begin(user)
	t.ctx = slogx.WithSessionID(t.base, sid.String())
	slogx.FromContext(t.ctx).Info("session started", "user_id", user.ID)
}

func (t *Terminal) handleWhoami() error {
	user, err := t.session.Current()
	if err != nil {
		return err
	}
	t.printf("%s (%s)\n", user.FullName(), user.Username)
	return nil
}

func (t *Terminal) handleProfile(ctx context.Context, args []string) error {
	user, err := t.session.Current()
	if err != nil {
		return err
	}

	if len(args) != 2 {
		t.printf("Usage: profile <first> <last>\n")
		return nil
	}

	updated, err := t.users.UpdateProfile(ctx, user.ID, args[0], args[1])
	if err != nil {
		return err
	}

	t.session.Update(updated)
	t.printf("Profile saved: %s\n", updated.FullName())
	return nil
}

func (t *Terminal) handleRecords(ctx context.Context) error {
	user, err := t.session.Current()
	if err != nil {
		return err
	}

	records, err := t.records.ListRecords(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		t.printf("No records yet. Use 'add' to create one.\n")
		return nil
	}

	t.printf("%-5s %-10s %-8s %-6s %-14s %s\n", "ID", "DATE", "WEIGHT", "TEMP", "BLOOD PRESSURE", "NOTE")
	for _, rec := range records {
		t.printf("%-5d %-10s %-8.1f %-6.1f %-14s %s\n",
			rec.ID,
			rec.Date.Format("2006-01-02"),
			rec.Weight,
			rec.Temperature,
			rec.BloodPressure,
			rec.Note,
		)
	}
	return nil
}

// promptRecordInput collects the four raw field strings the same way the
// record form does: blank answers stay blank and mean "default" on create
// or "keep" on edit.
func (t *Terminal) promptRecordInput() (input.RecordInput, error) {
	var in input.RecordInput
	var err error

	if in.Weight, err = t.readLine("Weight (kg): "); err != nil {
		return in, err
	}
	if in.Temperature, err = t.readLine("Temperature (Celsius): "); err != nil {
		return in, err
	}
	if in.BloodPressure, err = t.readLine("Blood Pressure (Low/High): "); err != nil {
		return in, err
	}
	if in.Note, err = t.readLine(fmt.Sprintf("Note (max %d words): ", input.MaxNoteWords)); err != nil {
		return in, err
	}
	return in, nil
}

func (t *Terminal) handleAdd(ctx context.Context) error {
	user, err := t.session.Current()
	if err != nil {
		return err
	}

	in, err := t.promptRecordInput()
	if err != nil {
		return err
	}

	rec, err := t.records.AddRecord(ctx, user.ID, in)
	if err != nil {
		return err
	}

	t.printf("Record %d saved.\n", rec.ID)
	return nil
}

func (t *Terminal) handleEdit(ctx context.Context, args []string) error {
	user, err := t.session.Current()
	if err != nil {
		return err
	}

	recordID, ok := t.parseID(args, "edit")
	if !ok {
		return nil
	}

	t.printf("Leave a field blank to keep its current value.\n")
	in, err := t.promptRecordInput()
	if err != nil {
		return err
	}

	rec, err := t.records.EditRecord(ctx, user.ID, recordID, in)
	if err != nil {
		return err
	}

	t.printf("Record %d updated.\n", rec.ID)
	return nil
}

func (t *Terminal) handleDelete(ctx context.Context, args []string) error {
	user, err := t.session.Current()
	if err != nil {
		return err
	}

	recordID, ok := t.parseID(args, "delete")
	if !ok {
		return nil
	}

	if err := t.records.DeleteRecord(ctx, user.ID, recordID); err != nil {
		return err
	}

	t.printf("Record %d deleted.\n", recordID)
	return nil
}

func (t *Terminal) handleExport(ctx context.Context, args []string) error {
	user, err := t.session.Current()
	if err != nil {
		return err
	}

	if len(args) != 1 {
		t.printf("Usage: export <path>\n")
		return nil
	}

	lines, err := t.records.ExportRecords(ctx, user.ID)
	if err != nil {
		return err
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}
	}

	t.printf("Exported %d record(s) to %s\n", len(lines), args[0])
	return nil
}

func (t *Terminal) parseID(args []string, cmd string) (int64, bool) {
	if len(args) != 1 {
		t.printf("Usage: %s <record-id>\n", cmd)
		return 0, false
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		t.printf("%q is not a record id.\n", args[0])
		return 0, false
	}
	return id, true
}

func (t *Terminal) readLine(prompt string) (string, error) {
	t.printf("%s", prompt)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return t.in.Text(), nil
}

func (t *Terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

// userMessage turns a core failure into the user-visible text. The core
// never formats UI strings; this is the single place they live.
func userMessage(err error) string {
	var fieldErr *input.FieldError
	if errors.As(err, &fieldErr) {
		return fmt.Sprintf("Invalid %s input, expected a number.", fieldErr.Field)
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return "All fields must be filled out."
	case errors.Is(err, service.ErrDuplicateUsername):
		return "That username is already taken."
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, service.ErrTooManyAttempts):
		return "Too many login attempts. Try again shortly."
	case errors.Is(err, service.ErrUnauthenticated):
		return "Please log in first."
	case errors.Is(err, service.ErrForbidden):
		return "That record belongs to a different user."
	case errors.Is(err, service.ErrNotFound):
		return "No such record."
	case errors.Is(err, input.ErrEmptyRecord):
		return "At least one field should be filled."
	case errors.Is(err, input.ErrNoteTooLong):
		return fmt.Sprintf("Note should be within %d words.", input.MaxNoteWords)
	default:
		return err.Error()
	}
}
