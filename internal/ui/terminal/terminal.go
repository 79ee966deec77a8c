// Package terminal is a line-oriented front end for the root and dashboard
// controllers.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	"github.com/AlibekovAA/notes/internal/common/logger"
	notedomain "github.com/AlibekovAA/notes/internal/notes/domain"
	"github.com/AlibekovAA/notes/internal/ui/dashboard"
	"github.com/AlibekovAA/notes/internal/ui/form"
	"github.com/AlibekovAA/notes/internal/ui/root"
)

const dateLayout = "2006-01-02 15:04"

const helpText = `signed out:
  login              sign in with email and password
  register           create an account
  toggle             switch between the login and register forms
signed in:
  list               show your notes
  new                write a note
  edit N             edit note N
  cancel             stop editing
  delete N           delete note N
  reload             fetch the list again
  logout             sign out
always:
  help               show this text
  quit               exit
`

var errQuit = errors.New("quit")

type Terminal struct {
	in       *bufio.Reader
	fd       int
	isTTY    bool
	out      io.Writer
	log      *logger.Logger
	location *time.Location
}

// New reads commands from in. When in is an interactive terminal passwords are
// read without echo.
func New(in io.Reader, out io.Writer, log *logger.Logger) *Terminal {
	t := &Terminal{
		in:       bufio.NewReader(in),
		out:      out,
		log:      log,
		location: time.Local,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		t.isTTY = true
	}
	return t
}

// Confirm asks a y/N question. Anything but y or yes declines.
func (t *Terminal) Confirm(ctx context.Context, prompt string) bool {
	answer, err := t.prompt(prompt + " [y/N]")
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

var _ dashboard.Confirmer = (*Terminal)(nil)

// Run reads commands until quit, end of input or ctx is done.
func (t *Terminal) Run(ctx context.Context, ctrl *root.Controller) error {
	t.printf("notes: type help for commands\n")
	t.renderView(ctrl.State())

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		t.printf("> ")
		line, err := t.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		err = t.dispatch(ctx, ctrl, strings.ToLower(fields[0]), fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (t *Terminal) dispatch(ctx context.Context, ctrl *root.Controller, cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		t.printf("%s", helpText)
		return nil
	case "quit", "exit":
		return errQuit
	}

	state := ctrl.State()
	if state.Submitting || (state.Dashboard != nil && state.Dashboard.State().Busy()) {
		t.printf("busy, try again in a moment\n")
		return nil
	}

	if t.log.ShouldLog(logger.DEBUG) {
		t.log.WithFields(ctx, logger.Fields{"command": cmd, "view": state.View.String()}).Debug("terminal command")
	}

	switch state.View {
	case root.Initializing:
		t.printf("still connecting\n")
		return nil
	case root.LoginView, root.RegisterView:
		return t.signedOut(ctx, ctrl, cmd)
	default:
		return t.signedIn(ctx, ctrl, state.Dashboard, cmd, args)
	}
}

func (t *Terminal) signedOut(ctx context.Context, ctrl *root.Controller, cmd string) error {
	switch cmd {
	case "toggle":
		ctrl.ToggleView()
		t.renderView(ctrl.State())
	case "login":
		email, err := t.prompt("Email")
		if err != nil {
			return err
		}
		password, err := t.password("Password")
		if err != nil {
			return err
		}
		if err := ctrl.Login(ctx, email, password); err != nil {
			t.printf("error: %s\n", ctrl.State().Err)
			return nil
		}
		t.renderView(ctrl.State())
	case "register":
		var f root.RegisterForm
		var err error
		if f.DisplayName, err = t.prompt("Name"); err != nil {
			return err
		}
		if f.Email, err = t.prompt("Email"); err != nil {
			return err
		}
		if f.Password, err = t.password("Password"); err != nil {
			return err
		}
		if f.Confirm, err = t.password("Confirm password"); err != nil {
			return err
		}
		if err := ctrl.Register(ctx, f); err != nil {
			t.printf("error: %s\n", ctrl.State().Err)
			return nil
		}
		t.renderView(ctrl.State())
	default:
		t.printf("unknown command %q, type help\n", cmd)
	}
	return nil
}

func (t *Terminal) signedIn(ctx context.Context, ctrl *root.Controller, dash *dashboard.Controller, cmd string, args []string) error {
	switch cmd {
	case "list":
		t.renderNotes(dash.State())
	case "reload":
		_ = dash.Reload(ctx)
		t.renderNotes(dash.State())
	case "new":
		return t.createNote(ctx, dash)
	case "edit":
		note, ok := t.pick(dash.State(), args)
		if !ok {
			return nil
		}
		return t.editNote(ctx, dash, note)
	case "cancel":
		if dash.State().Editing == nil {
			t.printf("not editing\n")
			return nil
		}
		dash.CancelEdit()
		t.printf("edit cancelled\n")
	case "delete":
		note, ok := t.pick(dash.State(), args)
		if !ok {
			return nil
		}
		if err := dash.RequestDelete(ctx, note.ID); err != nil {
			t.printf("error: %s\n", dash.State().Err)
			return nil
		}
		t.renderNotes(dash.State())
	case "logout":
		if err := ctrl.Logout(ctx); err != nil {
			t.printf("error: %s\n", ctrl.State().Err)
			return nil
		}
		t.renderView(ctrl.State())
	default:
		t.printf("unknown command %q, type help\n", cmd)
	}
	return nil
}

func (t *Terminal) createNote(ctx context.Context, dash *dashboard.Controller) error {
	f := form.New(nil, dash.SubmitCreate, nil)
	title, err := t.prompt("Title")
	if err != nil {
		return err
	}
	content, err := t.prompt("Content")
	if err != nil {
		return err
	}
	f.SetTitle(title)
	f.SetContent(content)

	if err := f.Submit(ctx); err != nil {
		t.reportSubmit(dash, f, err)
		return nil
	}
	t.renderNotes(dash.State())
	return nil
}

// editNote prompts with the current values; an empty answer keeps the field.
func (t *Terminal) editNote(ctx context.Context, dash *dashboard.Controller, note notedomain.Note) error {
	dash.BeginEdit(note)
	f := form.New(&note, dash.SubmitUpdate, dash.CancelEdit)

	title, err := t.prompt(fmt.Sprintf("Title [%s]", note.Title))
	if err != nil {
		return err
	}
	content, err := t.prompt(fmt.Sprintf("Content [%s]", note.Content))
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) != "" {
		f.SetTitle(title)
	}
	if strings.TrimSpace(content) != "" {
		f.SetContent(content)
	}

	if err := f.Submit(ctx); err != nil {
		t.reportSubmit(dash, f, err)
		return nil
	}
	t.renderNotes(dash.State())
	return nil
}

func (t *Terminal) reportSubmit(dash *dashboard.Controller, f *form.NoteForm, err error) {
	msg := err.Error()
	if verr, ok := commonerrors.AsValidationError(err); ok {
		msg = verr.Message
	} else if stateErr := dash.State().Err; stateErr != "" {
		msg = stateErr
	}
	t.printf("error: %s\n", msg)
	if f.EditMode() {
		t.printf("still editing; type cancel to stop\n")
	}
}

func (t *Terminal) pick(state dashboard.State, args []string) (notedomain.Note, bool) {
	if len(args) != 1 {
		t.printf("usage: <command> N\n")
		return notedomain.Note{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(state.Notes) {
		t.printf("no note %s\n", args[0])
		return notedomain.Note{}, false
	}
	return state.Notes[n-1], true
}

func (t *Terminal) renderView(state root.State) {
	switch state.View {
	case root.LoginView:
		t.printf("signed out; login or register (toggle switches forms)\n")
	case root.RegisterView:
		t.printf("creating an account; type register (toggle goes back to login)\n")
	case root.DashboardView:
		if state.User != nil {
			t.printf("signed in as %s\n", state.User.Name())
		}
		if state.Dashboard != nil {
			t.renderNotes(state.Dashboard.State())
		}
	}
	if state.Err != "" {
		t.printf("error: %s\n", state.Err)
	}
}

func (t *Terminal) renderNotes(state dashboard.State) {
	if state.Status == dashboard.Error {
		t.printf("error: %s\n", state.Err)
	}
	if len(state.Notes) == 0 {
		t.printf("no notes yet; type new to write one\n")
		return
	}
	for i, note := range state.Notes {
		t.printf("%d. %s\n", i+1, note.Title)
		if note.Content != "" {
			t.printf("   %s\n", note.Content)
		}
		t.printf("   created: %s\n", t.formatDate(note.CreatedAt))
		if note.UpdatedAt != nil && (note.CreatedAt == nil || !note.UpdatedAt.Equal(*note.CreatedAt)) {
			t.printf("   updated: %s\n", t.formatDate(note.UpdatedAt))
		}
	}
}

func (t *Terminal) formatDate(ts *time.Time) string {
	if ts == nil {
		return "date unavailable"
	}
	return ts.In(t.location).Format(dateLayout)
}

func (t *Terminal) prompt(label string) (string, error) {
	t.printf("%s: ", label)
	return t.readLine()
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) password(label string) (string, error) {
	if !t.isTTY {
		return t.prompt(label)
	}
	t.printf("%s: ", label)
	raw, err := term.ReadPassword(t.fd)
	t.printf("\n")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (t *Terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}
