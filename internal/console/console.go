// Package console is the terminal front end of the client. It reads one
// command per line, drives a flow.Controller and prints what the user
// would see on each screen.
//
// Output from the input loop and from the notification printer can arrive
// at the same time, so every write goes through Console.print.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/symvora/internal/apperror"
	"github.com/sakif/symvora/internal/flow"
	"github.com/sakif/symvora/internal/model"
	"github.com/sakif/symvora/internal/navigation"
	"github.com/sakif/symvora/internal/preferences"
	"github.com/sakif/symvora/internal/session"
)

const timeLayout = "Jan 2, 2006 15:04"

// Console connects an input stream and an output stream to a controller.
type Console struct {
	ctrl    *flow.Controller
	session *session.State
	prefs   *preferences.Settings
	logger  *slog.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a Console. prefs may be nil, in which case the defaults
// (light theme, medium font) are used.
func New(ctrl *flow.Controller, sess *session.State, prefs *preferences.Settings, out io.Writer, logger *slog.Logger) *Console {
	if prefs == nil {
		prefs = &preferences.Settings{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		ctrl:    ctrl,
		session: sess,
		prefs:   prefs,
		logger:  logger,
		out:     out,
	}
}

// Run reads commands from in until it is exhausted, the user quits or ctx
// is cancelled.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	c.showScreen(c.ctrl.Snapshot().Screen)
	c.prompt()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			quit, err := c.Execute(ctx, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			c.prompt()
		}
	}
}

// PrintNotifications writes controller notifications until ctx is
// cancelled or the controller stops.
func (c *Console) PrintNotifications(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.ctrl.Done():
			return nil
		case n := <-c.ctrl.Notifications():
			c.printNotice(n)
		}
	}
}

// Execute runs one input line. It reports quit=true for the quit command.
// The returned error is only set when the controller has stopped; every
// other problem is printed.
func (c *Console) Execute(ctx context.Context, line string) (quit bool, err error) {
	cmd, err := Parse(line)
	if err != nil {
		c.printError(err.Error())
		return false, nil
	}

	switch cmd.Name {
	case "":
		return false, nil
	case "quit":
		return true, nil
	case "help":
		c.print(helpText(c.ctrl.Snapshot().Screen, newStyles(c.prefs)))
		return false, nil
	}

	err = c.dispatch(ctx, cmd)
	if errors.Is(err, flow.ErrStopped) {
		return true, err
	}
	return false, nil
}

func (c *Console) dispatch(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case "go":
		return c.navigate(cmd)
	case "signup":
		return c.signUp(ctx, cmd)
	case "login":
		return c.login(ctx, cmd)
	case "logout":
		return c.afterScreenChange(c.ctrl.Logout(ctx))
	case "check":
		return c.check(cmd)
	case "history":
		return c.history(cmd)
	case "clear-history":
		return c.ctrl.ClearHistory()
	case "reset-history":
		if err := c.ctrl.ResetHistory(); err != nil {
			return err
		}
		c.printInfo("History reset. The examples come back on the next visit.")
		return nil
	case "name":
		return c.ctrl.UpdateName(ctx, unquote(cmd.Rest))
	case "password":
		return c.changePassword(ctx, cmd)
	case "theme":
		t := c.prefs.ToggleTheme()
		c.logger.Debug("theme changed", slog.String("theme", t.String()))
		c.printInfo(t.String() + " theme")
		return nil
	case "font":
		return c.font(cmd)
	case "whoami", "status":
		c.status()
		return nil
	}
	c.printError("unknown command " + cmd.Name)
	return nil
}

func (c *Console) navigate(cmd Command) error {
	if len(cmd.Args) != 1 {
		c.printError("usage: go <welcome|signup|login|symptoms|history|settings>")
		return nil
	}
	requested, err := navigation.ParseScreen(cmd.Args[0])
	if err != nil {
		c.printError(fmt.Sprintf("unknown screen %q", cmd.Args[0]))
		return nil
	}

	actual, err := c.ctrl.Navigate(requested)
	if err != nil {
		return err
	}
	if actual != requested {
		c.printInfo(fmt.Sprintf("%s is not available right now, showing %s", requested, actual))
	}
	c.showScreen(actual)
	return nil
}

func (c *Console) signUp(ctx context.Context, cmd Command) error {
	if len(cmd.Args) != 4 {
		c.printError(`usage: signup "<name>" <email> <password> <confirm password>`)
		return nil
	}
	a := cmd.Args
	return c.afterScreenChange(c.ctrl.SignUp(ctx, a[0], a[1], a[2], a[3]))
}

func (c *Console) login(ctx context.Context, cmd Command) error {
	if len(cmd.Args) != 2 {
		c.printError("usage: login <email> <password>")
		return nil
	}
	return c.afterScreenChange(c.ctrl.Login(ctx, cmd.Args[0], cmd.Args[1]))
}

func (c *Console) changePassword(ctx context.Context, cmd Command) error {
	if len(cmd.Args) != 3 {
		c.printError("usage: password <current> <new> <confirm new>")
		return nil
	}
	a := cmd.Args
	return c.ctrl.ChangePassword(ctx, a[0], a[1], a[2])
}

// check submits symptoms and returns at once. The answer arrives later as
// a NoticeResult notification and PrintNotifications draws the card.
func (c *Console) check(cmd Command) error {
	err := c.ctrl.Submit(unquote(cmd.Rest))
	switch {
	case errors.Is(err, flow.ErrStopped):
		return err
	case errors.Is(err, flow.ErrBusy):
		c.printError("A symptom check is already running")
		return nil
	case errors.Is(err, apperror.ErrForbidden):
		c.printError(apperror.MessageOf(err) + ` (type "go symptoms")`)
		return nil
	case err != nil:
		// Blank input; the controller already reported it.
		return nil
	}

	c.printMuted(flow.AnalyzingText)
	return nil
}

func (c *Console) printResult(text string) {
	st := newStyles(c.prefs)
	c.print(st.card("Analysis", text, "", st.Warning.Render(disclaimer)))
}

const disclaimer = "This is not a medical diagnosis. Please consult a healthcare professional."

func (c *Console) history(cmd Command) error {
	if c.ctrl.Snapshot().Screen != navigation.History {
		actual, err := c.ctrl.Navigate(navigation.History)
		if err != nil {
			return err
		}
		if actual != navigation.History {
			c.printInfo("Sign in to see your history")
			c.showScreen(actual)
			return nil
		}
	}

	query := unquote(cmd.Rest)
	entries := c.ctrl.History(query)
	c.print(renderHistory(entries, query, newStyles(c.prefs)))
	return nil
}

func (c *Console) font(cmd Command) error {
	if len(cmd.Args) != 1 {
		c.printError("usage: font <small|medium|large>")
		return nil
	}
	size, err := preferences.ParseFontSize(cmd.Args[0])
	if err != nil {
		c.printError(fmt.Sprintf("unknown font size %q", cmd.Args[0]))
		return nil
	}
	c.prefs.SetFontSize(size)
	c.printInfo("Font size " + size.String())
	return nil
}

func (c *Console) status() {
	st := newStyles(c.prefs)
	snap := c.ctrl.Snapshot()

	who := "not signed in"
	if u, ok := c.session.CurrentUser(); ok {
		who = fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	c.print(st.card("Status",
		st.Muted.Render("User:   ")+st.Text.Render(who),
		st.Muted.Render("Screen: ")+st.Text.Render(snap.Screen.String()),
		st.Muted.Render("Theme:  ")+st.Text.Render(c.prefs.Theme().String()),
		st.Muted.Render("Font:   ")+st.Text.Render(c.prefs.FontSize().String()),
	))
}

// afterScreenChange redraws the screen after an account action. Failed
// actions were already reported by the controller.
func (c *Console) afterScreenChange(err error) error {
	if errors.Is(err, flow.ErrStopped) {
		return err
	}
	if err == nil {
		c.showScreen(c.ctrl.Snapshot().Screen)
	}
	return nil
}

func (c *Console) showScreen(s navigation.Screen) {
	st := newStyles(c.prefs)
	greeting := ""
	if u, ok := c.session.CurrentUser(); ok {
		greeting = "Signed in as " + u.Name
	}
	c.print(renderScreen(s, greeting, st))
}

func (c *Console) prompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, "> ")
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *Console) printNotice(n flow.Notification) {
	switch n.Kind {
	case flow.NoticeError:
		c.printError(n.Message)
	case flow.NoticeResult:
		c.printResult(n.Message)
	default:
		c.printInfo(n.Message)
	}
}

func (c *Console) printInfo(msg string) {
	c.print(newStyles(c.prefs).Info.Render("• " + msg))
}

func (c *Console) printError(msg string) {
	c.print(newStyles(c.prefs).Error.Render("✗ " + msg))
}

func (c *Console) printMuted(msg string) {
	c.print(newStyles(c.prefs).Muted.Render(msg))
}

// renderScreen draws the header card of a screen with the commands that
// make sense there.
func renderScreen(s navigation.Screen, greeting string, st styles) string {
	var lines []string
	if greeting != "" {
		lines = append(lines, st.Muted.Render(greeting), "")
	}
	lines = append(lines, st.Text.Render(screenBlurb[s]))
	lines = append(lines, "", st.Faint.Render("Commands: "+strings.Join(screenCommands[s], ", ")))
	return st.card("Symvora · "+s.String(), lines...)
}

var screenBlurb = map[navigation.Screen]string{
	navigation.Welcome:  "Welcome to Symvora. Describe how you feel and get general health guidance.",
	navigation.SignUp:   "Create an account to start checking symptoms.",
	navigation.Login:    "Sign in with your email and password.",
	navigation.Symptoms: "Describe your symptoms in your own words.",
	navigation.History:  "Your previous symptom checks, newest first.",
	navigation.Settings: "Profile, password and display preferences.",
}

var screenCommands = map[navigation.Screen][]string{
	navigation.Welcome:  {"go signup", "go login", "help"},
	navigation.SignUp:   {`signup "<name>" <email> <password> <confirm>`, "go login"},
	navigation.Login:    {"login <email> <password>", "go signup"},
	navigation.Symptoms: {"check <symptoms>", "history", "go settings", "logout"},
	navigation.History:  {"history [search]", "clear", "reset", "go symptoms"},
	navigation.Settings: {`name "<new name>"`, "password <current> <new> <confirm>", "theme", "font <size>", "logout"},
}

func renderHistory(entries []model.SymptomHistoryEntry, query string, st styles) string {
	if len(entries) == 0 {
		if strings.TrimSpace(query) != "" {
			return st.Muted.Render(fmt.Sprintf("No entries match %q", query))
		}
		return st.Muted.Render("No symptom history yet")
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(st.card(e.Time().Format(timeLayout),
			st.Muted.Render("Symptoms: ")+st.Text.Render(e.Symptoms),
			"",
			st.Text.Render(e.AIResponse),
		))
	}
	return b.String()
}

func helpText(current navigation.Screen, st styles) string {
	return st.card("Help",
		st.Text.Render("go <screen>            switch screen (welcome, signup, login, symptoms, history, settings)"),
		st.Text.Render(`signup "<name>" <email> <password> <confirm>`),
		st.Text.Render("login <email> <password>"),
		st.Text.Render("logout"),
		st.Text.Render("check <symptoms>       analyze symptoms (Symptoms screen)"),
		st.Text.Render("history [search]       list or search previous checks"),
		st.Text.Render("clear | reset          clear history, or clear and restore the examples"),
		st.Text.Render(`name "<new name>"      change your display name`),
		st.Text.Render("password <current> <new> <confirm>"),
		st.Text.Render("theme | font <size>    display preferences"),
		st.Text.Render("status | help | quit"),
		"",
		st.Faint.Render("Current screen: "+current.String()),
	)
}
