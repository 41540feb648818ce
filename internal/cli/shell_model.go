package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avaldez/proforma/internal/assistant"
	"github.com/avaldez/proforma/internal/cli/formatter"
	"github.com/avaldez/proforma/internal/domain"
	"github.com/avaldez/proforma/internal/export"
	"github.com/avaldez/proforma/internal/session"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// chatResultMsg carries an assistant turn back into the shell.
type chatResultMsg struct {
	res assistant.TurnResult
	err error
}

// shellModel is the bubbletea Model for the draft conversation shell.
type shellModel struct {
	ti       textinput.Model
	app      *App
	sess     *session.Session
	busy     bool
	quitting bool
	width    int
}

func newShellModel(app *App, sess *session.Session) shellModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = "› "
	ti.CharLimit = 500
	return shellModel{ti: ti, app: app, sess: sess}
}

func (m shellModel) Init() tea.Cmd {
	d := m.sess.Draft()
	welcome := fmt.Sprintf("%s\n%s\n%s",
		formatter.Header(fmt.Sprintf("new %s", d.Kind)),
		formatter.Dim("talk to the assistant, or type /help for direct commands"),
		formatter.FormatMissingFields(m.sess.MissingFields()),
	)
	return tea.Batch(textinput.Blink, tea.Println(welcome))
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.ti.Width = msg.Width - 3
		return m, nil

	case chatResultMsg:
		m.busy = false
		if msg.err != nil {
			return m, tea.Println(formatter.StyleRed.Render("assistant: " + msg.err.Error()))
		}
		out := formatter.StyleBlue.Render("assistant: ") + msg.res.Reply
		if msg.res.Applied > 0 {
			out += "\n" + formatter.Dim(fmt.Sprintf("updated %d field group(s)", msg.res.Applied))
			out += "\n" + formatter.FormatDraftPreview(m.sess.Draft())
		}
		if qr := formatter.FormatQuickReplies(msg.res.QuickReplies); qr != "" {
			out += "\n" + qr
		}
		out += "\n" + formatter.FormatMissingFields(m.sess.MissingFields())
		return m, tea.Println(out)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter && !m.busy {
			line := strings.TrimSpace(m.ti.Value())
			m.ti.SetValue("")
			if line == "" {
				return m, nil
			}
			return m.dispatch(line)
		}
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m shellModel) View() string {
	if m.quitting {
		return ""
	}
	if m.busy {
		return formatter.Dim("thinking…") + "\n"
	}
	return m.ti.View() + "\n"
}

// dispatch routes one input line: slash commands act on the draft
// directly, digits pick a quick reply, anything else goes to the assistant.
func (m shellModel) dispatch(line string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(line, "/") {
		return m.runCommand(line)
	}

	if n, err := strconv.Atoi(line); err == nil {
		replies := m.sess.QuickReplies()
		if n >= 1 && n <= len(replies) {
			line = replies[n-1]
		}
	}

	echo := tea.Println(formatter.Dim("you: ") + line)
	m.busy = true
	sess := m.sess
	return m, tea.Batch(echo, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		res, err := sess.Chat(ctx, line)
		return chatResultMsg{res: res, err: err}
	})
}

func (m shellModel) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	out, quit := m.execute(cmd, args)
	if quit {
		m.quitting = true
		return m, tea.Sequence(tea.Println(out), tea.Quit)
	}
	return m, tea.Println(out)
}

func (m shellModel) execute(cmd string, args []string) (output string, quit bool) {
	ctx := context.Background()

	fail := func(err error) string {
		return formatter.StyleRed.Render(err.Error())
	}
	preview := func() string {
		return formatter.FormatDraftPreview(m.sess.Draft()) + "\n" +
			formatter.FormatMissingFields(m.sess.MissingFields())
	}

	switch cmd {
	case "/help":
		return helpText, false

	case "/quit", "/q":
		return formatter.Dim("saving and closing…"), true

	case "/preview", "/p":
		return preview(), false

	case "/save":
		if err := m.sess.SaveNow(ctx); err != nil {
			return fail(err), false
		}
		return formatter.StyleGreen.Render("saved ") + formatter.Dim(m.sess.ID()), false

	case "/set":
		if len(args) < 2 {
			return fail(fmt.Errorf("usage: /set <field> <value>")), false
		}
		patch, err := patchFromPath(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return fail(err), false
		}
		if _, err := m.sess.Edit(ctx, patch); err != nil {
			return fail(err), false
		}
		return preview(), false

	case "/item":
		return m.executeItem(args), false

	case "/phase":
		if len(args) != 2 {
			return fail(fmt.Errorf("usage: /phase <index> <days>")), false
		}
		idx, err1 := strconv.Atoi(args[0])
		days, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return fail(fmt.Errorf("usage: /phase <index> <days>")), false
		}
		if _, err := m.sess.SetPhaseDuration(idx-1, days); err != nil {
			return fail(err), false
		}
		return preview(), false

	case "/phases":
		if len(args) == 0 {
			return fail(fmt.Errorf("usage: /phases Name1,Name2,…")), false
		}
		names := splitList(strings.Join(args, " "))
		if _, err := m.sess.InitPhases(names); err != nil {
			return fail(err), false
		}
		return preview(), false

	case "/client":
		return m.executeClient(ctx, args), false

	case "/export":
		format := export.FormatPDF
		if len(args) > 0 {
			format = export.Format(args[0])
		}
		doc, filename, err := m.sess.Export(ctx, format)
		if err != nil {
			return fail(err), false
		}
		if err := os.WriteFile(filename, doc, 0o644); err != nil {
			return fail(err), false
		}
		return formatter.StyleGreen.Render("exported ") + filename, false

	default:
		return fail(fmt.Errorf("unknown command %s, try /help", cmd)), false
	}
}

// executeItem handles /item add|set|rm.
func (m shellModel) executeItem(args []string) string {
	fail := func(err error) string { return formatter.StyleRed.Render(err.Error()) }
	usage := fmt.Errorf("usage: /item add <qty> <price> <description…> | /item set <n> <qty> <price> <description…> | /item rm <n>")

	if len(args) == 0 {
		return fail(usage)
	}

	parseItem := func(parts []string) (domain.LineItem, error) {
		if len(parts) < 3 {
			return domain.LineItem{}, usage
		}
		qty, err1 := strconv.ParseFloat(parts[0], 64)
		price, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return domain.LineItem{}, usage
		}
		return domain.LineItem{
			Description: strings.Join(parts[2:], " "),
			Quantity:    qty,
			UnitPrice:   price,
		}, nil
	}

	switch args[0] {
	case "add":
		item, err := parseItem(args[1:])
		if err != nil {
			return fail(err)
		}
		if _, err := m.sess.AddLineItem(item); err != nil {
			return fail(err)
		}
	case "set":
		if len(args) < 2 {
			return fail(usage)
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fail(usage)
		}
		item, err := parseItem(args[2:])
		if err != nil {
			return fail(err)
		}
		if _, err := m.sess.UpdateLineItem(idx-1, item); err != nil {
			return fail(err)
		}
	case "rm":
		if len(args) != 2 {
			return fail(usage)
		}
		idx, err := strconv.Atoi(args[1])
		if err != nil {
			return fail(usage)
		}
		if _, err := m.sess.RemoveLineItem(idx - 1); err != nil {
			return fail(err)
		}
	default:
		return fail(usage)
	}

	return formatter.FormatDraftPreview(m.sess.Draft()) + "\n" +
		formatter.FormatMissingFields(m.sess.MissingFields())
}

// executeClient handles /client use|save.
func (m shellModel) executeClient(ctx context.Context, args []string) string {
	fail := func(err error) string { return formatter.StyleRed.Render(err.Error()) }

	if len(args) == 0 {
		return fail(fmt.Errorf("usage: /client use <ref> | /client save"))
	}
	switch args[0] {
	case "use":
		if len(args) < 2 {
			return fail(fmt.Errorf("usage: /client use <id, RUC or name>"))
		}
		d, err := m.sess.UseClient(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return fail(err)
		}
		return formatter.FormatDraftPreview(d)
	case "save":
		saved, err := m.sess.SaveClientToDirectory(ctx)
		if err != nil {
			return fail(err)
		}
		return formatter.StyleGreen.Render("client saved ") + formatter.Dim(saved.ID)
	default:
		return fail(fmt.Errorf("usage: /client use <ref> | /client save"))
	}
}

const helpText = `/set <field> <value>    edit a field (client.name, description, schedule.startDate, …)
/item add <qty> <price> <description…>
/item set <n> <qty> <price> <description…>
/item rm <n>
/phases Name1,Name2,…   create schedule phases
/phase <n> <days>       resize one phase
/client use <ref>       pull a directory client into the draft
/client save            store the draft's client for reuse
/preview                show the current document
/export [pdf|docx]      render and save the document
/save                   force an immediate save
/quit                   save and leave`

// runShell runs the interactive draft shell until the user quits, then
// flushes pending saves.
func runShell(app *App, sess *session.Session) error {
	p := tea.NewProgram(newShellModel(app, sess))
	_, runErr := p.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sess.End(ctx); err != nil {
		fmt.Fprintln(app.Out, formatter.StyleYellow.Render("warning: final save failed: "+err.Error()))
	}
	if id := sess.ID(); id != "" {
		fmt.Fprintf(app.Out, "draft id: %s\n", id)
	}
	return runErr
}
