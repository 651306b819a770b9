package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/glokal-ai/docchat/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	botStyle    = lipgloss.NewStyle()
	systemStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	metaStyle   = lipgloss.NewStyle().Faint(true).Italic(true)
)

func (r *repl) printMessage(idx int, msg model.Message) {
	style := botStyle
	label := "bot"
	switch msg.Sender {
	case model.SenderUser:
		style, label = userStyle, "you"
	case model.SenderSystem:
		style, label = systemStyle, "system"
	}
	if msg.IsError {
		style = errorStyle
	}

	fmt.Printf("[%d] %s %s\n", idx, metaStyle.Render(label+":"), style.Render(msg.Text))

	if msg.HasAlternatives() {
		meta := fmt.Sprintf("alternative %d/%d", msg.ActiveIndex+1, len(msg.Alternatives))
		if msg.RegenerationCount > 0 {
			meta += fmt.Sprintf(", regenerated %d/%d", msg.RegenerationCount, model.MaxRegenerations)
		}
		fmt.Println("    " + metaStyle.Render(meta))
	}
}

func (r *repl) printTranscript() {
	for idx, msg := range r.orch.Messages() {
		r.printMessage(idx, msg)
	}
}

// printLastNotices shows system notices appended by the last attachment
// operation (they live at the tail of the log).
func (r *repl) printLastNotices() {
	messages := r.orch.Messages()
	start := len(messages)
	for start > 0 && messages[start-1].Sender == model.SenderSystem {
		start--
	}
	for idx := start; idx < len(messages); idx++ {
		r.printMessage(idx, messages[idx])
	}
}

func (r *repl) printSessions() {
	active := r.orch.ActiveSession()
	for i, sess := range r.orch.Sessions() {
		marker := "  "
		if sess.ID == active {
			marker = "* "
		}
		fmt.Printf("%s%d. %s\n", marker, i+1, sessionLabel(sess))
	}
}

func (r *repl) printFiles() {
	attachments := r.orch.Attachments()
	if len(attachments) == 0 {
		fmt.Println(systemStyle.Render("No files uploaded yet"))
		return
	}
	for _, a := range attachments {
		extra := ""
		if a.Status == model.StatusOCRProcessed {
			extra = " (OCR Processed)"
		}
		if a.Kind == model.AttachmentWebpage && a.SourceURL != "" {
			extra += " <" + a.SourceURL + ">"
		}
		fmt.Printf("  %s%s\n", a.Name, metaStyle.Render(extra))
	}
}

func (r *repl) printPlaceholder() {
	if !r.orch.InputEnabled() {
		fmt.Println(systemStyle.Render("Upload a file to enable chatting"))
	}
}

func (r *repl) printError(text string) {
	fmt.Println(errorStyle.Render(text))
}

func (r *repl) printHelp() {
	help := strings.TrimSpace(`
Commands:
  /new                     create a session and switch to it
  /sessions                list sessions
  /switch <n>              switch to session n
  /rename <n> <title>      rename session n
  /delete <n>              delete session n (asks for confirmation)
  /upload <path>...        attach local files
  /link <url>...           attach web pages
  /files                   list attachments for the active session
  /rm <filename>           delete an attachment (asks for confirmation)
  /regen <i>               regenerate the bot message at index i
  /prev <i>, /next <i>     browse alternatives of message i
  /history                 reprint the transcript
  /quit                    exit

Anything else is sent as a chat message.`)
	fmt.Println(systemStyle.Render(help))
}

func sessionLabel(sess model.Session) string {
	title := sess.Title
	if title == "" {
		title = "Untitled"
	}
	if sess.LastUpdated.IsZero() {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, sess.LastUpdated.Format("2006-01-02 15:04"))
}
