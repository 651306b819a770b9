package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/glokal-ai/docchat/internal/model"
	"github.com/glokal-ai/docchat/internal/service"
	"github.com/glokal-ai/docchat/pkg/logger"
)

// repl is the interactive loop. It only reads orchestrator snapshots and
// forwards user intent; all state transitions happen in the service layer.
// The reader is shared with the confirmer: buffering stdin in two places
// would let the loop swallow a type-ahead confirmation answer.
type repl struct {
	orch   *service.Orchestrator
	logger *logger.Logger
	in     *bufio.Reader
}

func newREPL(orch *service.Orchestrator, log *logger.Logger, in *bufio.Reader) *repl {
	return &repl{
		orch:   orch,
		logger: log,
		in:     in,
	}
}

// Run reads lines until EOF or /quit. Plain lines are chat messages;
// lines starting with / are commands.
func (r *repl) Run(ctx context.Context) error {
	fmt.Println(titleStyle.Render("docchat") + " — type /help for commands")
	r.printPlaceholder()

	for {
		fmt.Print(promptStyle.Render("> "))
		line, readErr := r.in.ReadString('\n')

		if text := strings.TrimSpace(line); text != "" {
			if strings.HasPrefix(text, "/") {
				if quit := r.dispatch(ctx, text); quit {
					return nil
				}
			} else {
				r.send(ctx, text)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

func (r *repl) dispatch(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		r.printHelp()
	case "/new":
		if _, err := r.orch.CreateSession(ctx); err != nil {
			r.printError("Could not create session: " + err.Error())
		} else {
			r.printPlaceholder()
		}
	case "/sessions":
		r.printSessions()
	case "/switch":
		r.switchSession(ctx, args)
	case "/rename":
		r.renameSession(ctx, args)
	case "/delete":
		r.deleteSession(ctx, args)
	case "/upload":
		r.upload(ctx, args)
	case "/link":
		r.addLinks(ctx, args)
	case "/files":
		r.printFiles()
	case "/rm":
		if len(args) != 1 {
			r.printError("Usage: /rm <filename>")
			break
		}
		r.deleteFile(ctx, args[0])
	case "/regen":
		r.regenerate(ctx, args)
	case "/prev":
		r.navigate(args, -1)
	case "/next":
		r.navigate(args, +1)
	case "/history":
		r.printTranscript()
	default:
		r.printError("Unknown command " + cmd)
	}
	return false
}

func (r *repl) send(ctx context.Context, text string) {
	reply, err := r.orch.SendMessage(ctx, text)
	switch {
	case errors.Is(err, service.ErrInputDisabled):
		// Gating state, not an error.
		r.printPlaceholder()
		return
	case err != nil:
		r.printError(err.Error())
		return
	}
	r.printMessage(len(r.orch.Messages())-1, reply)
}

func (r *repl) switchSession(ctx context.Context, args []string) {
	sess, ok := r.sessionArg(args)
	if !ok {
		return
	}
	r.orch.SwitchSession(ctx, sess.ID)
	r.orch.Wait()
	fmt.Println(systemStyle.Render("Switched to " + sessionLabel(sess)))
	r.printTranscript()
}

func (r *repl) renameSession(ctx context.Context, args []string) {
	if len(args) < 2 {
		r.printError("Usage: /rename <n> <new title>")
		return
	}
	sess, ok := r.sessionArg(args[:1])
	if !ok {
		return
	}
	title := strings.Join(args[1:], " ")
	if err := r.orch.RenameSession(ctx, sess.ID, title); err != nil {
		// Keep the typed title visible so nothing is lost on failure.
		r.printError(fmt.Sprintf("Rename failed (kept %q): %v", title, err))
		return
	}
	fmt.Println(systemStyle.Render("Renamed to " + title))
}

func (r *repl) deleteSession(ctx context.Context, args []string) {
	sess, ok := r.sessionArg(args)
	if !ok {
		return
	}
	if err := r.orch.DeleteSession(ctx, sess.ID); err != nil {
		if errors.Is(err, service.ErrConfirmationDeclined) {
			return
		}
		r.printError("Delete failed: " + err.Error())
	}
}

func (r *repl) upload(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		r.printError("Usage: /upload <path> [path...]")
		return
	}
	files := make([]model.FileUpload, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			r.printError("Cannot read " + p + ": " + err.Error())
			continue
		}
		files = append(files, model.FileUpload{Name: filepath.Base(p), Content: content})
	}
	resp, err := r.orch.Upload(ctx, files)
	if err != nil {
		r.printLastNotices()
		return
	}
	if resp.Success {
		fmt.Println(systemStyle.Render(fmt.Sprintf("Successfully uploaded %d file(s)", len(resp.UploadedFiles))))
		r.printPlaceholder()
	}
	r.printLastNotices()
}

func (r *repl) addLinks(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		r.printError("Usage: /link <url> [url...]")
		return
	}
	resp, err := r.orch.AddWebLinks(ctx, urls)
	if err != nil {
		if errors.Is(err, service.ErrNoValidURLs) {
			r.printError("Please provide a valid URL")
			return
		}
		r.printLastNotices()
		return
	}
	if resp.Success {
		fmt.Println(systemStyle.Render(fmt.Sprintf("Added %d web page(s)", len(resp.ScrapedURLs))))
		r.printPlaceholder()
	}
	r.printLastNotices()
}

func (r *repl) deleteFile(ctx context.Context, name string) {
	resp, err := r.orch.DeleteAttachment(ctx, name)
	if err != nil {
		if errors.Is(err, service.ErrConfirmationDeclined) {
			return
		}
		r.printLastNotices()
		return
	}
	if resp.Success {
		fmt.Println(systemStyle.Render(fmt.Sprintf("Successfully deleted %q.", name)))
	}
	r.printLastNotices()
	r.printPlaceholder()
}

func (r *repl) regenerate(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.printError("Usage: /regen <message index>")
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		r.printError("Not a message index: " + args[0])
		return
	}
	if err := r.orch.Regenerate(ctx, idx); err != nil {
		switch {
		case errors.Is(err, service.ErrRegenerationLimit):
			r.printError("Maximum regeneration limit (3) reached for this response")
		case errors.Is(err, service.ErrNotRegenerable):
			r.printError("Only bot responses can be regenerated")
		case errors.Is(err, service.ErrRegenerationBusy):
			r.printError("That response is already being regenerated")
		default:
			// Regenerate failures stay out of the transcript.
			r.logger.Warn("regeneration failed", zap.Error(err))
		}
		return
	}
	if msg, ok := messageAt(r.orch.Messages(), idx); ok {
		r.printMessage(idx, msg)
	}
}

func (r *repl) navigate(args []string, direction int) {
	if len(args) != 1 {
		r.printError("Usage: /prev|/next <message index>")
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		r.printError("Not a message index: " + args[0])
		return
	}
	if !r.orch.Navigate(idx, direction) {
		return
	}
	if msg, ok := messageAt(r.orch.Messages(), idx); ok {
		r.printMessage(idx, msg)
	}
}

func (r *repl) sessionArg(args []string) (model.Session, bool) {
	sessions := r.orch.Sessions()
	if len(args) != 1 {
		r.printError("Usage: expects a session number from /sessions")
		return model.Session{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(sessions) {
		r.printError("No such session: " + args[0])
		return model.Session{}, false
	}
	return sessions[n-1], true
}

func messageAt(messages []model.Message, idx int) (model.Message, bool) {
	if idx < 0 || idx >= len(messages) {
		return model.Message{}, false
	}
	return messages[idx], true
}
