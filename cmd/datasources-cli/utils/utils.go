package utils

import (
	"bufio"
	"bytes"
	"context"
	"datasources-client/internal/api"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// SignalContext returns a context that is cancelled when Ctrl+C is pressed.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	var resErr *api.ResponseError
	if errors.As(err, &resErr) {
		fmt.Fprintf(os.Stderr, "%s: %s (%d)\n", message, resErr.Message, resErr.StatusCode)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", message, err.Error())
	}
	os.Exit(1)
}

var stdin = bufio.NewReader(os.Stdin)

// ReadPassword prompts on stderr and reads a password without echo. When stdin
// is not a terminal (ex. piped input) a plain line is read instead.
func ReadPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt+": ")
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

// FormatBody indents a JSON body, other bodies are returned as is.
func FormatBody(body []byte) string {
	var out bytes.Buffer
	err := json.Indent(&out, body, "", "  ")
	if err != nil {
		return string(body)
	}
	return out.String()
}

func PrintResponse(w io.Writer, res *api.Response) {
	if res == nil || len(res.Body) == 0 {
		return
	}
	fmt.Fprintln(w, FormatBody(res.Body))
}

// Message returns the `message` field most API responses carry.
func Message(res *api.Response) string {
	if res == nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(res.Body, &body) != nil {
		return ""
	}
	return body.Message
}
