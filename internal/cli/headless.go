package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	cerrors "github.com/tessro/cassette/internal/errors"
	"github.com/tessro/cassette/internal/session"
	"github.com/tessro/cassette/internal/tail"
)

// headless drives a session from line commands and prints what happens.
type headless struct {
	sess      *session.Session
	loop      *session.Loop
	watcher   *tail.Watcher
	formatter *tail.Formatter
	json      bool

	mu  sync.Mutex // serializes writes from the loop and the reader
	out io.Writer
}

func newHeadless(sess *session.Session, loop *session.Loop, out io.Writer, jsonOutput bool) *headless {
	return &headless{
		sess:    sess,
		loop:    loop,
		watcher: tail.NewWatcher(),
		formatter: tail.NewFormatter(
			tail.WithEmoji(!playNoEmoji),
			tail.WithTimestamp(playTimestamp),
			tail.WithTemplate(playFormat),
		),
		json: jsonOutput,
		out:  out,
	}
}

// Run handles the initial events, then commands read from in, until a quit
// command or ctx is done. End of input keeps the session playing.
func (h *headless) Run(ctx context.Context, in io.Reader, initial []session.Event) error {
	h.watcher.Observe(h.sess.Snapshot())

	for _, ev := range initial {
		n := h.sess.Handle(ctx, ev)
		h.report(n)
		for _, job := range n.Jobs {
			h.loop.Start(ctx, job)
		}
	}

	go h.readCommands(in)

	return h.loop.Run(ctx, h.sess, h.report)
}

func (h *headless) readCommands(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, err := session.ParseCommand(line)
		if err != nil {
			h.printError(err)
			continue
		}
		h.loop.Post(session.CommandEvent{Command: cmd})
	}
}

type jsonLine struct {
	Type       string `json:"type"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Track      string `json:"track,omitempty"`
	Index      int    `json:"index,omitempty"`
	Info       string `json:"info,omitempty"`
}

// report prints a notice and the playback events it caused. It runs on the
// loop goroutine, so reading the session is safe.
func (h *headless) report(n session.Notice) {
	if n.Message != "" {
		h.print(jsonLine{Type: "message", Message: n.Message}, n.Message)
	}
	if n.Err != nil {
		h.printError(n.Err)
	}

	for _, ev := range h.watcher.Observe(h.sess.Snapshot()) {
		line := jsonLine{Type: ev.Type.String(), Message: h.formatter.Format(ev)}
		if ev.Current != nil {
			if t := ev.Current.Current; t != nil {
				line.Track = t.Name
				line.Index = ev.Current.State.CurrentIndex + 1
			}
			line.Info = ev.Current.Info
		}
		h.print(line, line.Message)
	}
}

func (h *headless) printError(err error) {
	text := "Error: " + err.Error()
	suggestion := cerrors.GetSuggestion(err)
	if suggestion != "" {
		text += " (" + suggestion + ")"
	}
	h.print(jsonLine{Type: "error", Error: err.Error(), Suggestion: suggestion}, text)
}

func (h *headless) print(line jsonLine, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.json {
		_ = json.NewEncoder(h.out).Encode(line)
		return
	}
	_, _ = fmt.Fprintln(h.out, text)
}
