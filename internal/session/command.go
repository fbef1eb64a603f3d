package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	cerrors "github.com/tessro/cassette/internal/errors"
)

// ErrUnknownCommand is returned by ParseCommand for unrecognized input.
var ErrUnknownCommand = errors.New("unknown command")

// CommandKind identifies a user command.
type CommandKind int

const (
	CmdPlay CommandKind = iota
	CmdPause
	CmdToggle
	CmdNext
	CmdPrevious
	CmdForward
	CmdRewind
	CmdSeek
	CmdRepeat
	CmdShuffle
	CmdRemove
	CmdAdd
	CmdClear
	CmdList
	CmdStatus
	CmdVolume
	CmdHelp
	CmdQuit
)

// Switch is the argument of an on/off command.
type Switch int

const (
	SwitchToggle Switch = iota
	SwitchOn
	SwitchOff
)

func (sw Switch) apply(current bool) bool {
	switch sw {
	case SwitchOn:
		return true
	case SwitchOff:
		return false
	default:
		return !current
	}
}

// Command is a parsed user command. Index is 0-based and -1 when absent.
type Command struct {
	Kind     CommandKind
	Index    int
	Fraction float64
	Switch   Switch
	Volume   int
	Args     []string
}

// Cmd returns a command of the given kind with no arguments.
func Cmd(kind CommandKind) Command {
	return Command{Kind: kind, Index: -1}
}

// Usage describes the commands accepted by ParseCommand.
const Usage = `Commands:
  play [n]             play, or play track n
  pause                pause
  toggle               play/pause
  next, prev           skip to next/previous track
  ff, rw               seek forward/back by the seek step
  seek <0..1>          seek to a fraction of the track
  repeat [on|off]      toggle or set repeat
  shuffle [on|off]     toggle or set shuffle
  rm <n>               remove track n
  add <path|link>...   add files, folders or track links
  clear                remove every track
  ls                   list the playlist
  status               show the current track
  vol <0-100>          set the volume
  help                 show this help
  quit                 exit`

// ParseCommand parses one line of headless input. Track numbers are 1-based.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "play":
		cmd := Cmd(CmdPlay)
		if len(args) > 0 {
			n, err := parseTrackNumber(args[0])
			if err != nil {
				return Command{}, err
			}
			cmd.Index = n
		}
		return cmd, nil
	case "pause":
		return Cmd(CmdPause), nil
	case "toggle", "pp":
		return Cmd(CmdToggle), nil
	case "next", "n":
		return Cmd(CmdNext), nil
	case "prev", "previous", "p":
		return Cmd(CmdPrevious), nil
	case "ff", "forward":
		return Cmd(CmdForward), nil
	case "rw", "rewind":
		return Cmd(CmdRewind), nil
	case "seek":
		if len(args) != 1 {
			return Command{}, errors.New("usage: seek <0..1>")
		}
		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Command{}, fmt.Errorf("invalid seek fraction %q", args[0])
		}
		cmd := Cmd(CmdSeek)
		cmd.Fraction = f
		return cmd, nil
	case "repeat", "shuffle":
		sw, err := parseSwitch(args)
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", name, err)
		}
		cmd := Cmd(CmdRepeat)
		if name == "shuffle" {
			cmd.Kind = CmdShuffle
		}
		cmd.Switch = sw
		return cmd, nil
	case "rm", "remove":
		if len(args) != 1 {
			return Command{}, errors.New("usage: rm <n>")
		}
		n, err := parseTrackNumber(args[0])
		if err != nil {
			return Command{}, err
		}
		cmd := Cmd(CmdRemove)
		cmd.Index = n
		return cmd, nil
	case "add":
		if len(args) == 0 {
			return Command{}, errors.New("usage: add <path|link>...")
		}
		cmd := Cmd(CmdAdd)
		cmd.Args = args
		return cmd, nil
	case "clear":
		return Cmd(CmdClear), nil
	case "ls", "list":
		return Cmd(CmdList), nil
	case "status", "st":
		return Cmd(CmdStatus), nil
	case "vol", "volume":
		if len(args) != 1 {
			return Command{}, errors.New("usage: vol <0-100>")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("invalid volume %q", args[0])
		}
		cmd := Cmd(CmdVolume)
		cmd.Volume = v
		return cmd, nil
	case "help", "?":
		return Cmd(CmdHelp), nil
	case "quit", "q", "exit":
		return Cmd(CmdQuit), nil
	default:
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

func parseTrackNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid track number %q", arg)
	}
	return n - 1, nil
}

func parseSwitch(args []string) (Switch, error) {
	if len(args) == 0 {
		return SwitchToggle, nil
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		return SwitchOn, nil
	case "off", "false", "0":
		return SwitchOff, nil
	default:
		return SwitchToggle, fmt.Errorf("expected on or off, got %q", args[0])
	}
}

// IsLink reports whether arg looks like a track link rather than a path.
func IsLink(arg string) bool {
	return strings.HasPrefix(arg, "spotify:") || strings.Contains(arg, "://")
}

// Execute runs a command against the session.
func (s *Session) Execute(ctx context.Context, cmd Command) Notice {
	switch cmd.Kind {
	case CmdPlay:
		if cmd.Index >= 0 {
			return s.notice(s.PlayIndex(ctx, cmd.Index))
		}
		return s.notice(s.Play(ctx))
	case CmdPause:
		return s.notice(s.Pause(ctx))
	case CmdToggle:
		return s.notice(s.TogglePlay(ctx))
	case CmdNext:
		return s.notice(s.AdvanceNext(ctx))
	case CmdPrevious:
		return s.notice(s.AdvancePrevious(ctx))
	case CmdForward:
		return s.notice(s.Forward())
	case CmdRewind:
		return s.notice(s.Rewind())
	case CmdSeek:
		return s.notice(s.SeekAbsolute(cmd.Fraction))
	case CmdRepeat:
		s.SetRepeating(cmd.Switch.apply(s.state.IsRepeating))
		return Notice{Message: "Repeat " + onOff(s.state.IsRepeating)}
	case CmdShuffle:
		n := s.notice(s.SetShuffling(ctx, cmd.Switch.apply(s.state.IsShuffling)))
		n.Message = "Shuffle " + onOff(s.state.IsShuffling)
		return n
	case CmdRemove:
		var name string
		if t, err := s.store.Get(cmd.Index); err == nil {
			name = t.Name
		}
		n := s.notice(s.RemoveTrack(ctx, cmd.Index))
		if name != "" {
			n.Message = "Removed " + name
		}
		return n
	case CmdAdd:
		return s.add(cmd.Args)
	case CmdClear:
		n := s.notice(s.Clear())
		n.Message = "Playlist cleared"
		return n
	case CmdList:
		return Notice{Message: s.Listing()}
	case CmdStatus:
		return Notice{Message: s.StatusLine()}
	case CmdVolume:
		s.SetVolume(cmd.Volume)
		return Notice{Message: fmt.Sprintf("Volume %d%%", s.volume)}
	case CmdHelp:
		return Notice{Message: Usage}
	case CmdQuit:
		return Notice{Quit: true}
	default:
		return Notice{Err: fmt.Errorf("%w: %d", ErrUnknownCommand, cmd.Kind)}
	}
}

func (s *Session) add(args []string) Notice {
	links, paths := lo.FilterReject(args, func(arg string, _ int) bool {
		return IsLink(arg)
	})

	var n Notice
	for _, link := range links {
		if s.resolver == nil {
			n.Err = errors.Join(n.Err, fmt.Errorf("%w: %w", cerrors.ErrResolveFailure, cerrors.ErrNotConfigured))
			continue
		}
		n.Jobs = append(n.Jobs, ResolveJob(s.resolver, link))
	}
	if len(paths) > 0 {
		n.Jobs = append(n.Jobs, ScanJob(paths, true))
	}
	return n
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
