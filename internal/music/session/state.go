package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"guild-jukebox/internal/music/sources"
)

type State int

const (
	Idle State = iota
	Playing
	Paused
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type LoopMode string

const (
	LoopOff   LoopMode = "off"
	LoopSong  LoopMode = "song"
	LoopQueue LoopMode = "queue"
)

func ParseLoopMode(s string) (LoopMode, error) {
	switch mode := LoopMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case LoopOff, LoopSong, LoopQueue:
		return mode, nil
	default:
		return "", ErrInvalidLoopMode
	}
}

// ParseTimestamp converts "minutes:seconds" into an offset.
func ParseTimestamp(ts string) (time.Duration, error) {
	minStr, secStr, ok := strings.Cut(strings.TrimSpace(ts), ":")
	if !ok {
		return 0, ErrInvalidTimestamp
	}

	minutes, err := strconv.Atoi(minStr)
	if err != nil || minutes < 0 {
		return 0, ErrInvalidTimestamp
	}
	seconds, err := strconv.Atoi(secStr)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, ErrInvalidTimestamp
	}

	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
}

type Status string

const (
	StatusPlaying Status = "Playing"
	StatusStopped Status = "Playback Stopped"
	StatusPaused  Status = "Playback Paused"
	StatusResumed Status = "Playback Resumed"
	StatusError   Status = "Error"
)

func (status Status) StringEmoji() string {
	m := map[Status]string{
		StatusPlaying: "▶️",
		StatusStopped: "⏹",
		StatusPaused:  "⏸",
		StatusResumed: "▶️",
		StatusError:   "❌",
	}
	return m[status]
}

// StatusEvent reports a playback change. Automatic is set for changes the
// transport caused (a track ending or failing) rather than a command.
type StatusEvent struct {
	Status    Status
	Track     *sources.TrackInfo
	Err       error
	Automatic bool
}

// Snapshot is a consistent copy of a session's observable state.
type Snapshot struct {
	GuildID    string
	State      State
	NowPlaying *sources.TrackInfo
	Queue      []*sources.TrackInfo
	Loop       LoopMode
	Volume     float64
	Generation uint64
}
