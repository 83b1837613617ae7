package session

import "errors"

var (
	ErrNothingPlaying   = errors.New("nothing is playing")
	ErrNoVoiceChannel   = errors.New("you must be in a voice channel")
	ErrWrongChannel     = errors.New("the bot is playing in another voice channel")
	ErrNoArtist         = errors.New("no query given and no default artist configured")
	ErrNoResults        = errors.New("no tracks found")
	ErrInvalidVolume    = errors.New("volume must be between 1 and 100")
	ErrInvalidLoopMode  = errors.New("loop mode must be one of off, song, queue")
	ErrInvalidTimestamp = errors.New("timestamp must look like mm:ss")
	ErrQueueTooShort    = errors.New("the queue needs at least two tracks to shuffle")
	ErrStaleResult      = errors.New("a newer play request replaced this one")
	ErrSessionClosed    = errors.New("session is closed")
)
