package music

import "guild-jukebox/internal/command"

// Commands returns every music command bound to deps.
func Commands(deps *Deps) []command.DiscordCommand {
	b := base{deps: deps}
	return []command.DiscordCommand{
		&PlayCommand{b},
		&SetupCommand{b},
		&SkipCommand{b},
		&PauseCommand{b},
		&ResumeCommand{b},
		&QueueCommand{b},
		&ClearQueueCommand{b},
		&VolumeCommand{b},
		&NowPlayingCommand{b},
		&LoopCommand{b},
		&ShuffleCommand{b},
		&SeekCommand{b},
		&SetDJCommand{b},
		&SetPrefixCommand{b},
		&LyricsCommand{b},
		&SaveQueueCommand{b},
		&LoadQueueCommand{b},
	}
}
