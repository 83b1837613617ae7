// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"guild-jukebox/internal/command"
	"guild-jukebox/internal/command/core"
	"guild-jukebox/internal/command/music"
	"guild-jukebox/internal/config"
	"guild-jukebox/internal/discord"
	"guild-jukebox/internal/httpclient"
	"guild-jukebox/internal/logging"
	"guild-jukebox/internal/middleware"
	"guild-jukebox/internal/music/source_resolver"
	"guild-jukebox/internal/music/sources/direct"
	"guild-jukebox/internal/music/sources/youtube"
	"guild-jukebox/internal/music/stream"
	"guild-jukebox/internal/storage"
	"guild-jukebox/pkg/cmd"
	"guild-jukebox/pkg/retrylimit"
)

const httpTimeout = 30 * time.Second

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("[Main] Invalid configuration")
	}

	closer := logging.Setup(cfg.LogLevel, cfg.LogFile)
	defer closer.Close()

	log.Info().Msg("[Main] Starting Guild Jukebox bot...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("[Main] Failed to open storage")
	}
	defer store.Close()

	client := httpclient.New(cfg.YouTubeProxy, httpTimeout)

	var searcher youtube.Searcher = youtube.NewPageSearcher(client)
	if cfg.YouTubeAPIKey != "" {
		api, err := youtube.NewAPISearcher(ctx, cfg.YouTubeAPIKey, client)
		if err != nil {
			log.Warn().Err(err).Msg("[Main] YouTube Data API unavailable, falling back to page search")
		} else {
			searcher = api
		}
	}

	yt := youtube.New(searcher)
	limiter := newResolverLimiter(cfg.ResolverRPS)
	resolver := source_resolver.New(yt, limiter, yt, direct.New(direct.NewProber(client)))
	opener := stream.NewOpener(stream.DefaultRegistry(client))

	bot, err := discord.NewBot(cfg, store, resolver, opener)
	if err != nil {
		log.Fatal().Err(err).Msg("[Main] Failed to create Discord bot")
	}

	if err := registerCommands(bot, store); err != nil {
		log.Fatal().Err(err).Msg("[Main] Failed to register commands")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("[Main] Received signal, shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("[Main] Discord bot error")
		}
		cancel()
	}

	if err := store.Flush(); err != nil {
		log.Error().Err(err).Msg("[Main] Failed to flush storage")
	}
	log.Info().Msg("[Main] Discord bot exited cleanly")
}

// newResolverLimiter starts at rps and may climb to twice that while
// YouTube keeps answering.
func newResolverLimiter(rps float64) *retrylimit.AdaptiveLimiter {
	lim := rate.Limit(rps)
	return retrylimit.NewAdaptiveLimiter(lim, 1, lim*2, 0.5, 0.5)
}

func registerCommands(bot *discord.Bot, store *storage.Storage) error {
	sessions := bot.Sessions()
	mws := []cmd.Middleware{
		middleware.WithCommandLogger(store),
		middleware.WithUserPermissionCheck(sessions.DJRole),
		middleware.WithGuildOnly(),
	}

	deps := music.Deps{
		Sessions: sessions,
		Voice:    bot,
		Settings: store,
	}

	all := music.Commands(&deps)
	all = append(all,
		&core.HelpCommand{Registry: bot.Commands()},
		&core.CommandsLogCommand{History: store},
	)
	for _, c := range all {
		if err := command.RegisterCommand(bot.Commands(), c, mws...); err != nil {
			return err
		}
	}
	return nil
}
