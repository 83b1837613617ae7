// Package discord carries voice over a discordgo voice connection.
package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"guild-jukebox/internal/music/parsers"
	"guild-jukebox/internal/music/stream"
	"guild-jukebox/internal/music/voice"
)

// Connector joins voice channels through a discordgo session. discordgo
// keeps one VoiceConnection per guild, so only the latest join of a guild
// may disconnect it.
type Connector struct {
	dg     *discordgo.Session
	opener *stream.Opener

	mu    sync.Mutex
	joins map[string]uint64
}

func NewConnector(dg *discordgo.Session, opener *stream.Opener) *Connector {
	return &Connector{dg: dg, opener: opener, joins: make(map[string]uint64)}
}

func (c *Connector) claim(guildID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joins[guildID]++
	return c.joins[guildID]
}

func (c *Connector) isLatest(guildID string, seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joins[guildID] == seq
}

// leave disconnects vc unless a newer join of the guild owns it now.
func (c *Connector) leave(vc *discordgo.VoiceConnection, guildID string, seq uint64) error {
	if !c.isLatest(guildID, seq) {
		log.Debug().Str("guild", guildID).Uint64("join", seq).Msg("[Voice] Superseded join, keeping connection")
		return nil
	}
	return vc.Disconnect()
}

func (c *Connector) Connect(ctx context.Context, guildID, channelID string, handler voice.EventHandler) (voice.Transport, error) {
	if channelID == "" {
		return nil, &voice.ConnectError{GuildID: guildID, Err: errors.New("voice channel ID is not set")}
	}

	seq := c.claim(guildID)

	type joined struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	ch := make(chan joined, 1)
	go func() {
		vc, err := c.dg.ChannelVoiceJoin(guildID, channelID, false, true)
		ch <- joined{vc, err}
	}()

	var res joined
	select {
	case res = <-ch:
	case <-ctx.Done():
		// leave once the abandoned join settles
		go func() {
			if late := <-ch; late.err == nil {
				_ = c.leave(late.vc, guildID, seq)
			}
		}()
		return nil, &voice.ConnectError{GuildID: guildID, ChannelID: channelID, Err: ctx.Err()}
	}

	if res.err != nil {
		return nil, &voice.ConnectError{GuildID: guildID, ChannelID: channelID, Err: res.err}
	}

	log.Info().Str("guild", guildID).Str("channel", channelID).Msg("[Voice] Joined voice channel")
	return voice.NewLink(guildID, channelID, &backend{vc: res.vc, opener: c.opener, owner: c, guildID: guildID, seq: seq}, handler, voice.GraceWindow), nil
}

type backend struct {
	vc     *discordgo.VoiceConnection
	opener *stream.Opener

	owner   *Connector
	guildID string
	seq     uint64
}

func (b *backend) Stream(ctx context.Context, req voice.PlayRequest, ctl *voice.Control) error {
	track := parsers.NewTrackParse(req.Track)
	rs := stream.NewRecoveryStream(ctx, b.opener, track)
	if err := rs.Open(req.Seek.Seconds()); err != nil {
		return fmt.Errorf("failed to create PCM stream for track: %w", err)
	}
	defer rs.Close()

	log.Debug().Str("url", req.Track.URL).Str("parser", rs.Parser()).Msg("[Voice] Stream opened")

	if err := b.vc.Speaking(true); err != nil {
		log.Debug().Err(err).Msg("[Voice] Speaking(true) failed")
	}
	defer func() { _ = b.vc.Speaking(false) }()

	return SendOpus(ctx, rs, b.vc.OpusSend, ctl)
}

func (b *backend) Disconnect() error {
	return b.owner.leave(b.vc, b.guildID, b.seq)
}
