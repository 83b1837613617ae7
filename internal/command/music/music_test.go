package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"guild-jukebox/internal/music/session"
	"guild-jukebox/internal/music/source_resolver"
	"guild-jukebox/internal/music/voice"
)

func request(user string, opts map[string]any) *Request {
	req := &Request{
		Ctx:           context.Background(),
		GuildID:       "g1",
		TextChannelID: "text-1",
		UserID:        user,
		Options:       make(map[string]*discordgo.ApplicationCommandInteractionDataOption),
	}
	for name, v := range opts {
		req.Options[name] = &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: v}
	}
	return req
}

func TestCommands_Definitions(t *testing.T) {
	cmds := Commands(&Deps{})

	want := map[string]bool{
		"play": true, "setup": false, "skip": true, "pause": true, "resume": true,
		"queue": false, "clearqueue": true, "volume": true, "nowplaying": false,
		"loop": true, "shuffle": true, "seek": true, "setdj": false, "setprefix": false,
		"lyrics": false, "savequeue": false, "loadqueue": true,
	}
	if len(cmds) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(cmds))
	}

	for _, c := range cmds {
		dj, ok := want[c.Name()]
		if !ok {
			t.Errorf("unexpected command %s", c.Name())
			continue
		}
		delete(want, c.Name())

		def := c.(interface {
			SlashDefinition() *discordgo.ApplicationCommand
		}).SlashDefinition()
		if def.Name != c.Name() || def.Description == "" {
			t.Errorf("%s: bad definition %+v", c.Name(), def)
		}
		restricted := false
		if r, ok := c.(interface{ RequiresDJ() bool }); ok {
			restricted = r.RequiresDJ()
		}
		if restricted != dj {
			t.Errorf("%s: RequiresDJ=%v, want %v", c.Name(), restricted, dj)
		}
		if perms := c.UserPermissions(); len(perms) != 1 || perms[0] != discordgo.PermissionManageGuild {
			t.Errorf("%s: expected Manage Server, got %v", c.Name(), perms)
		}
	}
	if len(want) != 0 {
		t.Errorf("missing commands: %v", want)
	}
}

func TestPlay_RequiresVoiceChannel(t *testing.T) {
	f := newFixture()
	c := &PlayCommand{base{f.deps}}

	_, err := c.execute(request("stranger", map[string]any{"artist": "x"}))
	if !errors.Is(err, session.ErrNoVoiceChannel) {
		t.Fatalf("expected ErrNoVoiceChannel, got %v", err)
	}
	if len(f.resolver.queries) != 0 {
		t.Error("resolver called before the voice check")
	}
}

func TestSetupPlaySkipFlow(t *testing.T) {
	f := newFixture()
	list := makeTracks("u", 10)
	f.resolver.results["Artist A"] = list

	setup := &SetupCommand{base{f.deps}}
	if _, err := setup.execute(request("listener", map[string]any{"artist": " Artist A "})); err != nil {
		t.Fatal(err)
	}
	if f.settings.artists["g1"] != "Artist A" {
		t.Fatalf("artist not persisted: %q", f.settings.artists["g1"])
	}

	play := &PlayCommand{base{f.deps}}
	embed, err := play.execute(request("listener", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(embed.Description, "u1") || !strings.Contains(embed.Footer.Text, "9 track") {
		t.Errorf("unexpected play embed %+v", embed)
	}

	skip := &SkipCommand{base{f.deps}}
	embed, err = skip.execute(request("listener", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(embed.Description, "u2") {
		t.Errorf("expected u2 after skip, got %q", embed.Description)
	}

	s := f.registry.GetOrCreate("g1")
	if s.NowPlaying() != list[1] || len(s.Queue()) != 8 {
		t.Errorf("unexpected session state now=%v queue=%d", s.NowPlaying(), len(s.Queue()))
	}
	if s.TextChannelID() != "text-1" {
		t.Errorf("text channel not recorded: %q", s.TextChannelID())
	}
}

func TestVolumeCommand(t *testing.T) {
	f := newFixture()
	c := &VolumeCommand{base{f.deps}}

	for _, level := range []float64{0, 101, 150} {
		if _, err := c.execute(request("listener", map[string]any{"level": level})); !errors.Is(err, session.ErrInvalidVolume) {
			t.Errorf("level %v: expected ErrInvalidVolume, got %v", level, err)
		}
	}
	if _, err := c.execute(request("listener", nil)); !errors.Is(err, session.ErrInvalidVolume) {
		t.Errorf("missing level: expected ErrInvalidVolume, got %v", err)
	}

	if _, err := c.execute(request("listener", map[string]any{"level": float64(40)})); err != nil {
		t.Fatal(err)
	}
	if v := f.registry.GetOrCreate("g1").Volume(); v != 0.4 {
		t.Errorf("expected 0.4, got %v", v)
	}
}

func TestControls_NothingPlaying(t *testing.T) {
	f := newFixture()
	b := base{f.deps}

	execs := map[string]executor{
		"skip":       (&SkipCommand{b}).execute,
		"pause":      (&PauseCommand{b}).execute,
		"resume":     (&ResumeCommand{b}).execute,
		"seek":       (&SeekCommand{b}).execute,
		"nowplaying": (&NowPlayingCommand{b}).execute,
	}
	for name, exec := range execs {
		_, err := exec(request("listener", map[string]any{"time": "1:00"}))
		if !errors.Is(err, session.ErrNothingPlaying) {
			t.Errorf("%s: expected ErrNothingPlaying, got %v", name, err)
		}
	}

	if _, err := (&ShuffleCommand{b}).execute(request("listener", nil)); !errors.Is(err, session.ErrQueueTooShort) {
		t.Errorf("shuffle: expected ErrQueueTooShort, got %v", err)
	}
	if _, err := (&LoopCommand{b}).execute(request("listener", map[string]any{"mode": "forever"})); !errors.Is(err, session.ErrInvalidLoopMode) {
		t.Errorf("loop: expected ErrInvalidLoopMode, got %v", err)
	}
}

func TestQueueEmbed_Truncates(t *testing.T) {
	f := newFixture()
	f.resolver.results["many"] = makeTracks("t", 15)
	if _, err := (&PlayCommand{base{f.deps}}).execute(request("listener", map[string]any{"artist": "many"})); err != nil {
		t.Fatal(err)
	}

	embed, err := (&QueueCommand{base{f.deps}}).execute(request("listener", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(embed.Title, "(14)") {
		t.Errorf("unexpected title %q", embed.Title)
	}
	if !strings.Contains(embed.Description, "`10.`") || strings.Contains(embed.Description, "`11.`") {
		t.Errorf("expected exactly ten entries:\n%s", embed.Description)
	}
	if !strings.Contains(embed.Description, "and 4 more") {
		t.Errorf("missing overflow line:\n%s", embed.Description)
	}

	np, _ := (&NowPlayingCommand{base{f.deps}}).execute(request("listener", nil))
	if !strings.Contains(np.Description, "t1") {
		t.Errorf("unexpected now playing %q", np.Description)
	}
}

func TestSettingsCommands(t *testing.T) {
	f := newFixture()
	b := base{f.deps}

	if _, err := (&SetDJCommand{b}).execute(request("listener", map[string]any{"role": "role-9"})); err != nil {
		t.Fatal(err)
	}
	if f.settings.djs["g1"] != "role-9" || f.registry.GetOrCreate("g1").DJRole() != "role-9" {
		t.Error("DJ role not stored and mirrored")
	}

	embed, err := (&SetPrefixCommand{b}).execute(request("listener", map[string]any{"prefix": "has space"}))
	if err != nil || !strings.Contains(embed.Description, "without spaces") {
		t.Errorf("expected prefix rejection, got %v %v", embed, err)
	}
	if _, err := (&SetPrefixCommand{b}).execute(request("listener", map[string]any{"prefix": "?"})); err != nil {
		t.Fatal(err)
	}
	if f.settings.prefix["g1"] != "?" || f.registry.GetOrCreate("g1").Prefix() != "?" {
		t.Error("prefix not stored and mirrored")
	}
}

func TestExtensions_Unavailable(t *testing.T) {
	f := newFixture()
	b := base{f.deps}

	for name, exec := range map[string]executor{
		"lyrics":    (&LyricsCommand{b}).execute,
		"savequeue": (&SaveQueueCommand{b}).execute,
		"loadqueue": (&LoadQueueCommand{b}).execute,
	} {
		_, err := exec(request("listener", nil))
		if !errors.Is(err, errUnavailable) {
			t.Errorf("%s: expected errUnavailable, got %v", name, err)
		}
		if !strings.Contains(Describe(err), "not available") {
			t.Errorf("%s: unexpected message %q", name, Describe(err))
		}
	}
}

func TestExtensions_WithProviders(t *testing.T) {
	f := newFixture()
	queues := &memoryQueues{}
	f.deps.Queues = queues
	f.deps.Lyrics = staticLyrics(strings.Repeat("la ", 2000))
	b := base{f.deps}

	list := makeTracks("s", 3)
	f.resolver.results["q"] = list
	if _, err := (&PlayCommand{b}).execute(request("listener", map[string]any{"artist": "q"})); err != nil {
		t.Fatal(err)
	}

	lyrics, err := (&LyricsCommand{b}).execute(request("listener", nil))
	if err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(lyrics.Description)); n != maxLyricsLen+1 {
		t.Errorf("expected truncated lyrics, got %d runes", n)
	}

	if _, err := (&SaveQueueCommand{b}).execute(request("listener", nil)); err != nil {
		t.Fatal(err)
	}
	if len(queues.saved["g1"]) != 3 || queues.saved["g1"][0] != list[0] {
		t.Fatalf("unexpected saved queue %v", queues.saved["g1"])
	}

	f.resolver.results["other"] = makeTracks("o", 2)
	_, _ = (&PlayCommand{b}).execute(request("listener", map[string]any{"artist": "other"}))

	if _, err := (&LoadQueueCommand{b}).execute(request("listener", nil)); err != nil {
		t.Fatal(err)
	}
	s := f.registry.GetOrCreate("g1")
	if s.NowPlaying() != list[0] || len(s.Queue()) != 2 {
		t.Errorf("load did not restore the saved queue: now=%v queue=%d", s.NowPlaying(), len(s.Queue()))
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{session.ErrNothingPlaying, "Nothing is playing."},
		{fmt.Errorf("wrapped: %w", session.ErrInvalidVolume), "Volume must be between 1 and 100."},
		{session.ErrNoArtist, "Give an artist or song, or set a default artist with `/setup`."},
		{&source_resolver.ResolutionError{Query: "x", Reason: source_resolver.ReasonQuota}, "The search quota is exhausted. Try again later."},
		{fmt.Errorf("resolve: %w", &source_resolver.ResolutionError{Query: "zzz", Reason: source_resolver.ReasonNoResults}), "Nothing found for **zzz**."},
		{&source_resolver.ResolutionError{Reason: source_resolver.ReasonUnavailable}, "The search service is unavailable right now."},
		{&voice.ConnectError{GuildID: "g", ChannelID: "c", Err: errors.New("nope")}, "I could not join your voice channel."},
		{errors.New("boom"), "Something went wrong."},
	}
	for _, tt := range tests {
		if got := Describe(tt.err); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestAnnounce_PostsAutomaticChanges(t *testing.T) {
	f := newFixture()
	list := makeTracks("a", 2)
	f.resolver.results["q"] = list

	s := f.registry.GetOrCreate("g1")
	type post struct {
		channel string
		embed   *discordgo.MessageEmbed
	}
	posts := make(chan post, 8)
	done := make(chan struct{})
	go func() {
		Announce(s, func(channelID string, embed *discordgo.MessageEmbed) error {
			posts <- post{channelID, embed}
			return nil
		})
		close(done)
	}()

	if _, err := (&PlayCommand{base{f.deps}}).execute(request("listener", map[string]any{"artist": "q"})); err != nil {
		t.Fatal(err)
	}
	f.connector.last().finish()

	select {
	case p := <-posts:
		if p.channel != "text-1" || !strings.Contains(p.embed.Description, "a2") {
			t.Errorf("unexpected announcement %+v", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no announcement for the automatic advance")
	}

	s.Terminate()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Announce did not return after terminate")
	}
	if len(posts) != 0 {
		t.Error("command-driven changes must not be announced")
	}
}
