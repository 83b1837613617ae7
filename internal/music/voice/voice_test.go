package voice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"guild-jukebox/internal/music/sources"
)

type event struct {
	kind  string
	token uint64
	err   error
}

type recorder struct {
	events chan event
}

func newRecorder() *recorder { return &recorder{events: make(chan event, 16)} }

func (r *recorder) TrackEnded(_ Transport, token uint64) {
	r.events <- event{kind: "ended", token: token}
}

func (r *recorder) TrackFailed(_ Transport, token uint64, err error) {
	r.events <- event{kind: "failed", token: token, err: err}
}

func (r *recorder) DisconnectExpired(Transport) {
	r.events <- event{kind: "expired"}
}

func (r *recorder) next(t *testing.T) event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return event{}
	}
}

func (r *recorder) none(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(wait):
	}
}

type fakeBackend struct {
	active      atomic.Int32
	maxActive   atomic.Int32
	started     chan PlayRequest
	finish      chan error
	disconnects atomic.Int32
	lastCtl     atomic.Pointer[Control]
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{started: make(chan PlayRequest, 16), finish: make(chan error)}
}

func (b *fakeBackend) Stream(ctx context.Context, req PlayRequest, ctl *Control) error {
	n := b.active.Add(1)
	defer b.active.Add(-1)
	for {
		m := b.maxActive.Load()
		if n <= m || b.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	b.lastCtl.Store(ctl)
	b.started <- req

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-b.finish:
		return err
	}
}

func (b *fakeBackend) Disconnect() error {
	b.disconnects.Add(1)
	return nil
}

func waitStarted(t *testing.T, b *fakeBackend) PlayRequest {
	t.Helper()
	select {
	case req := <-b.started:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not start")
		return PlayRequest{}
	}
}

func track(url string) *sources.TrackInfo { return &sources.TrackInfo{URL: url} }

func TestLink_ReportsTrackEndAndFailure(t *testing.T) {
	b, rec := newFakeBackend(), newRecorder()
	l := NewLink("g", "c", b, rec, time.Second)
	defer l.Close()

	l.Play(PlayRequest{Track: track("a"), Token: 1, Volume: 1})
	waitStarted(t, b)
	b.finish <- nil
	if ev := rec.next(t); ev.kind != "ended" || ev.token != 1 {
		t.Fatalf("expected ended(1), got %+v", ev)
	}

	boom := errors.New("decode failed")
	l.Play(PlayRequest{Track: track("b"), Token: 2, Volume: 1})
	waitStarted(t, b)
	b.finish <- boom
	if ev := rec.next(t); ev.kind != "failed" || ev.token != 2 || !errors.Is(ev.err, boom) {
		t.Fatalf("expected failed(2), got %+v", ev)
	}
}

func TestLink_PlaySupersedesWithoutOverlap(t *testing.T) {
	b, rec := newFakeBackend(), newRecorder()
	l := NewLink("g", "c", b, rec, time.Second)
	defer l.Close()

	l.Play(PlayRequest{Track: track("a"), Token: 1})
	waitStarted(t, b)
	l.Play(PlayRequest{Track: track("b"), Token: 2})
	if req := waitStarted(t, b); req.Token != 2 {
		t.Fatalf("expected token 2 to start, got %d", req.Token)
	}
	if b.maxActive.Load() != 1 {
		t.Errorf("streams overlapped: max active %d", b.maxActive.Load())
	}

	b.finish <- nil
	if ev := rec.next(t); ev.kind != "ended" || ev.token != 2 {
		t.Fatalf("expected only ended(2), got %+v", ev)
	}
	rec.none(t, 50*time.Millisecond)
}

func TestLink_StopIsSilent(t *testing.T) {
	b, rec := newFakeBackend(), newRecorder()
	l := NewLink("g", "c", b, rec, time.Second)
	defer l.Close()

	l.Play(PlayRequest{Track: track("a"), Token: 1})
	waitStarted(t, b)
	l.Stop()
	rec.none(t, 50*time.Millisecond)

	// redundant controls without a resource are no-ops
	l.Pause()
	l.Resume()
	l.Stop()
}

func TestLink_PauseResumeAndVolume(t *testing.T) {
	b, rec := newFakeBackend(), newRecorder()
	l := NewLink("g", "c", b, rec, time.Second)
	defer l.Close()

	l.Play(PlayRequest{Track: track("a"), Token: 1, Volume: 0.5, Paused: true})
	waitStarted(t, b)
	ctl := b.lastCtl.Load()
	if !ctl.Paused() || ctl.Gain() != 0.5 {
		t.Fatalf("unexpected control state paused=%v gain=%v", ctl.Paused(), ctl.Gain())
	}

	l.Resume()
	l.Resume()
	if ctl.Paused() {
		t.Error("expected resumed control")
	}
	l.Pause()
	if !ctl.Paused() {
		t.Error("expected paused control")
	}
	l.SetVolume(0.25)
	if ctl.Gain() != 0.25 {
		t.Errorf("expected live gain 0.25, got %v", ctl.Gain())
	}
}

func TestLink_ReconnectWithinGrace(t *testing.T) {
	b, rec := newFakeBackend(), newRecorder()
	l := NewLink("g", "c", b, rec, 100*time.Millisecond)
	defer l.Close()

	l.HandleDisconnect()
	l.HandleReconnect("c2")
	rec.none(t, 200*time.Millisecond)

	if l.ChannelID() != "c2" {
		t.Errorf("expected channel c2, got %s", l.ChannelID())
	}
	if b.disconnects.Load() != 0 {
		t.Error("connection must survive a reconnect")
	}
}

func TestLink_GraceExpiresOnce(t *testing.T) {
	b, rec := newFakeBackend(), newRecorder()
	l := NewLink("g", "c", b, rec, 50*time.Millisecond)

	l.Play(PlayRequest{Track: track("a"), Token: 1})
	waitStarted(t, b)

	l.HandleDisconnect()
	time.Sleep(20 * time.Millisecond)
	l.HandleDisconnect()
	l.HandleDisconnect()

	if ev := rec.next(t); ev.kind != "expired" {
		t.Fatalf("expected expired, got %+v", ev)
	}
	rec.none(t, 150*time.Millisecond)

	if b.disconnects.Load() != 1 {
		t.Errorf("expected one disconnect, got %d", b.disconnects.Load())
	}

	// closed links ignore further work
	l.HandleDisconnect()
	l.Play(PlayRequest{Track: track("b"), Token: 2})
	l.Close()
	rec.none(t, 100*time.Millisecond)
	if b.disconnects.Load() != 1 {
		t.Errorf("Close must be idempotent, got %d disconnects", b.disconnects.Load())
	}
}

func TestGrace_SecondDisconnectDoesNotRestart(t *testing.T) {
	var fired atomic.Int32
	g := NewGrace(80*time.Millisecond, func() { fired.Add(1) })

	start := time.Now()
	if !g.Start() {
		t.Fatal("expected first Start to open a window")
	}
	time.Sleep(40 * time.Millisecond)
	if g.Start() {
		t.Fatal("second Start must not restart the window")
	}

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fired.Load() != 1 {
		t.Fatalf("expected one expiry, got %d", fired.Load())
	}
	if elapsed := time.Since(start); elapsed > 115*time.Millisecond+500*time.Millisecond {
		t.Errorf("window looks restarted, expired after %v", elapsed)
	}
	if g.Start() {
		t.Error("an expired watchdog must not start again")
	}
}

func TestGrace_CancelAndStop(t *testing.T) {
	var fired atomic.Int32
	g := NewGrace(30*time.Millisecond, func() { fired.Add(1) })

	if g.Cancel() {
		t.Error("nothing to cancel yet")
	}
	g.Start()
	if !g.Pending() || !g.Cancel() {
		t.Fatal("expected a pending window to cancel")
	}
	time.Sleep(60 * time.Millisecond)

	// a fresh window after a cancel works normally
	g.Start()
	g.Stop()
	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 0 {
		t.Errorf("expected no expiry, got %d", fired.Load())
	}
}

func TestControl_HoldUnblocksOnResumeOrCancel(t *testing.T) {
	ctl := NewControl(true, 1)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	results := make(chan bool, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- ctl.Hold(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	ctl.SetPaused(false)
	wg.Wait()
	if !<-results {
		t.Fatal("expected Hold to return true after resume")
	}

	ctl.SetPaused(true)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- ctl.Hold(ctx)
	}()
	cancel()
	wg.Wait()
	if <-results {
		t.Fatal("expected Hold to return false after cancel")
	}
}

func TestConnectError(t *testing.T) {
	base := errors.New("rejected")
	err := error(&ConnectError{GuildID: "g", ChannelID: "c", Err: base})
	var ce *ConnectError
	if !errors.As(err, &ce) || !errors.Is(err, base) {
		t.Fatalf("unexpected error chain: %v", err)
	}
}
