// Package alarm guarantees the user perceives the alarm through two
// parallel channels: direct looped audio playback while the app is
// foregrounded, and a desktop notification fallback loop while it is not.
package alarm

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/gen2brain/beeep"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/dozeapp/doze/audio"
	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/session"
)

const (
	// notifyIntervalCap is the longest allowed gap between fallback
	// notifications.
	notifyIntervalCap = 30 * time.Second

	// probeFailInterval is the conservative re-notification interval used
	// when sound-duration probing fails: more frequent, possibly
	// overlapping alerts beat risking an unnoticed gap.
	probeFailInterval = 5 * time.Second

	volumeStep = 10.0
)

// Notifier delivers fire-and-forget desktop alerts. The platform offers no
// cancel primitive, so pacing is the only defense against overlapping
// notification sounds.
type Notifier interface {
	Alert(title, msg string) error
	Beep() error
}

// DesktopNotifier delivers alerts through the desktop notification daemon.
type DesktopNotifier struct{}

func (DesktopNotifier) Alert(title, msg string) error {
	// pathToIcon will be an empty string if the file is not found
	pathToIcon, _ := xdg.SearchDataFile(
		filepath.Join(config.Dir(), "static", "icon.png"),
	)

	return beeep.Alert(title, msg, pathToIcon)
}

func (DesktopNotifier) Beep() error {
	return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
}

// Opts configures alarm delivery.
type Opts struct {
	// Sound is the selected alarm sound: a bundled sound name or a path
	// to a sound file.
	Sound string
	// Volume is the playback volume from 0 to 100.
	Volume int
	// Notify enables the desktop notification fallback channel.
	Notify bool
}

// Session is the live alarm activity between arming and acknowledgment.
type Session struct {
	StartTime     time.Time
	LastNotified  time.Time
	Cause         session.Stage
	Sound         string
	Route         audio.Route
	SoundDuration time.Duration
	audioOK       bool
}

// Alarmer owns the single in-flight alarm session. Arming while a previous
// session is live fully stops it first; there are never overlapping
// playback or notification streams.
type Alarmer struct {
	out      audio.Output
	enforcer *audio.Enforcer
	notifier Notifier
	opts     Opts

	mu         sync.Mutex
	sess       *Session
	stream     beep.StreamSeekCloser
	streamRate beep.SampleRate
	stop       chan struct{}
	foreground bool
}

// New creates an alarmer. The notifier may be nil, which disables the
// notification channel entirely.
func New(out audio.Output, enforcer *audio.Enforcer, notifier Notifier, opts Opts) *Alarmer {
	return &Alarmer{
		out:      out,
		enforcer: enforcer,
		notifier: notifier,
		opts:     opts,
		// the session begins in the foreground; the surface flips this
		// on focus loss
		foreground: true,
	}
}

// SetForeground records whether the app surface is focused. The
// notification loop only delivers while it is not.
func (a *Alarmer) SetForeground(foreground bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.foreground = foreground
}

// SetOpts replaces the delivery options for subsequent alarms.
func (a *Alarmer) SetOpts(opts Opts) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.opts = opts
}

// SetRoutePreference forwards the desired output route to the enforcer,
// which re-asserts it immediately.
func (a *Alarmer) SetRoutePreference(preferSpeaker bool) {
	a.enforcer.SetPreference(preferSpeaker)
}

// Session returns a copy of the live alarm session, or nil when no alarm is
// armed.
func (a *Alarmer) Session() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sess == nil {
		return nil
	}

	sess := *a.sess

	return &sess
}

// Arm begins sustained alarm delivery for the completed stage. Playback
// failure never prevents the notification channel from firing; only the
// loss of both channels is an error.
func (a *Alarmer) Arm(cause session.Stage) error {
	err := a.Stop()
	if err != nil {
		slog.Warn("stopping previous alarm failed", slog.Any("error", err))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	sess := &Session{
		Cause:     cause,
		Sound:     a.opts.Sound,
		StartTime: time.Now(),
		Route:     audio.RouteUnknown,
	}

	stream, format, soundErr := a.resolveSound(a.opts.Sound)
	if soundErr != nil {
		slog.Warn("alarm sound unavailable, continuing without audio",
			slog.String("sound", a.opts.Sound),
			slog.Any("error", soundErr),
		)
	}

	sess.SoundDuration = probeSoundDuration(stream, format)

	if stream != nil {
		playErr := a.startPlayback(stream, format)
		if playErr != nil {
			slog.Warn("alarm playback failed, continuing without audio",
				slog.Any("error", playErr),
			)

			_ = stream.Close()
		} else {
			a.stream = stream
			sess.audioOK = true
			sess.Route = a.out.Current()
		}
	}

	a.sess = sess
	a.stop = make(chan struct{})

	a.enforcer.SetAlarmActive(true)

	go a.notifyLoop(a.stop, notifyInterval(sess.SoundDuration), sess.SoundDuration, cause)

	if !sess.audioOK && (a.notifier == nil || !a.opts.Notify) {
		return ErrDeliveryUnavailable
	}

	return nil
}

// Stop cancels the notification loop, stops playback, and releases the
// stream. Calling it with no alarm armed is a no-op.
func (a *Alarmer) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sess == nil {
		return nil
	}

	close(a.stop)
	a.stop = nil
	a.sess = nil

	a.enforcer.SetAlarmActive(false)

	a.out.Clear()

	if a.stream != nil {
		err := a.stream.Close()
		a.stream = nil

		if err != nil {
			return err
		}
	}

	return nil
}

// HandleInterruptionEnded restores playback after a process suspension:
// the device is re-activated, the preferred route re-applied, and the
// alarm stream replayed.
func (a *Alarmer) HandleInterruptionEnded() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sess == nil || a.stream == nil {
		return
	}

	a.enforcer.HandleInterruptionEnded(a.streamRate)
}

func (a *Alarmer) resolveSound(name string) (beep.StreamSeekCloser, beep.Format, error) {
	if name != "" {
		stream, format, err := prepSoundStream(name)
		if err == nil {
			return stream, format, nil
		}

		slog.Warn("selected sound missing or corrupt, falling back to default",
			slog.String("sound", name),
			slog.Any("error", err),
		)
	}

	if name != DefaultSound {
		stream, format, err := prepSoundStream(DefaultSound)
		if err == nil {
			return stream, format, nil
		}
	}

	return nil, beep.Format{}, errSoundNotFound.Fmt(name)
}

func (a *Alarmer) startPlayback(stream beep.StreamSeekCloser, format beep.Format) error {
	err := a.out.Activate(format.SampleRate)
	if err != nil {
		return err
	}

	a.streamRate = format.SampleRate

	_ = a.enforcer.ApplyPreferredRoute()

	volume := &effects.Volume{
		Streamer: beep.Loop(-1, stream),
		Base:     2,
		Volume:   volumeLevel(a.opts.Volume),
		Silent:   a.opts.Volume == 0,
	}

	a.out.Play(volume)

	return nil
}

// notifyLoop delivers fallback alerts while the app is backgrounded. Each
// cycle also re-asserts the preferred audio route, which gives the route
// enforcer its unlimited retry while the alarm is live.
func (a *Alarmer) notifyLoop(stop chan struct{}, interval, soundDur time.Duration, cause session.Stage) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.deliverNotification(soundDur, cause)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.enforcer.Reassert()
			a.deliverNotification(soundDur, cause)
		}
	}
}

func (a *Alarmer) deliverNotification(soundDur time.Duration, cause session.Stage) {
	a.mu.Lock()

	if a.sess == nil || a.foreground || a.notifier == nil || !a.opts.Notify {
		a.mu.Unlock()
		return
	}

	// never schedule alerts closer together than one sound's playable
	// duration, or their sounds garble each other
	if !a.sess.LastNotified.IsZero() &&
		time.Since(a.sess.LastNotified) < soundDur {
		a.mu.Unlock()
		return
	}

	a.sess.LastNotified = time.Now()
	audioOK := a.sess.audioOK
	notifier := a.notifier

	a.mu.Unlock()

	title, msg := alarmMessage(cause)

	err := notifier.Alert(title, msg)
	if err != nil {
		slog.Warn("alarm notification failed", slog.Any("error", err))

		if !audioOK {
			// vibration-only delivery: the system beep is the last
			// remaining channel
			_ = notifier.Beep()
		}
	}
}

// notifyInterval computes the re-notification cadence from the probed
// sound duration.
func notifyInterval(soundDur time.Duration) time.Duration {
	if soundDur <= 0 {
		return probeFailInterval
	}

	interval := soundDur + time.Second
	if interval > notifyIntervalCap {
		interval = notifyIntervalCap
	}

	return interval
}

// volumeLevel converts a 0-100 volume percentage to the logarithmic scale
// used by the volume effect, with 100 mapping to unity gain.
func volumeLevel(percent int) float64 {
	return float64(percent-100) / volumeStep
}

func alarmMessage(cause session.Stage) (title, msg string) {
	title = "Wake up!"

	switch cause {
	case session.StageMax:
		msg = "Maximum sleep time reached"
	case session.StageNap:
		msg = "Your nap is over"
	default:
		msg = "The sleep timer has finished"
	}

	return title, msg
}
