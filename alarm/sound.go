package alarm

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/maruel/natural"

	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/internal/pathutil"
	"github.com/dozeapp/doze/internal/static"
)

// DefaultSound is the bundled sound used when the selected one cannot be
// resolved.
const DefaultSound = "alarm"

// soundDurationCap bounds the probed sound duration, matching platform
// notification-sound constraints.
const soundDurationCap = 30 * time.Second

// prepSoundStream returns a decoded audio stream for the specified sound.
// A name without an extension refers to a bundled sound in the data
// directory; anything else is treated as a path to a user sound file.
func prepSoundStream(sound string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		f      fs.File
		err    error
		stream beep.StreamSeekCloser
		format beep.Format
	)

	ext := filepath.Ext(sound)
	if ext == "" {
		sound += ".wav"

		f, err = os.Open(filepath.Join(config.SoundDir(), sound))
		if err != nil {
			// fall back to the embedded copy in case startup never got
			// to populate the data directory
			f, err = static.Files.Open(static.FilePath(sound))
			if err != nil {
				return nil, beep.Format{}, errSoundNotFound.Fmt(sound).Wrap(err)
			}
		}
	} else {
		f, err = os.Open(sound)
		if err != nil {
			return nil, beep.Format{}, errSoundNotFound.Fmt(sound).Wrap(err)
		}
	}

	defer func() {
		_ = f.Close()
	}()

	ext = filepath.Ext(sound)

	switch ext {
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	default:
		return nil, beep.Format{}, errInvalidSoundFormat
	}

	if err != nil {
		return nil, beep.Format{}, err
	}

	err = stream.Seek(0)
	if err != nil {
		return nil, beep.Format{}, err
	}

	return stream, format, nil
}

// probeSoundDuration computes the playable duration of a decoded stream,
// bounded to the notification-sound cap. It returns zero when probing
// fails.
func probeSoundDuration(stream beep.StreamSeekCloser, format beep.Format) time.Duration {
	if stream == nil || format.SampleRate == 0 {
		return 0
	}

	n := stream.Len()
	if n <= 0 {
		return 0
	}

	d := format.SampleRate.D(n)
	if d > soundDurationCap {
		d = soundDurationCap
	}

	return d
}

// SoundOpts lists the bundled alarm sounds in natural order.
func SoundOpts() []string {
	entries, err := os.ReadDir(config.SoundDir())
	if err != nil {
		return nil
	}

	var opts []string

	for _, v := range entries {
		if v.IsDir() {
			continue
		}

		switch filepath.Ext(v.Name()) {
		case ".ogg", ".mp3", ".flac", ".wav":
			opts = append(opts, pathutil.StripExtension(v.Name()))
		}
	}

	sort.Sort(natural.StringSlice(opts))

	return opts
}
