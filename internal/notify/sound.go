package notify

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"

	"github.com/SoarinFerret/pomodoro/internal/session"
)

// runFunc starts name with args, feeding stdin when non-nil, and waits.
type runFunc func(ctx context.Context, stdin io.Reader, name string, args ...string) error

func runCommand(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Sound plays a sound file, falling back to three synthesised beeps when
// no file is configured or the player fails.
type Sound struct {
	File        string
	Command     string
	BeepCommand string
	run         runFunc
}

// NewSound plays file with command and beeps through beepCommand, which
// must accept a WAV stream on stdin.
func NewSound(file, command, beepCommand string) *Sound {
	return &Sound{File: file, Command: command, BeepCommand: beepCommand, run: runCommand}
}

func (s *Sound) Notify(ctx context.Context, _ session.Completion) error {
	var fileErr error
	if s.File != "" {
		if fileErr = s.run(ctx, nil, s.Command, s.File); fileErr == nil {
			return nil
		}
	}

	if err := s.run(ctx, bytes.NewReader(beepWAV()), s.BeepCommand, "-q", "-"); err != nil {
		return errors.Join(fileErr, fmt.Errorf("play beeps: %w", err))
	}
	return nil
}

const (
	beepRate      = 22050
	beepFrequency = 800.0
	beepLength    = 0.3
	beepSpacing   = 0.4
	beepCount     = 3
	beepGainStart = 0.3
	beepGainEnd   = 0.01
)

// beepWAV renders beepCount 800 Hz sine beeps as 16-bit mono PCM WAV. Each
// beep decays exponentially from beepGainStart to beepGainEnd.
func beepWAV() []byte {
	total := int(((beepCount-1)*beepSpacing + beepLength) * beepRate)
	samples := make([]int16, total)
	perBeep := int(beepLength * beepRate)
	decay := math.Log(beepGainEnd/beepGainStart) / float64(perBeep)

	for b := 0; b < beepCount; b++ {
		offset := int(float64(b) * beepSpacing * beepRate)
		for i := 0; i < perBeep && offset+i < total; i++ {
			gain := beepGainStart * math.Exp(decay*float64(i))
			v := gain * math.Sin(2*math.Pi*beepFrequency*float64(i)/beepRate)
			samples[offset+i] = int16(v * math.MaxInt16)
		}
	}

	var buf bytes.Buffer
	dataLen := uint32(len(samples) * 2)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, struct {
		Size          uint32
		Format        uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}{16, 1, 1, beepRate, beepRate * 2, 2, 16})
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

// Speech reads the completion message aloud through a speech command such
// as spd-say or espeak.
type Speech struct {
	Command string
	run     runFunc
}

func NewSpeech(command string) *Speech {
	return &Speech{Command: command, run: runCommand}
}

func (s *Speech) Notify(ctx context.Context, c session.Completion) error {
	return s.run(ctx, nil, s.Command, Message(c))
}
