// Package tts speaks words through the platform speech synthesizer.
package tts

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// engines in probe order when none is configured.
var engines = []string{"say", "espeak-ng", "espeak"}

// preferredVoices lists macOS `say` voices in preference order per
// accent. First installed one wins.
var preferredVoices = map[string][]string{
	"us": {"Samantha", "Alex", "Allison", "Ava"},
	"uk": {"Daniel", "Kate", "Serena", "Oliver"},
}

// accentTags maps the accent setting to the language tag used for
// fallback voice matching.
var accentTags = map[string]language.Tag{
	"us": language.AmericanEnglish,
	"uk": language.BritishEnglish,
}

type voice struct {
	name string
	tag  language.Tag
}

// Speaker resolves a voice once at construction and shells out per
// word. Safe for sequential use from the UI loop; playback is not
// queued, a second Speak while one is running overlaps.
type Speaker struct {
	engine string
	voice  string
	log    *zap.Logger

	// listVoices enumerates installed voices; replaceable in tests.
	listVoices func(engine string) ([]voice, error)
}

// New builds a Speaker for the given engine ("say", "espeak-ng",
// "espeak", or "" to probe PATH) and accent ("us" or "uk").
func New(engine, accent string, log *zap.Logger) (*Speaker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if engine == "" {
		for _, e := range engines {
			if _, err := exec.LookPath(e); err == nil {
				engine = e
				break
			}
		}
	}
	if engine == "" {
		return nil, fmt.Errorf("no speech engine found, install one of %s", strings.Join(engines, ", "))
	}
	s := &Speaker{engine: engine, log: log, listVoices: installedVoices}
	s.voice = s.pickVoice(accent)
	return s, nil
}

// pickVoice resolves the voice argument for the configured engine.
// espeak variants take a plain language code; `say` gets the first
// installed preferred voice, then any voice whose language matches the
// accent, then the engine default (empty).
func (s *Speaker) pickVoice(accent string) string {
	want, ok := accentTags[accent]
	if !ok {
		want = language.AmericanEnglish
	}
	if s.engine != "say" {
		if accent == "uk" {
			return "en-gb"
		}
		return "en-us"
	}
	installed, err := s.listVoices(s.engine)
	if err != nil {
		s.log.Warn("listing voices failed, using engine default", zap.Error(err))
		return ""
	}
	return chooseSayVoice(installed, preferredVoices[accent], want)
}

// chooseSayVoice picks from installed: first preference hit, else best
// language match, else "".
func chooseSayVoice(installed []voice, prefs []string, want language.Tag) string {
	byName := make(map[string]bool, len(installed))
	tags := make([]language.Tag, 0, len(installed))
	for _, v := range installed {
		byName[v.name] = true
		tags = append(tags, v.tag)
	}
	for _, p := range prefs {
		if byName[p] {
			return p
		}
	}
	if len(tags) == 0 {
		return ""
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf >= language.High {
		return installed[idx].name
	}
	return ""
}

// Speak pronounces text, blocking until playback ends or ctx is done.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	var args []string
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	args = append(args, text)
	cmd := exec.CommandContext(ctx, s.engine, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("speak %q with %s: %w", text, s.engine, err)
	}
	return nil
}

// installedVoices parses `say -v ?`. Each line is
// "Name            lang_TAG    # sample sentence".
func installedVoices(engine string) ([]voice, error) {
	out, err := exec.Command(engine, "-v", "?").Output()
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	return parseSayVoices(out), nil
}

func parseSayVoices(out []byte) []voice {
	var voices []voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// Voice names may contain spaces ("Bad News"); the last field
		// is the locale.
		raw := fields[len(fields)-1]
		tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
		if err != nil {
			continue
		}
		voices = append(voices, voice{
			name: strings.Join(fields[:len(fields)-1], " "),
			tag:  tag,
		})
	}
	return voices
}
