package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

// maxLineBytes bounds a single log line when scanning.
const maxLineBytes = 1024 * 1024

// LogEntry is one parsed JSON log line.
type LogEntry struct {
	Time      time.Time
	Level     string
	Msg       string
	SessionID string
	Attrs     map[string]any
	Raw       string
	// IsValid is false when the line was not JSON; Raw is then printed as is.
	IsValid bool
}

// ViewerConfig configures filtering and formatting.
type ViewerConfig struct {
	Level     string
	Pattern   *regexp.Regexp
	SessionID string
	NoColor   bool
}

// Viewer reads, filters and prints client logs.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
}

// NewViewer creates a log viewer writing to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{config: cfg, out: out}
}

// Tail returns the matching entries among the last n lines of path.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var entries []LogEntry
	for _, line := range lines {
		if entry := ParseLine(line); v.Matches(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Follow sends matching entries appended to path until ctx is done. It wakes
// on file system events and polls as a fallback. When path is replaced by a
// rotation it continues from the start of the new file.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	pollEvery := 100 * time.Millisecond
	if fsw, err := fsnotify.NewWatcher(); err == nil {
		defer func() { _ = fsw.Close() }()
		// The directory is watched so a rotated-in file is seen too.
		if err := fsw.Add(filepath.Dir(path)); err == nil {
			events, watchErrs = fsw.Events, fsw.Errors
			pollEvery = time.Second
		}
	}
	ticker := time.NewTicker(pollEvery)
	defer ticker.Stop()

	reader := bufio.NewReader(file)
	var partial string
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case _, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			}
			continue
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Base(ev.Name) != filepath.Base(path) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if !v.drain(ctx, reader, &partial, entries) {
					return nil
				}
				next, err := os.Open(path)
				if err != nil {
					continue
				}
				_ = file.Close()
				file = next
				reader.Reset(file)
				partial = ""
			}
		}
		if !v.drain(ctx, reader, &partial, entries) {
			return nil
		}
	}
}

// drain sends every complete line readable from reader. A trailing partial
// line is kept in partial for the next call. It returns false once ctx is done.
func (v *Viewer) drain(ctx context.Context, reader *bufio.Reader, partial *string, entries chan<- LogEntry) bool {
	for {
		chunk, err := reader.ReadString('\n')
		*partial += chunk
		if err != nil {
			return true
		}
		line := strings.TrimSuffix(*partial, "\n")
		*partial = ""
		if line == "" {
			continue
		}
		if entry := ParseLine(line); v.Matches(entry) {
			select {
			case entries <- entry:
			case <-ctx.Done():
				return false
			}
		}
	}
}

// ParseLine parses a JSON log line. Non-JSON lines come back with IsValid false.
func ParseLine(line string) LogEntry {
	entry := LogEntry{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return entry
	}
	entry.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			entry.Time = parsed
		}
	}
	entry.Level, _ = data["level"].(string)
	entry.Msg, _ = data["msg"].(string)
	entry.SessionID, _ = data["session_id"].(string)

	entry.Attrs = make(map[string]any)
	for k, val := range data {
		switch k {
		case "time", "level", "msg", "session_id":
		default:
			entry.Attrs[k] = val
		}
	}
	return entry
}

// Matches reports whether entry passes the level, session and pattern filters.
func (v *Viewer) Matches(entry LogEntry) bool {
	if v.config.Level != "" && LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
		return false
	}
	if v.config.SessionID != "" && !strings.HasPrefix(entry.SessionID, v.config.SessionID) {
		return false
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}

var levelColors = map[string]lipgloss.Color{
	"DEBUG": lipgloss.Color("#6B7280"),
	"INFO":  lipgloss.Color("#10B981"),
	"WARN":  lipgloss.Color("#F59E0B"),
	"ERROR": lipgloss.Color("#EF4444"),
}

// FormatEntry renders entry as one line: time, level, short session, message
// and sorted attributes.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	level := strings.ToUpper(entry.Level)
	if len(level) > 5 {
		level = level[:5]
	}
	level = fmt.Sprintf("%-5s", level)
	if c, ok := levelColors[strings.TrimSpace(level)]; ok && !v.config.NoColor {
		level = lipgloss.NewStyle().Foreground(c).Render(level)
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format("15:04:05.000"))
	b.WriteString(" ")
	b.WriteString(level)
	b.WriteString(" ")
	if entry.SessionID != "" {
		short := entry.SessionID
		if len(short) > 8 {
			short = short[:8]
		}
		b.WriteString("[" + short + "] ")
	}
	b.WriteString(entry.Msg)

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Attrs[k])
	}
	return b.String()
}

// Print writes entries to the viewer's output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}
