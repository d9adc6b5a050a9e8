package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Aman-CERP/factcheck/internal/client"
	"github.com/Aman-CERP/factcheck/internal/results"
	"github.com/Aman-CERP/factcheck/internal/session"
)

// maxSuggestionKeys is the number of suggestions selectable with digit keys.
const maxSuggestionKeys = 9

// RenderOptions tunes Render.
type RenderOptions struct {
	NoColor  bool
	ShowURLs bool
	// Selected highlights the result at this index of the visible page; -1
	// highlights nothing.
	Selected int
}

// RenderPlain writes the session to cfg.Output as text.
func RenderPlain(s *session.Session, cfg Config) error {
	out := Render(s, GetStyles(cfg.NoColor), RenderOptions{
		NoColor:  cfg.NoColor,
		ShowURLs: cfg.ShowURLs,
		Selected: -1,
	})
	_, err := io.WriteString(cfg.Output, out)
	return err
}

// Render is a pure function of session state: error banner, heading, the
// visible page of results, page indicator and suggestions.
func Render(s *session.Session, st Styles, opts RenderOptions) string {
	var b strings.Builder

	if s.Status == session.StatusError && s.ErrMessage != "" {
		b.WriteString(st.Banner.Render("Error: " + s.ErrMessage))
		b.WriteString("\n\n")
	}

	if s.Query == "" {
		b.WriteString(st.Dim.Render("Enter a query to search."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(st.Header.Render(Heading(s.Mode)))
	b.WriteString(st.Label.Render(fmt.Sprintf("  %q", s.Query)))
	if s.Status == session.StatusSuccess {
		b.WriteString(st.Dim.Render(fmt.Sprintf("  %d results in %s", s.Results.Len(), formatElapsed(s.Elapsed))))
	}
	b.WriteString("\n\n")

	if s.Status == session.StatusSearching {
		b.WriteString(st.Dim.Render("Searching..."))
		b.WriteString("\n\n")
	}

	if s.Results.Empty() {
		if s.Status != session.StatusSearching {
			b.WriteString("No results found\n\n")
		}
	} else {
		visible := s.Visible()
		offset := (s.Page - 1) * s.PageSize
		for i, r := range visible {
			writeResult(&b, st, opts, offset+i+1, r, s.Mode, i == opts.Selected)
		}
		b.WriteString(st.Label.Render(fmt.Sprintf("Page %d/%d", s.Page, s.TotalPages())))
		b.WriteString("\n")
	}

	if suggestions := s.Suggestions(); len(suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(st.Label.Render("Did you mean:"))
		for i, sug := range suggestions {
			if i < maxSuggestionKeys {
				b.WriteString(fmt.Sprintf(" [%d] ", i+1))
			} else {
				b.WriteString("  ")
			}
			b.WriteString(st.Active.Render(sug))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderList renders results under title without any session state. mode
// selects the metadata line; the empty mode shows dates when present.
func RenderList(title string, rs []results.SearchResult, mode client.Mode, st Styles, opts RenderOptions) string {
	var b strings.Builder
	b.WriteString(st.Header.Render(title))
	b.WriteString(st.Dim.Render(fmt.Sprintf("  %d results", len(rs))))
	b.WriteString("\n\n")
	if len(rs) == 0 {
		b.WriteString("No results found\n")
		return b.String()
	}
	for i, r := range rs {
		writeResult(&b, st, opts, i+1, r, mode, i == opts.Selected)
	}
	return b.String()
}

// Heading returns the title shown above the results of mode.
func Heading(mode client.Mode) string {
	return mode.Title() + " Search Results"
}

func writeResult(b *strings.Builder, st Styles, opts RenderOptions, n int, r results.SearchResult, mode client.Mode, selected bool) {
	marker := "  "
	if selected {
		marker = st.Active.Render("> ")
	}

	b.WriteString(fmt.Sprintf("%s%d. %s  %s\n", marker, n, st.Title.Render(r.Title), st.Badge(r.Sentiment, opts.NoColor)))
	if meta := resultMeta(r, mode); meta != "" {
		b.WriteString("     " + st.Label.Render(meta) + "\n")
	}
	if r.Summary != "" {
		b.WriteString("     " + r.Summary + "\n")
	}
	if opts.ShowURLs && r.URL != "" {
		b.WriteString("     " + st.Link.Render(r.URL) + "\n")
	}
	b.WriteString("\n")
}

// resultMeta returns the mode's authoritative field: the date for boolean
// and generic search, the score for TF-IDF.
func resultMeta(r results.SearchResult, mode client.Mode) string {
	switch mode {
	case client.ModeBoolean, "":
		if r.Date != nil && *r.Date != "" {
			return "Date: " + *r.Date
		}
	case client.ModeTFIDF:
		if r.Score != nil {
			return fmt.Sprintf("Score: %.3f", *r.Score)
		}
	}
	return ""
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
