// Package ui provides the interactive session picker.
package ui

import (
	"fmt"

	"github.com/koki-develop/go-fzf"

	"fslog/internal/model"
)

// Previewer renders the preview pane for a session.
type Previewer func(s *model.Session) string

// SelectSession presents a fuzzy finder over sessions and returns the chosen
// one, or nil when the user cancelled.
func SelectSession(sessions []*model.Session, preview Previewer) (*model.Session, error) {
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions found")
	}

	f, err := fzf.New(
		fzf.WithPrompt("Calls > "),
		fzf.WithInputPosition(fzf.InputPositionTop),
		fzf.WithLimit(1),
	)
	if err != nil {
		return nil, err
	}

	idxs, err := f.Find(
		sessions,
		func(i int) string {
			return formatSessionLine(sessions[i])
		},
		fzf.WithPreviewWindow(func(i, w, h int) string {
			return previewAt(sessions, preview, i)
		}),
	)
	if err != nil {
		return nil, err
	}
	if len(idxs) == 0 {
		return nil, nil // cancelled
	}
	return sessions[idxs[0]], nil
}

func previewAt(sessions []*model.Session, preview Previewer, i int) string {
	if i < 0 || i >= len(sessions) || preview == nil {
		return ""
	}
	return preview(sessions[i])
}

// formatSessionLine is the searchable text of one entry.
func formatSessionLine(s *model.Session) string {
	number := s.CallNumber
	if number == "" {
		number = "-"
	}
	conclusion := string(s.Result.Conclusion)
	if conclusion == "" {
		conclusion = "-"
	}
	return fmt.Sprintf("%s  %-36s  %-12s  %-7s  %s",
		s.CallTime().Format("01/02 15:04:05"), s.ID, number, conclusion, s.Result.Note)
}
