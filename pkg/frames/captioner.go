package frames

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/llm"
	"github.com/dayflow/dayflow-go/pkg/trace"
)

const captionPrompt = `Describe what's happening in this screenshot. Be specific about the application and task.
Include the app name, website (if browser), and what specific action is being performed.
Answer in one clear, detailed sentence without starting with "User is" or "The user".

Good examples:
- "Writing a project status email in Gmail with spreadsheet attachment open in preview"
- "Coding a React component in VS Code with terminal showing npm errors at bottom"
- "Browsing r/programming on Reddit in Chrome while Slack notifications appear"
- "Reviewing pull request #234 on GitHub, commenting on the authentication changes"
- "In Figma designing a mobile app login screen with color palette on the right"

Bad examples (too vague):
- "Using a web browser"
- "Working on computer"
- "Looking at code"`

// Captioner describes frames one at a time with a vision model.
type Captioner struct {
	llm  llm.Provider
	sink trace.Sink
}

// NewCaptioner creates a captioner. A nil sink records nothing.
func NewCaptioner(provider llm.Provider, sink trace.Sink) *Captioner {
	if sink == nil {
		sink = trace.Nop{}
	}
	return &Captioner{llm: provider, sink: sink}
}

// Caption returns one caption per frame, in frame order.
// A frame whose call fails gets a placeholder caption naming its offset.
func (c *Captioner) Caption(ctx context.Context, frames []Frame) []activity.Caption {
	captions := make([]activity.Caption, 0, len(frames))
	for i, frame := range frames {
		log.Printf("Analyzing frame %d/%d at %s", i+1, len(frames), activity.FormatTimestamp(frame.Offset))

		text, err := llm.Infer(ctx, c.llm, captionPrompt, []string{frame.Image}, false)
		text = strings.TrimSpace(text)
		if err != nil || text == "" {
			if err == nil {
				err = llm.ErrEmptyResponse
			}
			log.Printf("Failed to get frame description: %v", err)
			text = fmt.Sprintf("[Error analyzing frame at %s]", activity.FormatTimestamp(frame.Offset))
		} else {
			c.sink.Record(ctx, fmt.Sprintf("frame_%04d_desc.txt", frame.Number), text)
		}

		captions = append(captions, activity.Caption{Offset: frame.Offset, Text: text})
	}
	return captions
}
