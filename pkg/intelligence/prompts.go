package intelligence

import (
	"fmt"
	"strings"
	"time"

	"github.com/dayflow/dayflow-go/pkg/activity"
)

var categoryDescriptions = map[string]string{
	activity.CategoryWork:           "Professional tasks, coding, documentation",
	activity.CategoryResearch:       "Learning, reading articles, watching tutorials",
	activity.CategoryCommunication:  "Email, messaging, social media interactions",
	activity.CategoryEntertainment:  "Casual browsing, videos, social media consumption",
	activity.CategoryAdministrative: "Account management, billing, settings",
}

// mergePrompt asks for the captions to be grouped into 2-5 segments.
func mergePrompt(captions []activity.Caption, duration float64) string {
	lines := make([]string, 0, len(captions))
	for _, caption := range captions {
		lines = append(lines, fmt.Sprintf("[%s] %s", activity.FormatTimestamp(caption.Offset), caption.Text))
	}
	durationStr := activity.FormatTimestamp(duration)

	return fmt.Sprintf(`You have %d snapshots from a %s video showing someone's computer usage.

Here are the snapshots:
%s

CRITICAL TASK: Group these snapshots into EXACTLY 2-5 segments. DO NOT create more than 5 segments under any circumstances.

Think step by step:
1. Identify the main activities/themes across all snapshots
2. Find natural breakpoints where the user switches between major tasks
3. Group related activities together even if there are brief interruptions
4. AIM FOR 3-4 SEGMENTS if possible

STRICT RULES:
- You MUST create between 2 and 5 segments total
- Each segment should cover multiple consecutive snapshots
- Brief interruptions should be absorbed into the main activity, not split out
- Segments should tell a coherent story of what was accomplished
- All timestamps MUST be within 00:00 to %s

Return ONLY a JSON array with 2-5 segments:
[
  {
    "startTimestamp": "MM:SS",
    "endTimestamp": "MM:SS",
    "description": "Natural description covering multiple related activities"
  }
]

Example of GOOD grouping (3 segments covering 15 minutes):
[
  {"startTimestamp": "00:00", "endTimestamp": "05:30", "description": "Managed billing and payment settings, reviewing subscription costs and updating payment methods."},
  {"startTimestamp": "05:30", "endTimestamp": "10:00", "description": "Web research session browsing AI-related articles, with a brief detour to check cloud billing alerts."},
  {"startTimestamp": "10:00", "endTimestamp": "14:45", "description": "Development work in VS Code and GitHub Desktop, debugging timestamp parsing and reviewing pull requests."}
]

REMEMBER: Output EXACTLY 2-5 segments.`, len(captions), durationStr, strings.Join(lines, "\n"), durationStr)
}

// transcript renders observations as "[3:04 PM - 3:19 PM]: text" lines.
func transcript(observations []activity.Observation, loc *time.Location) []string {
	lines := make([]string, 0, len(observations))
	for _, obs := range observations {
		lines = append(lines, fmt.Sprintf("[%s - %s]: %s",
			activity.FormatClock(obs.StartTS, loc), activity.FormatClock(obs.EndTS, loc), obs.Observation))
	}
	return lines
}

func categoryList(categories []string) string {
	lines := make([]string, 0, len(categories))
	for _, category := range categories {
		if description, ok := categoryDescriptions[category]; ok {
			lines = append(lines, fmt.Sprintf("- %s: %s", category, description))
		} else {
			lines = append(lines, "- "+category)
		}
	}
	return strings.Join(lines, "\n")
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}

const cardGuidelines = `Title guidelines:
Write titles like you're texting a friend about what you did. Natural, conversational, direct.
- Be specific and clear (not creative or vague)
- Keep it short, aim for 5-10 words
- Include main activity + distraction if relevant
Good examples:
- "Edited photos in Lightroom"
- "Wrote blog post, kept checking Instagram"
- "Researched flights to Tokyo"
Bad examples:
- "Early morning digital drift" (too vague/poetic)
- "Extended Browsing Session" (too formal)

Summary guidelines:
Write brief factual summaries. First person perspective without "I".
- State what happened directly, no lead-ins
- Maximum 2-3 sentences
- Just the facts: what you did, which tools/projects, major blockers`

// cardPrompt asks for one card covering the current chunk.
func cardPrompt(lines []string, categories []string, chunk time.Duration) string {
	return fmt.Sprintf(`You are observing someone's computer activity from the last %d minutes.

Here are the observations:
%s

Create a category, title and summary following these guidelines:

Pick the MOST DOMINANT category (pick ONLY ONE):
%s

%s

Return JSON:
{
  "category": "Category name",
  "title": "Your title here",
  "summary": "Your summary here"
}`, minutes(chunk), strings.Join(lines, "\n"), categoryList(categories), cardGuidelines)
}

// contextTranscript renders the history block followed by the current chunk.
func contextTranscript(current, previous []activity.Observation, cards []activity.Card, loc *time.Location, chunk, window time.Duration) string {
	var lines []string
	if len(previous) > 0 || len(cards) > 0 {
		lines = append(lines, fmt.Sprintf("=== CONTEXT FROM LAST %d MINUTES ===", minutes(window)))
		if len(previous) > 0 {
			lines = append(lines, "\nPrevious observations:")
			lines = append(lines, transcript(previous, loc)...)
		}
		if len(cards) > 0 {
			lines = append(lines, "\nPrevious activity summaries:")
			for _, card := range cards {
				lines = append(lines, fmt.Sprintf("[%s - %s]: %s - %s", card.StartTime, card.EndTime, card.Title, card.Summary))
			}
		}
		lines = append(lines, fmt.Sprintf("\n=== CURRENT %d-MINUTE SEGMENT ===", minutes(chunk)))
	}
	lines = append(lines, transcript(current, loc)...)
	return strings.Join(lines, "\n")
}

// contextCardPrompt asks for one card covering the current segment of a
// transcript that carries a history block.
func contextCardPrompt(transcriptText string, categories []string, chunk time.Duration) string {
	return fmt.Sprintf(`You are a digital anthropologist, observing a user's activity log. Your goal is to synthesize this log into timeline cards that tell the story of their session.

%s

Your task: Create ONE activity card that summarizes the CURRENT %d-MINUTE SEGMENT.
The context helps you understand what the user was doing before, but focus your card on the current segment.

Rules:
1. Pick the MOST DOMINANT category from the activities in the CURRENT SEGMENT
2. Write a natural, conversational title (5-10 words)
3. Summarize what happened in the CURRENT SEGMENT

Categories to use (pick ONLY ONE):
%s

%s

Return EXACTLY ONE activity card as JSON:
{
  "category": "Category name",
  "title": "Natural title describing the activity",
  "summary": "Summary of the current segment"
}`, transcriptText, minutes(chunk), categoryList(categories), cardGuidelines)
}

// mergeCheckPrompt asks whether two consecutive cards are one activity.
func mergeCheckPrompt(previous, next activity.Card) string {
	return fmt.Sprintf(`Look at these two consecutive activity periods and decide if they should be combined into one card.

Previous activity (%s - %s):
Title: %s
Summary: %s

New activity (%s - %s):
Title: %s
Summary: %s

Should these be combined? ONLY combine if ALL of these are true:
- They are the SAME TYPE of activity (e.g., both coding, both watching videos)
- They are working on the SAME specific task/project
- BOTH activities are primarily focused (minimal distractions)
- There's a smooth continuation with no major interruptions

DO NOT combine if ANY of these are true:
- One is work and the other is entertainment/break
- Either activity mentions significant distractions (YouTube, social media, etc.)
- They involve different projects or different stages (e.g., coding vs testing)
- There's any mention of taking a break or switching context

Return JSON:
{
  "combine": true or false,
  "reason": "Brief explanation"
}`, previous.StartTime, previous.EndTime, previous.Title, previous.Summary,
		next.StartTime, next.EndTime, next.Title, next.Summary)
}

// fusePrompt asks for a unified title and summary spanning both cards.
func fusePrompt(previous, next activity.Card) string {
	return fmt.Sprintf(`Create a single activity card that covers both time periods.

Activity 1 (%s - %s):
Title: %s
Summary: %s

Activity 2 (%s - %s):
Title: %s
Summary: %s

Create a unified title and summary that covers the entire period from %s to %s.

Title guidelines:
- Natural, conversational (5-10 words)
- Cover the main activities across both periods
- Don't just list both titles, synthesize them

Summary guidelines:
- First person without "I"
- 2-3 sentences maximum
- Tell the complete story from start to finish

Return JSON:
{
  "title": "Your merged title",
  "summary": "Your merged summary"
}`, previous.StartTime, previous.EndTime, previous.Title, previous.Summary,
		next.StartTime, next.EndTime, next.Title, next.Summary,
		previous.StartTime, next.EndTime)
}
