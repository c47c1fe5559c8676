package tagger

import (
	"context"
	"strings"
)

// Tagger produces free-form tags for message text. It is injected into the
// message store so persistence stays independent of any one implementation.
type Tagger interface {
	Tag(ctx context.Context, text string) []string
}

// KeywordTagger extracts hashtags and engineering topic keywords without any
// external call.
type KeywordTagger struct {
	maxTags int
}

func NewKeywordTagger(maxTags int) *KeywordTagger {
	return &KeywordTagger{maxTags: maxTags}
}

// Ordered so tag output is deterministic for identical text.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"cad", []string{"cad", "solidworks", "drawing", "assembly"}},
	{"manufacturing", []string{"machining", "tolerance", "fixture", "supplier"}},
	{"firmware", []string{"firmware", "bootloader", "flash", "embedded"}},
	{"controls", []string{"controls", "pid", "canbus", "telemetry"}},
	{"battery", []string{"battery", "cell", "pack", "bms"}},
	{"thermal", []string{"thermal", "cooling", "heat", "radiator"}},
	{"testing", []string{"test", "validation", "hil", "bench"}},
	{"planning", []string{"deadline", "milestone", "schedule", "sprint"}},
}

func (t *KeywordTagger) Tag(ctx context.Context, text string) []string {
	words := strings.Fields(text)
	found := make(map[string]struct{})
	var tags []string

	add := func(tag string) {
		if _, dup := found[tag]; dup {
			return
		}
		found[tag] = struct{}{}
		tags = append(tags, tag)
	}

	// Explicit hashtags first
	for _, word := range words {
		if strings.HasPrefix(word, "#") {
			tag := strings.ToLower(strings.TrimPrefix(word, "#"))
			if tag != "" {
				add(tag)
			}
		}
	}

	lowered := strings.ToLower(text)
	for _, entry := range topicKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				add(entry.topic)
				break
			}
		}
	}

	if t.maxTags > 0 && len(tags) > t.maxTags {
		tags = tags[:t.maxTags]
	}
	return tags
}
