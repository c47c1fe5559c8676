package models

import "time"

// MessageType classifies a stored message. Exactly one type applies;
// precedence is file > pin > mention > text, first match wins.
type MessageType string

const (
	TextMessage    MessageType = "text"
	FileMessage    MessageType = "file"
	PinMessage     MessageType = "pin"
	MentionMessage MessageType = "mention"
)

// ChannelKind distinguishes where a message was posted.
type ChannelKind string

const (
	PublicChannel  ChannelKind = "channel"
	PrivateChannel ChannelKind = "group"
	DirectMessage  ChannelKind = "im"
)

// FileRef describes a trackable file attached to a message.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Message is the persisted form of an inbound platform message.
// Immutable once stored except for the Pinned flag.
type Message struct {
	ID          string      `json:"id"`
	ChannelID   string      `json:"channel_id"`
	UserID      string      `json:"user_id"`
	RecipientID string      `json:"recipient_id,omitempty"`
	Text        string      `json:"text"`
	Timestamp   string      `json:"timestamp"`
	ThreadTS    string      `json:"thread_ts,omitempty"`
	Type        MessageType `json:"type"`
	Files       []FileRef   `json:"files,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Pinned      bool        `json:"is_pinned"`
	ChannelKind ChannelKind `json:"channel_type"`
	CreatedAt   time.Time   `json:"created_at"`
}
