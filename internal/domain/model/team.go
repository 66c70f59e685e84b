package model

import "time"

// TeamRole is the viewer's relationship with a team.
type TeamRole string

const (
	TeamOwner      TeamRole = "OWNER"
	TeamAdmin      TeamRole = "ADMIN"
	TeamInstructor TeamRole = "INSTRUCTOR"
	TeamStudent    TeamRole = "STUDENT"
)

// Team is an academy the viewer belongs to.
type Team struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Acronym        string   `json:"acronym" yaml:"acronym"`
	Role           TeamRole `json:"role" yaml:"role"`
	LogoURL        string   `json:"logo_url,omitempty" yaml:"logo_url"`
	UnreadMessages int      `json:"unread_messages" yaml:"unread_messages"`
	BadgeCount     int      `json:"badge_count" yaml:"badge_count"`
	MembersCount   int      `json:"members_count" yaml:"members_count"`
	NextSession    string   `json:"next_session,omitempty" yaml:"next_session"`
}

// Author is the compact user shape embedded in posts and messages.
type Author struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// Belt is optional; empty when unknown.
	Belt string `json:"belt,omitempty" yaml:"belt"`
}

// PostType classifies feed posts.
type PostType string

const (
	PostAnnouncement PostType = "announcement"
	PostEvent        PostType = "event"
	PostRegular      PostType = "post"
)

// FeedPost is a team wall entry.
type FeedPost struct {
	ID            string    `json:"id" yaml:"id"`
	TeamID        string    `json:"team_id" yaml:"team_id"`
	Author        Author    `json:"author" yaml:"author"`
	Content       string    `json:"content" yaml:"content"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
	Likes         int       `json:"likes" yaml:"likes"`
	CommentsCount int       `json:"comments_count" yaml:"comments_count"`
	Type          PostType  `json:"type" yaml:"type"`
	Pinned        bool      `json:"pinned,omitempty" yaml:"pinned"`
}

// ChatMessage is a team chat line.
type ChatMessage struct {
	ID        string    `json:"id" yaml:"id"`
	TeamID    string    `json:"team_id" yaml:"team_id"`
	Sender    Author    `json:"sender" yaml:"sender"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
