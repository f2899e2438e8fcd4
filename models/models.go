package models

import (
	"time"
)

// Kind selects a submission variant and the collection it is stored in.
type Kind string

const (
	KindRSVP    Kind = "rsvp"
	KindTribute Kind = "tribute"
)

// Collection is the table / collection name holding submissions of this kind.
func (k Kind) Collection() string {
	switch k {
	case KindRSVP:
		return "messages"
	case KindTribute:
		return "tributes"
	}
	return ""
}

func (k Kind) Valid() bool {
	return k.Collection() != ""
}

// Kinds lists every submission kind.
var Kinds = []Kind{KindRSVP, KindTribute}

type Submission struct {
	ID           string       `json:"_id" gorm:"type:varchar(36);primarykey" bson:"_id"`
	Kind         Kind         `json:"-" gorm:"-" bson:"-"`
	Name         string       `json:"name" gorm:"size:255;not null" bson:"name"`
	Email        string       `json:"email" gorm:"size:255" bson:"email,omitempty"`
	Relationship string       `json:"relationship" gorm:"size:255" bson:"relationship,omitempty"`
	Message      string       `json:"message" gorm:"type:text" bson:"message"`
	Attachments  []Attachment `json:"attachments" gorm:"type:text;serializer:json" bson:"attachments"`
	CreatedAt    time.Time    `json:"createdAt" gorm:"not null" bson:"createdAt"`
}

// Attachment is an uploaded image or video inlined as a data URL.
type Attachment struct {
	URL  string `json:"url" bson:"url"`
	Type string `json:"type" bson:"type"`
	Name string `json:"name" bson:"name"`
	Size int64  `json:"size" bson:"size"`
}
