package server

import "time"

// API payload shapes. Model structs are copied into these with copier so the
// wire format stays stable even when storage columns move around.

type userPayload struct {
	Id             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

type postPayload struct {
	Id        string      `json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	UserID    string      `json:"userId"`
	User      userPayload `json:"user"`
	Content   string      `json:"content"`
	ImageUrl  string      `json:"imageUrl"`
	Tags      []string    `json:"tags"`
}

type feedPayload struct {
	Posts []postPayload `json:"posts"`
	// NextCursor is null once both feed streams are exhausted.
	NextCursor *string `json:"nextCursor"`
}

type friendRequestPayload struct {
	Id          string      `json:"id"`
	CreatedAt   time.Time   `json:"createdAt"`
	SenderID    string      `json:"senderId"`
	RecipientID string      `json:"recipientId"`
	Status      string      `json:"status"`
	Sender      userPayload `json:"sender"`
}

type notificationPayload struct {
	Id        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	RelatedId string    `json:"relatedId"`
	Read      bool      `json:"read"`
}

type preferencesPayload struct {
	Tags     []string `json:"tags"`
	Backfill bool     `json:"backfill"`
}

type friendStatusPayload struct {
	Status     string `json:"status"`
	RequestId  string `json:"requestId,omitempty"`
	IsOutgoing bool   `json:"isOutgoing"`
}
