package model

import "time"

/*

User is a platform member. Identity is externally issued (the auth provider's
subject id); this service never creates or mutates users beyond profile-edit
flows that live outside the feed core.

Id: primary key, externally issued subject id
CreatedAt: time when entity is created
FirstName/LastName/Username: display name fields
ProfilePicture: avatar url, may be empty

*/
type User struct {
	Id             string `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Username       string `gorm:"index" json:"username"`
	ProfilePicture string `json:"profilePicture"`
}
