package models

import "time"

// User represents an application user stored in Firestore
type User struct {
	ID           string    `json:"id" firestore:"-"`
	Email        string    `json:"email" firestore:"email"`
	Name         string    `json:"name" firestore:"name"`
	PasswordHash string    `json:"-" firestore:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}
