package model

import "time"

// WaitlistEntry is one early-access signup from the landing page.
type WaitlistEntry struct {
	ID        string
	Email     string
	Source    string // landing section the form was submitted from
	CreatedAt time.Time
}
