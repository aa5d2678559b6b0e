package models

import "time"

// MailMessage is the payload understood by the external mail integration.
type MailMessage struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// MailJob is one document of the mail collection. Writing it enqueues an email.
type MailJob struct {
	ID        string      `json:"id"`
	To        []string    `json:"to"` // at least one recipient
	Message   MailMessage `json:"message"`
	CreatedAt time.Time   `json:"createdAt"`
}
