package service

// EmailJobPayload is the wire shape of an email dispatch job.
type EmailJobPayload struct {
	Recipient    string            `json:"recipient" validate:"required,email"`
	Subject      string            `json:"subject" validate:"required"`
	TemplateType EmailType         `json:"templateType" validate:"required"`
	TemplateData map[string]string `json:"templateData"`
}

// InviteEmailJobPayload extends the email payload with the invite record to
// mark as sent. The invite id travels as a structured field rather than
// being parsed back out of the invite URL.
type InviteEmailJobPayload struct {
	EmailJobPayload
	InviteID string `json:"inviteId" validate:"required"`
}
