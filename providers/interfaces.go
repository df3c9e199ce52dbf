package providers

// EmailProvider abstracts the outbound mail transport
type EmailProvider interface {
	SendEmail(to, subject, body string, isHTML bool) error
}
