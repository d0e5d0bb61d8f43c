package events

// Topics emitted by the invoicing domain. Webhook subscribers filter on
// these names.
const (
	TopicInvoiceCreated = "invoice.created"
	TopicInvoicePaid    = "invoice.paid"
	TopicInvoiceDeleted = "invoice.deleted"
)
