package api

// Service accessors group Client methods by resource. Each service is created
// once by New and shares the Client's connection options.

type AccountService struct{ r Requester }

type LabelsService struct{ r Requester }

type MailboxService struct{ r Requester }

type MessagesService struct {
	r     Requester
	batch *BatchService
}

type BatchService struct{ r Requester }

func (c *Client) Account() *AccountService {
	return c.account
}

func (c *Client) Labels() *LabelsService {
	return c.labels
}

func (c *Client) Mailbox() *MailboxService {
	return c.mailbox
}

func (c *Client) Messages() *MessagesService {
	return c.messages
}

func (c *Client) Batch() *BatchService {
	return c.batch
}
