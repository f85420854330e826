package core

type DBQuote interface {
	ID() int
	Quote() string
	Who() string
	Org() string
	Link() string
	Approved() bool
}

type QuoteDB interface {
	DeleteQuote(q DBQuote) error
	GetAllQuotes(limit, offset int) ([]DBQuote, error)
	GetApprovedQuotes(limit int) ([]DBQuote, error)
	GetQuote(id int) (DBQuote, error)
	InsertQuote(quote, who, org, link string) (DBQuote, error)
	SetQuoteApproved(q DBQuote, approved bool) error
	UpdateQuote(q DBQuote, quote, who, org, link string) error
}
