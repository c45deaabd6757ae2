package rpc

// ClientInterface is the interface that defines the implementation of all the endpoints
type ClientInterface interface {
	MMRClientInterface
}

// ClientFactoryInterface interface for the client factory
type ClientFactoryInterface interface {
	NewClient(url string) ClientInterface
}

// ClientFactory builds clients of the accumulator node
type ClientFactory struct{}

// NewClient returns a client of the node served at url
func (f *ClientFactory) NewClient(url string) ClientInterface {
	return NewClient(url)
}

// Client wraps all the available endpoints of the accumulator node
type Client struct {
	url string
}

// NewClient returns a client ready to be used
func NewClient(url string) *Client {
	return &Client{
		url: url,
	}
}
