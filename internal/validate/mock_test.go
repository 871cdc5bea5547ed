package validate

import (
	"context"
	"net"

	"github.com/stretchr/testify/mock"
)

// mockResolver is a testify mock of the Resolver interface.
type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*net.MX), args.Error(1)
}
