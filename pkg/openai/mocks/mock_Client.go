// Package mocks provides test doubles for the openai client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	openai "github.com/sells-group/leads-cli/pkg/openai"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Chat provides a mock function with given fields: ctx, req
func (_m *MockClient) Chat(ctx context.Context, req openai.ChatRequest) (*openai.ChatResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Chat")
	}

	var r0 *openai.ChatResponse
	if rf, ok := ret.Get(0).(func(context.Context, openai.ChatRequest) (*openai.ChatResponse, error)); ok {
		return rf(ctx, req)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*openai.ChatResponse)
	}
	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient and registers a
// cleanup that asserts its expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
