// Package mocks provides testify mocks of the blueprint interfaces.
package mocks

import (
	"github.com/dukex/blueprint/pkg/convert"
	"github.com/dukex/blueprint/pkg/platform"
	"github.com/stretchr/testify/mock"
)

// MockCodec is a mock implementation of convert.Codec interface.
type MockCodec struct {
	mock.Mock

	platform platform.Platform
}

func NewMockCodec(p platform.Platform) *MockCodec {
	return &MockCodec{platform: p}
}

func (m *MockCodec) Platform() platform.Platform {
	return m.platform
}

func (m *MockCodec) Decode(data []byte) (*convert.Graph, error) {
	args := m.Called(data)

	g, _ := args.Get(0).(*convert.Graph)

	return g, args.Error(1)
}

func (m *MockCodec) Encode(g *convert.Graph) ([]byte, error) {
	args := m.Called(g)

	data, _ := args.Get(0).([]byte)

	return data, args.Error(1)
}
