package server

import (
	"context"

	"github.com/jameshartig/sungrowmon/pkg/session"
	"github.com/jameshartig/sungrowmon/pkg/views"
	"github.com/stretchr/testify/mock"
)

type mockSession struct {
	mock.Mock
}

var _ Session = (*mockSession)(nil)

func (m *mockSession) Snapshot() session.View {
	args := m.Called()
	return args.Get(0).(session.View)
}

func (m *mockSession) State() session.State {
	args := m.Called()
	return args.Get(0).(session.State)
}

func (m *mockSession) Authenticated() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockSession) Login(ctx context.Context, form views.LoginForm) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *mockSession) Logout(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockSession) LoadPlants(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockSession) SelectPlant(ctx context.Context, psID int) error {
	args := m.Called(ctx, psID)
	return args.Error(0)
}

func (m *mockSession) Back() {
	m.Called()
}
