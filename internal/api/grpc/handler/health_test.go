package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dtroode/taskmanager-server/internal/mocks"
	"github.com/dtroode/taskmanager-server/internal/testutil"
)

func TestHealth_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		service    string
		pingErr    error
		ping       bool
		wantStatus healthpb.HealthCheckResponse_ServingStatus
		wantCode   codes.Code
	}{
		{name: "server serving", service: "", ping: true, wantStatus: healthpb.HealthCheckResponse_SERVING},
		{name: "named service serving", service: ServiceName, ping: true, wantStatus: healthpb.HealthCheckResponse_SERVING},
		{name: "database down", service: "", ping: true, pingErr: errors.New("connection refused"), wantStatus: healthpb.HealthCheckResponse_NOT_SERVING},
		{name: "unknown service", service: "billing", wantCode: codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := mocks.NewPinger(t)
			if tt.ping {
				db.On("Ping", mock.Anything).Return(tt.pingErr)
			}

			resp, err := NewHealth(db, testutil.MakeNoopLogger()).Check(context.Background(), &healthpb.HealthCheckRequest{Service: tt.service})

			if tt.wantCode != codes.OK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.GetStatus())
		})
	}
}
