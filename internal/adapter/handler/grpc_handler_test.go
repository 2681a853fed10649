package handler

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/glam-abaya/cartstore/internal/core/domain"
	"github.com/glam-abaya/cartstore/internal/core/service"
)

func newGRPCClient(t *testing.T) (*CartServiceClient, *grpc.ClientConn, *recordingEmitter) {
	t.Helper()
	registry, _, emitter := newTestRegistry(t)
	client, conn := dialCartService(t, registry)
	return client, conn, emitter
}

func dialCartService(t *testing.T, registry *service.Registry) (*CartServiceClient, *grpc.ClientConn) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCartServiceServer(srv, NewGRPCHandler(registry, zap.NewNop()))
	healthpb.RegisterHealthServer(srv, health.NewServer())
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewCartServiceClient(conn), conn
}

func TestGRPCHandler_AddAndGet(t *testing.T) {
	client, _, emitter := newGRPCClient(t)
	ctx := OutgoingSession(t.Context(), "s1", "u-7")

	req := AddItemRequest{
		Product:  domain.Product{ID: "p1", Name: "Classic Abaya"},
		Quantity: 2,
		Size:     "M",
	}
	var view CartView
	require.NoError(t, client.Call(ctx, "AddItem", req, &view))
	require.NoError(t, client.Call(ctx, "AddItem", req, &view))

	require.Len(t, view.Items, 1)
	assert.Equal(t, 4, view.Items[0].Quantity)
	assert.True(t, view.IsOpen)

	var fetched CartView
	require.NoError(t, client.Call(ctx, "GetCart", nil, &fetched))
	assert.Equal(t, 4, fetched.TotalCount)

	events := emitter.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "u-7", events[0].UserID)
}

func TestGRPCHandler_SetQuantityRemoveClear(t *testing.T) {
	client, _, _ := newGRPCClient(t)
	ctx := OutgoingSession(t.Context(), "s1", "")

	add := AddItemRequest{Product: domain.Product{ID: "p1"}, Quantity: 1}
	require.NoError(t, client.Call(ctx, "AddItem", add, nil))
	add.Size = "L"
	require.NoError(t, client.Call(ctx, "AddItem", add, nil))

	var view CartView
	require.NoError(t, client.Call(ctx, "SetQuantity", SetQuantityRequest{ProductID: "p1", Quantity: 6}, &view))
	require.Len(t, view.Items, 2)
	assert.Equal(t, 6, view.Items[0].Quantity)

	require.NoError(t, client.Call(ctx, "RemoveItem", ItemRequest{ProductID: "p1", Size: "L"}, &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, domain.NoSize, view.Items[0].Size)

	require.NoError(t, client.Call(ctx, "Clear", nil, &view))
	assert.True(t, view.IsEmpty)
}

func TestGRPCHandler_SetVisibility(t *testing.T) {
	client, _, _ := newGRPCClient(t)
	ctx := OutgoingSession(t.Context(), "s1", "")

	var view CartView
	require.NoError(t, client.Call(ctx, "SetVisibility", VisibilityRequest{Action: "toggle"}, &view))
	assert.True(t, view.IsOpen)
	require.NoError(t, client.Call(ctx, "SetVisibility", VisibilityRequest{Action: "close"}, &view))
	assert.False(t, view.IsOpen)

	err := client.Call(ctx, "SetVisibility", VisibilityRequest{Action: "spin"}, &view)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_AddItem_MissingProduct(t *testing.T) {
	client, _, emitter := newGRPCClient(t)
	ctx := OutgoingSession(t.Context(), "s1", "")

	err := client.Call(ctx, "AddItem", AddItemRequest{Quantity: 1}, nil)

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, emitter.Events())
}

func TestGRPCHandler_SessionsAreIsolated(t *testing.T) {
	client, _, _ := newGRPCClient(t)

	add := AddItemRequest{Product: domain.Product{ID: "p1"}, Quantity: 3}
	require.NoError(t, client.Call(OutgoingSession(t.Context(), "a", ""), "AddItem", add, nil))

	var view CartView
	require.NoError(t, client.Call(OutgoingSession(t.Context(), "b", ""), "GetCart", nil, &view))
	assert.True(t, view.IsEmpty)
}

func TestGRPCHandler_Health(t *testing.T) {
	_, conn, _ := newGRPCClient(t)

	resp, err := healthpb.NewHealthClient(conn).Check(t.Context(), &healthpb.HealthCheckRequest{})

	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestGRPCHandler_UnreadableSlotIsUnavailable(t *testing.T) {
	registry := service.NewRegistry(unreadableSlots{}, service.WithLogger(zap.NewNop()))
	client, _ := dialCartService(t, registry)

	err := client.Call(OutgoingSession(t.Context(), "s1", ""), "GetCart", nil, nil)

	assert.Equal(t, codes.Unavailable, status.Code(err))
}
