package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/glam-abaya/cartstore/internal/core/service"
)

const (
	CartServiceName = "glam.cart.v1.CartService"

	sessionMetadataKey = "x-session-id"
	userMetadataKey    = "x-user-id"
)

// CartServiceServer is the gRPC surface of the cart. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP API.
type CartServiceServer interface {
	GetCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetQuantity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Clear(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetVisibility(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type cartMethod func(CartServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: CartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCart", Handler: unaryHandler("GetCart", CartServiceServer.GetCart)},
		{MethodName: "AddItem", Handler: unaryHandler("AddItem", CartServiceServer.AddItem)},
		{MethodName: "RemoveItem", Handler: unaryHandler("RemoveItem", CartServiceServer.RemoveItem)},
		{MethodName: "SetQuantity", Handler: unaryHandler("SetQuantity", CartServiceServer.SetQuantity)},
		{MethodName: "Clear", Handler: unaryHandler("Clear", CartServiceServer.Clear)},
		{MethodName: "SetVisibility", Handler: unaryHandler("SetVisibility", CartServiceServer.SetVisibility)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "glam/cart/v1/cart.proto",
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

func unaryHandler(name string, call cartMethod) grpc.MethodHandler {
	fullMethod := "/" + CartServiceName + "/" + name
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CartServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CartServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type GRPCHandler struct {
	carts  *service.Registry
	logger *zap.Logger
}

func NewGRPCHandler(carts *service.Registry, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{carts: carts, logger: logger}
}

func (h *GRPCHandler) cart(ctx context.Context) (context.Context, *service.CartStore, error) {
	var sessionID, userID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		sessionID = first(md.Get(sessionMetadataKey))
		userID = first(md.Get(userMetadataKey))
	}
	if sessionID == "" {
		h.logger.Debug("grpc call without session, using storefront cart")
	}
	ctx = WithUser(WithSession(ctx, sessionID), userID)
	store, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		h.logger.Warn("cart unavailable", zap.String("session_id", sessionID), zap.Error(err))
		return ctx, nil, status.Error(codes.Unavailable, "cart temporarily unavailable")
	}
	return ctx, store, nil
}

func (h *GRPCHandler) GetCart(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	_, store, err := h.cart(ctx)
	if err != nil {
		return nil, err
	}
	return toStruct(NewCartView(store))
}

func (h *GRPCHandler) AddItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req AddItemRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if req.Product.ID == "" || req.Quantity < 0 {
		return nil, status.Error(codes.InvalidArgument, "missing required fields")
	}

	ctx, store, err := h.cart(ctx)
	if err != nil {
		return nil, err
	}
	store.AddItem(ctx, req.Product, req.Quantity, req.Size)
	return toStruct(NewCartView(store))
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ItemRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	ctx, store, err := h.cart(ctx)
	if err != nil {
		return nil, err
	}
	store.RemoveItem(ctx, req.ProductID, req.Size)
	return toStruct(NewCartView(store))
}

func (h *GRPCHandler) SetQuantity(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SetQuantityRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	ctx, store, err := h.cart(ctx)
	if err != nil {
		return nil, err
	}
	store.SetQuantity(ctx, req.ProductID, req.Size, req.Quantity)
	return toStruct(NewCartView(store))
}

func (h *GRPCHandler) Clear(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, store, err := h.cart(ctx)
	if err != nil {
		return nil, err
	}
	store.Clear(ctx)
	return toStruct(NewCartView(store))
}

func (h *GRPCHandler) SetVisibility(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req VisibilityRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	_, store, err := h.cart(ctx)
	if err != nil {
		return nil, err
	}
	switch req.Action {
	case "open":
		store.Open()
	case "close":
		store.Close()
	case "toggle":
		store.Toggle()
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown visibility action %q", req.Action)
	}
	return toStruct(NewCartView(store))
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func fromStruct(in *structpb.Struct, v any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// CartServiceClient calls CartService over an existing connection.
type CartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) *CartServiceClient {
	return &CartServiceClient{cc: cc}
}

// Call invokes method with req encoded as a Struct and decodes the reply into resp.
func (c *CartServiceClient) Call(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	var in *structpb.Struct
	if req == nil {
		in = &structpb.Struct{}
	} else {
		var err error
		if in, err = toStruct(req); err != nil {
			return err
		}
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+CartServiceName+"/"+method, in, out, opts...); err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return fromStruct(out, resp)
}

// OutgoingSession attaches session and user metadata for CartService calls.
func OutgoingSession(ctx context.Context, sessionID, userID string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, sessionMetadataKey, sessionID, userMetadataKey, userID)
}
