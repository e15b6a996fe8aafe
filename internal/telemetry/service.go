// Package telemetry exposes the range event feed and snapshots over gRPC.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"shootingrange/rangesim/internal/events"
	"shootingrange/rangesim/internal/logging"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "rangesim.telemetry.v1.RangeTelemetry"

	defaultStreamBuffer = 64
	maxStreamBuffer     = 4096
)

// EventSource is the durable event feed consumed by StreamEvents.
type EventSource interface {
	Subscribe(ctx context.Context, subscriberID string, buffer int) (*events.Subscription, error)
	Forget(subscriberID string)
}

// SnapshotFunc returns the latest published arena snapshot.
type SnapshotFunc func() any

// Option customises the service.
type Option func(*Service)

// WithLogger overrides the service logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Service implements the RangeTelemetry gRPC service.
type Service struct {
	events   EventSource
	snapshot SnapshotFunc
	log      *logging.Logger
}

// NewService wires the service to the event stream and snapshot source.
func NewService(source EventSource, snapshot SnapshotFunc, opts ...Option) *Service {
	service := &Service{events: source, snapshot: snapshot, log: logging.L()}
	for _, opt := range opts {
		if opt != nil {
			opt(service)
		}
	}
	service.log = service.log.With(logging.String("component", "telemetry"))
	return service
}

// Register installs the telemetry and health services on server. The returned
// health server lets the caller flip serving status during shutdown.
func Register(server *grpc.Server, service *Service) *health.Server {
	server.RegisterService(&ServiceDesc, service)
	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return healthServer
}

// StreamEvents relays range events to one client. A request may carry a
// "subscriber" id to resume from its last acknowledged sequence and a
// "buffer" size; anonymous subscribers are forgotten when the stream ends.
func (s *Service) StreamEvents(req *structpb.Struct, stream grpc.ServerStream) error {
	if s == nil || s.events == nil {
		return status.Error(codes.FailedPrecondition, "event stream unavailable")
	}
	ctx := stream.Context()

	//1.- Resolve the subscriber identity and buffer from the request.
	fields := req.GetFields()
	subscriberID := fields["subscriber"].GetStringValue()
	durable := subscriberID != ""
	if !durable {
		subscriberID = "grpc-" + uuid.NewString()
	}
	buffer := int(fields["buffer"].GetNumberValue())
	if buffer <= 0 {
		buffer = defaultStreamBuffer
	}
	buffer = min(buffer, maxStreamBuffer)

	sub, err := s.events.Subscribe(ctx, subscriberID, buffer)
	if err != nil {
		return status.Errorf(codes.Internal, "subscribe events: %v", err)
	}
	defer func() {
		sub.Close()
		if !durable {
			s.events.Forget(subscriberID)
		}
	}()
	logger := s.log.With(logging.String("subscriber", subscriberID))
	logger.Info("telemetry stream opened", logging.Bool("durable", durable))

	for {
		select {
		case <-ctx.Done():
			logger.Info("telemetry stream closed")
			if errors.Is(ctx.Err(), context.Canceled) {
				return status.Error(codes.Canceled, "stream cancelled")
			}
			return status.Error(codes.DeadlineExceeded, "stream deadline exceeded")
		case envelope, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					continue
				}
				//2.- A newer stream for the same subscriber took over the feed.
				return status.Error(codes.Aborted, "subscription replaced")
			}
			frame, err := envelope.Struct()
			if err != nil {
				return status.Errorf(codes.Internal, "encode event: %v", err)
			}
			if err := stream.SendMsg(frame); err != nil {
				return err
			}
			//3.- Acknowledge only after the frame reached the transport.
			if err := sub.Ack(envelope.Sequence); err != nil {
				logger.Warn("ack failed", logging.Uint64("seq", envelope.Sequence), logging.Error(err))
			}
		}
	}
}

// GetSnapshot returns the latest arena snapshot as a Struct.
func (s *Service) GetSnapshot(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if s == nil || s.snapshot == nil {
		return nil, status.Error(codes.FailedPrecondition, "snapshot unavailable")
	}
	snapshot := s.snapshot()
	if snapshot == nil {
		return nil, status.Error(codes.Unavailable, "no snapshot published yet")
	}
	out, err := toStruct(snapshot)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode snapshot: %v", err)
	}
	return out, nil
}

// toStruct goes through JSON so snapshot tags decide the field names.
func toStruct(value any) (*structpb.Struct, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("snapshot is not an object: %w", err)
	}
	return structpb.NewStruct(fields)
}

// RangeTelemetryServer is the handler set ServiceDesc dispatches to.
type RangeTelemetryServer interface {
	StreamEvents(*structpb.Struct, grpc.ServerStream) error
	GetSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ RangeTelemetryServer = (*Service)(nil)

func streamEventsHandler(srv any, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(RangeTelemetryServer).StreamEvents(req, stream)
}

func getSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(structpb.Struct)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RangeTelemetryServer).GetSnapshot(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetSnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RangeTelemetryServer).GetSnapshot(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, req, info, handler)
}

const (
	// StreamEventsMethod is the full method name of the event feed.
	StreamEventsMethod = "/" + ServiceName + "/StreamEvents"
	// GetSnapshotMethod is the full method name of the snapshot query.
	GetSnapshotMethod = "/" + ServiceName + "/GetSnapshot"
)

// ServiceDesc describes RangeTelemetry without generated stubs; payloads are
// google.protobuf.Struct so any proto-aware client can decode them.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RangeTelemetryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "StreamEvents", Handler: streamEventsHandler, ServerStreams: true},
	},
	Metadata: "rangesim/telemetry/v1/telemetry.proto",
}
