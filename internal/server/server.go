// Package server exposes the interpreter over gRPC as the javatrace.Tracer
// service. Messages are dynamic, built from a descriptor assembled at start.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/funvibe/javatrace/internal/config"
	"github.com/funvibe/javatrace/internal/interpreter"
	"github.com/funvibe/javatrace/internal/trace"
)

type Options struct {
	// MaxCallDepth is the ceiling a request may lower but not raise.
	MaxCallDepth int
	// MaxSteps bounds the steps of one run. Zero means the default.
	MaxSteps int
	// Timeout bounds the wall time of one run. Zero means the default.
	Timeout time.Duration
	Logger  *log.Logger
}

// Server runs an independent interpreter per request.
type Server struct {
	opts   Options
	logger *log.Logger
	method *desc.MethodDescriptor
	grpc   *grpc.Server
}

func New(opts Options) (*Server, error) {
	md, err := runMethod()
	if err != nil {
		return nil, err
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = config.DefaultMaxCallDepth
	}
	if opts.MaxCallDepth > config.MaxCallDepthLimit {
		opts.MaxCallDepth = config.MaxCallDepthLimit
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = config.DefaultMaxSteps
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	s := &Server{opts: opts, logger: logger, method: md, grpc: grpc.NewServer()}
	s.Register(s.grpc)
	return s, nil
}

// Register adds the Tracer service to gs. New already registers it on the
// server's own grpc.Server; Register is for embedding in another one.
func (s *Server) Register(gs *grpc.Server) {
	sd := s.method.GetService()
	gs.RegisterService(&grpc.ServiceDesc{
		ServiceName: sd.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: s.method.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				h := srv.(*Server)
				if interceptor == nil {
					return h.handleRun(ctx, dec)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RunMethod}
				return interceptor(ctx, nil, info, func(ctx context.Context, _ interface{}) (interface{}, error) {
					return h.handleRun(ctx, dec)
				})
			},
		}},
		Streams:  []grpc.StreamDesc{},
		Metadata: sd.GetFile().GetName(),
	}, s)
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Printf("javatrace: serving %s on %s", ServiceName, lis.Addr())
	return s.grpc.Serve(lis)
}

func (s *Server) ListenAndServe(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(lis)
}

func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

func (s *Server) handleRun(ctx context.Context, dec func(interface{}) error) (interface{}, error) {
	in := dynamic.NewMessage(s.method.GetInputType())
	if err := dec(in); err != nil {
		return nil, err
	}
	resp := s.Run(ctx, messageToRequest(in))
	return responseToMessage(resp, s.method.GetOutputType())
}

// Run executes one request. Program failures are reported in the response,
// not as RPC errors.
func (s *Server) Run(ctx context.Context, req *RunRequest) *RunResponse {
	depth := s.opts.MaxCallDepth
	if req.MaxCallDepth > 0 && req.MaxCallDepth < depth {
		depth = req.MaxCallDepth
	}
	runID := trace.NewRunID()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	in := interpreter.New(interpreter.Options{MaxCallDepth: depth, MaxSteps: s.opts.MaxSteps})
	tr, err := in.Run(ctx, req.Source, req.Inputs)
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("run did not finish within %s: %w", s.opts.Timeout, err)
	}
	resp := newRunResponse(runID, tr, err)

	if err != nil {
		s.logger.Printf("run %s: %d steps, failed: %v", runID, len(resp.Steps), err)
	} else {
		s.logger.Printf("run %s: %d steps, %d inputs consumed", runID, len(resp.Steps), resp.InputsConsumed)
	}
	return resp
}
