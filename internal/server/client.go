package server

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a remote Tracer service.
type Client struct {
	conn   *grpc.ClientConn
	owned  bool
	method *desc.MethodDescriptor
}

// Dial connects to addr without transport security.
func Dial(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	c, err := NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.owned = true
	return c, nil
}

// NewClient uses an existing connection; Close leaves it open.
func NewClient(conn *grpc.ClientConn) (*Client, error) {
	md, err := runMethod()
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, method: md}, nil
}

func (c *Client) Run(ctx context.Context, req *RunRequest) (*RunResponse, error) {
	in, err := requestToMessage(req, c.method.GetInputType())
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	out := dynamic.NewMessage(c.method.GetOutputType())
	if err := c.conn.Invoke(ctx, RunMethod, in, out); err != nil {
		return nil, fmt.Errorf("RPC failed: %w", err)
	}
	return messageToResponse(out), nil
}

func (c *Client) Close() error {
	if c.owned {
		return c.conn.Close()
	}
	return nil
}
