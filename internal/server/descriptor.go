package server

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	ServiceName = "javatrace.Tracer"
	RunMethod   = "/" + ServiceName + "/Run"
	protoFile   = "javatrace/tracer.proto"
)

var (
	descOnce    sync.Once
	serviceDesc *desc.ServiceDescriptor
	descErr     error
)

// Service returns the descriptor of the Tracer service, built once from its
// file descriptor.
func Service() (*desc.ServiceDescriptor, error) {
	descOnce.Do(func() {
		fd, err := desc.CreateFileDescriptor(tracerFile())
		if err != nil {
			descErr = fmt.Errorf("building %s: %w", protoFile, err)
			return
		}
		serviceDesc = fd.FindService(ServiceName)
		if serviceDesc == nil {
			descErr = fmt.Errorf("%s: service %s not found", protoFile, ServiceName)
		}
	})
	return serviceDesc, descErr
}

func runMethod() (*desc.MethodDescriptor, error) {
	sd, err := Service()
	if err != nil {
		return nil, err
	}
	md := sd.FindMethodByName("Run")
	if md == nil {
		return nil, fmt.Errorf("%s has no Run method", ServiceName)
	}
	return md, nil
}

// tracerFile is the descriptor of
//
//	service Tracer { rpc Run(RunRequest) returns (RunResponse); }
func tracerFile() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(protoFile),
		Package: proto.String("javatrace"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("RunRequest",
				scalar("source", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				repeated(scalar("inputs", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
				scalar("max_call_depth", 3, descriptorpb.FieldDescriptorProto_TYPE_INT32),
			),
			message("Variable",
				scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("type", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("value", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
			),
			message("Step",
				scalar("line", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("line_number", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				repeated(nested("variables", 3, "Variable")),
				repeated(scalar("output", 4, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
				repeated(scalar("call_stack", 5, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
			),
			message("Failure",
				scalar("kind", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("code", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("message", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("line_number", 4, descriptorpb.FieldDescriptorProto_TYPE_INT32),
			),
			message("RunResponse",
				scalar("run_id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				repeated(nested("steps", 2, "Step")),
				scalar("inputs_consumed", 3, descriptorpb.FieldDescriptorProto_TYPE_INT32),
				nested("error", 4, "Failure"),
			),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Tracer"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("Run"),
				InputType:  proto.String(".javatrace.RunRequest"),
				OutputType: proto.String(".javatrace.RunResponse"),
			}},
		}},
	}
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func nested(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(".javatrace." + typeName)
	return f
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}
