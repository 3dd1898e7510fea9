// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package server exposes secret splitting and recovery as a gRPC service.
//
// The service is described by a hand-written grpc.ServiceDesc whose request
// and response messages are protobuf well-known types:
//
//	Split(google.protobuf.BytesValue) returns (google.protobuf.Struct)
//	Recover(google.protobuf.Struct) returns (google.protobuf.BytesValue)
//
// The split response and recover request structs carry the string fields
// "share1" and "share2"; the split response also carries "id". Failures are
// returned as gRPC statuses with a google.rpc.ErrorInfo detail naming the
// failure kind and the share at fault.
package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/GoogleCloudPlatform/xplit/constants"
	"github.com/GoogleCloudPlatform/xplit/shares"
	glog "github.com/golang/glog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	splitMethod   = "/" + constants.ServiceName + "/Split"
	recoverMethod = "/" + constants.ServiceName + "/Recover"

	// errorDomain is the ErrorInfo domain attached to failed RPCs.
	errorDomain = "xplit.googleapis.com"
)

// reasons maps error kinds to ErrorInfo reasons.
var reasons = map[shares.Kind]string{
	shares.KindEntropy:        "ENTROPY_FAILURE",
	shares.KindLengthMismatch: "LENGTH_MISMATCH",
	shares.KindDecoding:       "DECODING_ERROR",
	shares.KindFraming:        "FRAMING_ERROR",
	shares.KindIntegrity:      "INTEGRITY_ERROR",
}

// SecretSharingServer is the server API for the SecretSharing service.
type SecretSharingServer interface {
	Split(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	Recover(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// SecretSharingService implements SecretSharingServer on top of the shares
// package.
type SecretSharingService struct {
	splitter *shares.Splitter
}

// NewSecretSharingService creates a service drawing pads from src. A nil src
// selects the default CSPRNG.
func NewSecretSharingService(src shares.Source) *SecretSharingService {
	return &SecretSharingService{splitter: shares.NewSplitter(src)}
}

// Split splits the secret carried in req.
func (s *SecretSharingService) Split(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	secret := req.GetValue()
	if len(secret) > constants.MaxSecretBytes {
		return nil, status.Errorf(codes.InvalidArgument, "secret is %d bytes, limit is %d", len(secret), constants.MaxSecretBytes)
	}

	res, err := s.splitter.Split(secret)
	if err != nil {
		glog.Errorf("Split failed: %v", err)
		return nil, toStatus(err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		constants.FieldID:     res.ID,
		constants.FieldShare1: res.Share1,
		constants.FieldShare2: res.Share2,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build response: %v", err)
	}
	glog.Infof("Split %v: %d-byte secret", res.ID, len(secret))

	return resp, nil
}

// Recover recovers the secret from the two shares carried in req.
func (s *SecretSharingService) Recover(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	share1, err := stringField(req, constants.FieldShare1)
	if err != nil {
		return nil, err
	}
	share2, err := stringField(req, constants.FieldShare2)
	if err != nil {
		return nil, err
	}

	secret, err := shares.Recover(share1, share2)
	if err != nil {
		glog.Warningf("Recover failed: %v", shares.KindOf(err))
		return nil, toStatus(err)
	}
	glog.Infof("Recovered %d-byte secret", len(secret))

	return wrapperspb.Bytes(secret), nil
}

func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "missing field %q", name)
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "field %q must be a string", name)
	}
	return sv.StringValue, nil
}

// toStatus converts a shares error into a gRPC status error with an
// ErrorInfo detail.
func toStatus(err error) error {
	var e *shares.Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, err.Error())
	}

	code := codes.Internal
	switch e.Kind {
	case shares.KindDecoding, shares.KindFraming:
		code = codes.InvalidArgument
	case shares.KindIntegrity:
		code = codes.DataLoss
	case shares.KindLengthMismatch:
		code = codes.FailedPrecondition
	}

	info := &errdetails.ErrorInfo{
		Reason:   reasons[e.Kind],
		Domain:   errorDomain,
		Metadata: map[string]string{},
	}
	if e.Share != 0 {
		info.Metadata["share"] = strconv.Itoa(e.Share)
	}
	if e.Kind == shares.KindLengthMismatch {
		info.Metadata["len1"] = strconv.Itoa(e.Len1)
		info.Metadata["len2"] = strconv.Itoa(e.Len2)
	}

	st, detailErr := status.New(code, err.Error()).WithDetails(info)
	if detailErr != nil {
		glog.Warningf("Failed to attach error details: %v", detailErr)
		return status.Error(code, err.Error())
	}
	return st.Err()
}

// FromStatus converts a status error produced by the service back into a
// *shares.Error. Errors without an ErrorInfo detail are returned unchanged.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		for kind, reason := range reasons {
			if reason != info.GetReason() {
				continue
			}
			md := info.GetMetadata()
			share, _ := strconv.Atoi(md["share"])
			len1, _ := strconv.Atoi(md["len1"])
			len2, _ := strconv.Atoi(md["len2"])
			return &shares.Error{
				Kind:  kind,
				Share: share,
				Len1:  len1,
				Len2:  len2,
				Err:   errors.New(st.Message()),
			}
		}
	}
	return err
}

// RegisterSecretSharingServer registers srv with s.
func RegisterSecretSharingServer(s grpc.ServiceRegistrar, srv SecretSharingServer) {
	s.RegisterService(&serviceDesc, srv)
}

func splitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SecretSharingServer).Split(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: splitMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SecretSharingServer).Split(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func recoverHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SecretSharingServer).Recover(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: recoverMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SecretSharingServer).Recover(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: constants.ServiceName,
	HandlerType: (*SecretSharingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Split", Handler: splitHandler},
		{MethodName: "Recover", Handler: recoverHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "xplit/v1/secret_sharing.proto",
}

// Client calls the SecretSharing service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client using cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// SplitRaw issues a Split RPC and returns the raw response.
func (c *Client) SplitRaw(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, splitMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RecoverRaw issues a Recover RPC and returns the raw response.
func (c *Client) RecoverRaw(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, recoverMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Split splits secret on the server.
func (c *Client) Split(ctx context.Context, secret []byte) (*shares.SplitResult, error) {
	resp, err := c.SplitRaw(ctx, wrapperspb.Bytes(secret))
	if err != nil {
		return nil, FromStatus(err)
	}

	fields := resp.GetFields()
	res := &shares.SplitResult{
		ID:     fields[constants.FieldID].GetStringValue(),
		Share1: fields[constants.FieldShare1].GetStringValue(),
		Share2: fields[constants.FieldShare2].GetStringValue(),
	}
	if res.Share1 == "" || res.Share2 == "" {
		return nil, fmt.Errorf("split response is missing a share")
	}
	return res, nil
}

// Recover recovers a secret on the server. Failures reported by the service
// are returned as *shares.Error.
func (c *Client) Recover(ctx context.Context, share1, share2 string) ([]byte, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		constants.FieldShare1: structpb.NewStringValue(share1),
		constants.FieldShare2: structpb.NewStringValue(share2),
	}}

	resp, err := c.RecoverRaw(ctx, req)
	if err != nil {
		return nil, FromStatus(err)
	}

	secret := resp.GetValue()
	if secret == nil {
		secret = []byte{}
	}
	return secret, nil
}
