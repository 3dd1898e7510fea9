// Copyright 2021 Google LLC
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


package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/GoogleCloudPlatform/xplit/constants"
	glog "github.com/golang/glog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// maxBodyBytes bounds HTTP request bodies. A recover body holds two shares,
// each roughly 4/3 the size of the secret.
const maxBodyBytes = 4 * constants.MaxSecretBytes

// SecretSharingHTTPService is an HTTP-to-gRPC proxy for SecretSharingService,
// serving browser and scripting front ends. Request and response bodies are
// the protojson form of the RPC messages; failures carry the protojson form
// of the google.rpc.Status, including its ErrorInfo detail.
type SecretSharingHTTPService struct {
	client *Client
	conn   *grpc.ClientConn
}

// NewSecretSharingHTTPService connects to the gRPC server at address and
// returns a proxy for it. The caller should Close the service when finished.
func NewSecretSharingHTTPService(address string) (*SecretSharingHTTPService, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("error creating gRPC client connection: %w", err)
	}

	return &SecretSharingHTTPService{client: NewClient(conn), conn: conn}, nil
}

// NewSecretSharingHTTPServiceWithClient returns a proxy forwarding to client.
func NewSecretSharingHTTPServiceWithClient(client *Client) (*SecretSharingHTTPService, error) {
	if client == nil {
		return nil, fmt.Errorf("client must not be nil")
	}
	return &SecretSharingHTTPService{client: client}, nil
}

// Close releases the gRPC connection, if the service owns one.
func (s *SecretSharingHTTPService) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func processHTTPRequest(httpReq *http.Request, protoReq proto.Message) error {
	defer httpReq.Body.Close()
	reqBody, err := io.ReadAll(io.LimitReader(httpReq.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("unable to read HTTP request body: %w", err)
	}
	if len(reqBody) > maxBodyBytes {
		return fmt.Errorf("HTTP request body exceeds %d bytes", maxBodyBytes)
	}

	if err = protojson.Unmarshal(reqBody, protoReq); err != nil {
		return fmt.Errorf("unable to unmarshal HTTP request body: %w", err)
	}

	return nil
}

// httpStatus maps a gRPC code to the HTTP status returned by the proxy.
func httpStatus(c codes.Code) int {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.DataLoss:
		return http.StatusUnprocessableEntity
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	marshaled, mErr := protojson.Marshal(status.Convert(err).Proto())
	if mErr != nil {
		w.Write([]byte(err.Error()))
		return
	}
	w.Write(marshaled)
}

func writeResponse(w http.ResponseWriter, resp proto.Message) {
	marshaled, err := protojson.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(marshaled)
}

func (s *SecretSharingHTTPService) handleSplit(w http.ResponseWriter, r *http.Request) {
	req := &wrapperspb.BytesValue{}
	if err := processHTTPRequest(r, req); err != nil {
		writeError(w, http.StatusBadRequest, status.Error(codes.InvalidArgument, err.Error()))
		return
	}

	resp, err := s.client.SplitRaw(r.Context(), req)
	if err != nil {
		writeError(w, httpStatus(status.Code(err)), err)
		return
	}

	writeResponse(w, resp)
}

func (s *SecretSharingHTTPService) handleRecover(w http.ResponseWriter, r *http.Request) {
	req := &structpb.Struct{}
	if err := processHTTPRequest(r, req); err != nil {
		writeError(w, http.StatusBadRequest, status.Error(codes.InvalidArgument, err.Error()))
		return
	}

	resp, err := s.client.RecoverRaw(r.Context(), req)
	if err != nil {
		writeError(w, httpStatus(status.Code(err)), err)
		return
	}

	writeResponse(w, resp)
}

// Handler acts as a HandlerFunc for HTTP servers.
func (s *SecretSharingHTTPService) Handler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, status.Errorf(codes.Unimplemented, "method %s not allowed", r.Method))
		return
	}

	endpoint := r.URL.Path
	glog.V(1).Infof("HTTP %s %s", r.Method, endpoint)

	if strings.HasSuffix(endpoint, constants.SplitPath) {
		s.handleSplit(w, r)
	} else if strings.HasSuffix(endpoint, constants.RecoverPath) {
		s.handleRecover(w, r)
	} else {
		// If no match found, respond with error.
		writeError(w, http.StatusNotFound, status.Errorf(codes.NotFound, "unknown endpoint %q", endpoint))
	}
}
