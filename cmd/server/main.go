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


// Reference server binary.
package main

import (
	"fmt"
	"net"
	"net/http"

	"flag"
	"github.com/GoogleCloudPlatform/xplit/constants"
	"github.com/GoogleCloudPlatform/xplit/server"
	glog "github.com/golang/glog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

var (
	port     = flag.Int("port", constants.GrpcPort, "gRPC service port")
	httpPort = flag.Int("http-port", constants.HTTPPort, "HTTP proxy port, 0 disables the proxy")
)

func main() {
	flag.Parse()

	// Listen for connections on *port.
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		glog.Fatalf("failed to listen: %v", err)
		return
	}

	grpcServer := grpc.NewServer()

	reflection.Register(grpcServer)

	// Register a new SecretSharingService instance to handle RPCs.
	server.RegisterSecretSharingServer(grpcServer, server.NewSecretSharingService(nil))

	if *httpPort != 0 {
		proxy, err := server.NewSecretSharingHTTPService(fmt.Sprintf("localhost:%d", *port))
		if err != nil {
			glog.Fatalf("failed to create HTTP proxy: %v", err)
		}
		defer proxy.Close()

		go func() {
			glog.Infof("Starting HTTP proxy on port %v.", *httpPort)
			if err := http.ListenAndServe(fmt.Sprintf(":%d", *httpPort), http.HandlerFunc(proxy.Handler)); err != nil {
				glog.Errorf("HTTP proxy stopped: %v", err)
			}
		}()
	}

	glog.Infof("Starting SecretSharing server on port %v.", *port)
	if err := grpcServer.Serve(lis); err != nil {
		glog.Fatalf("server stopped: %v", err)
	}
}
