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


// Package constants contains shared constants between the CLI, the server and
// the conformance runner.
package constants

// GrpcPort is the default gRPC server port.
const GrpcPort = 9754

// HTTPPort is the default listening port for the HTTP to gRPC proxy.
const HTTPPort = 9755

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "xplit.v1.SecretSharing"

// SplitPath and RecoverPath are the HTTP proxy endpoints.
const (
	SplitPath   = "/v1/split"
	RecoverPath = "/v1/recover"
)

// Field names used in the structured split and recover messages.
const (
	FieldID     = "id"
	FieldShare1 = "share1"
	FieldShare2 = "share2"
)

// MaxSecretBytes bounds secrets accepted over the network. gRPC's default
// receive limit is 4 MiB and each share is base64 of the framed secret.
const MaxSecretBytes = 1 << 20
