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


// Binary to run against a server to validate protocol conformance.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"flag"
	"github.com/GoogleCloudPlatform/xplit/constants"
	"github.com/GoogleCloudPlatform/xplit/server"
	"github.com/GoogleCloudPlatform/xplit/shares"
	"github.com/alecthomas/colour"
	glog "github.com/golang/glog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	addr    = flag.String("addr", fmt.Sprintf("localhost:%d", constants.GrpcPort), "Address of the SecretSharing gRPC server")
	timeout = flag.Duration("timeout", 10*time.Second, "Deadline for the whole run")
)

type conformanceTest struct {
	testName string
	run      func(ctx context.Context, c *server.Client) error
}

// roundTrip splits secret on the server and checks that recovering the shares
// in both orders returns it unchanged.
func roundTrip(ctx context.Context, c *server.Client, secret []byte) (*shares.SplitResult, error) {
	res, err := c.Split(ctx, secret)
	if err != nil {
		return nil, fmt.Errorf("split failed: %v", err)
	}

	for _, pair := range [][2]string{{res.Share1, res.Share2}, {res.Share2, res.Share1}} {
		got, err := c.Recover(ctx, pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("recover failed: %v", err)
		}
		if !bytes.Equal(got, secret) {
			return nil, fmt.Errorf("recovered %x, want %x", got, secret)
		}
	}

	return res, nil
}

// expectKind recovers share1 and share2 and checks the failure kind.
func expectKind(ctx context.Context, c *server.Client, share1, share2 string, kinds ...shares.Kind) error {
	got, err := c.Recover(ctx, share1, share2)
	if err == nil {
		return fmt.Errorf("recover succeeded with %x, want an error", got)
	}
	for _, k := range kinds {
		if shares.IsKind(err, k) {
			return nil
		}
	}
	return fmt.Errorf("recover failed with %v, want one of %v", err, kinds)
}

func flipPayloadBit(share string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(share)
	if err != nil {
		return "", err
	}
	if len(raw) < 13 {
		return "", fmt.Errorf("share has no payload")
	}
	// The first payload byte follows the 8-byte length header.
	raw[8] ^= 0x01
	return base64.StdEncoding.EncodeToString(raw), nil
}

var testCases = []conformanceTest{
	{
		testName: "Empty secret round-trips",
		run: func(ctx context.Context, c *server.Client) error {
			_, err := roundTrip(ctx, c, []byte{})
			return err
		},
	},
	{
		testName: "Text secret round-trips and rejects an empty share",
		run: func(ctx context.Context, c *server.Client) error {
			res, err := roundTrip(ctx, c, []byte("Hello, World!"))
			if err != nil {
				return err
			}
			if err := expectKind(ctx, c, "", res.Share2, shares.KindDecoding, shares.KindFraming); err != nil {
				return err
			}
			return expectKind(ctx, c, res.Share1, "", shares.KindDecoding, shares.KindFraming)
		},
	},
	{
		testName: "Splitting twice yields different shares",
		run: func(ctx context.Context, c *server.Client) error {
			a, err := roundTrip(ctx, c, []byte("Hello, World!"))
			if err != nil {
				return err
			}
			b, err := roundTrip(ctx, c, []byte("Hello, World!"))
			if err != nil {
				return err
			}
			if a.Share1 == b.Share1 || a.Share2 == b.Share2 {
				return fmt.Errorf("a share was repeated across splits")
			}
			return nil
		},
	},
	{
		testName: "Binary secret with null and high-bit bytes round-trips",
		run: func(ctx context.Context, c *server.Client) error {
			_, err := roundTrip(ctx, c, []byte{0x00, 0xff, 0x80, 0x00, 0x7f, 0x01, 0x00})
			return err
		},
	},
	{
		testName: "Corrupted share is rejected with an integrity error",
		run: func(ctx context.Context, c *server.Client) error {
			res, err := c.Split(ctx, []byte("Hello, World!"))
			if err != nil {
				return err
			}
			corrupted, err := flipPayloadBit(res.Share1)
			if err != nil {
				return err
			}
			return expectKind(ctx, c, corrupted, res.Share2, shares.KindIntegrity)
		},
	},
	{
		testName: "Truncated share is rejected",
		run: func(ctx context.Context, c *server.Client) error {
			res, err := c.Split(ctx, []byte("Hello, World!"))
			if err != nil {
				return err
			}
			for _, n := range []int{1, 4, len(res.Share2) / 2} {
				truncated := res.Share2[:len(res.Share2)-n]
				if err := expectKind(ctx, c, res.Share1, truncated, shares.KindDecoding, shares.KindFraming); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		testName: "Shares of different lengths are rejected",
		run: func(ctx context.Context, c *server.Client) error {
			short, err := c.Split(ctx, []byte("abc"))
			if err != nil {
				return err
			}
			long, err := c.Split(ctx, []byte("abcdef"))
			if err != nil {
				return err
			}
			return expectKind(ctx, c, short.Share1, long.Share2, shares.KindLengthMismatch)
		},
	},
}

func main() {
	flag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		glog.Fatalf("Failed to create client for %v: %v", *addr, err)
	}
	defer conn.Close()
	c := server.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Printf("Running conformance tests against %v...\n", *addr)

	failed := 0
	for _, testCase := range testCases {
		err := testCase.run(ctx, c)
		if err == nil {
			colour.Printf("^2 - %v^R\n", testCase.testName)
		} else {
			failed++
			colour.Printf("^1 - %v: %v^R\n", testCase.testName, err)
		}
	}

	if failed > 0 {
		fmt.Printf("%d of %d tests failed\n", failed, len(testCases))
		os.Exit(1)
	}
}
