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


// This binary is the main entrypoint for the xplit command line tool.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"flag"
	"github.com/GoogleCloudPlatform/xplit/constants"
	"github.com/GoogleCloudPlatform/xplit/shares"
	glog "github.com/golang/glog"
	"github.com/google/subcommands"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// The current version, displayed via the `version` subcommand.
const xplitVersion string = "0.1.0"

// splitCmd handles CLI options for the split command.
type splitCmd struct {
	configFile string
	format     string
	quiet      bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	src    shares.Source
}

func newSplitCmd() *splitCmd {
	return &splitCmd{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

func (*splitCmd) Name() string { return "split" }
func (*splitCmd) Synopsis() string {
	return "splits a secret into two shares"
}
func (*splitCmd) Usage() string {
	return fmt.Sprintf(`Usage: xplit split [--config-file=<config_file>] [--format=text|json] [--quiet] [<secret>]

Both shares are required to recover the secret; either one alone reveals
nothing about it. Hand each share to a different holder.

Examples:
  Split a secret given on the command line:
    $ xplit split "my secret message"
    Share 1: ...
    Share 2: ...

  Split the contents of a file read from stdin:
    $ xplit split - < secret.bin

  Print the shares as JSON:
    $ xplit split --format=json "my secret message"

Defaults are read from %s if it exists.

Flags:
`, defaultConfigPath())
	// The flags are automatically printed after the returned text.
}
func (s *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.configFile, "config-file", "", "Path to an xplit YAML config file. Optional.")
	f.StringVar(&s.format, "format", "", "Output format, \"text\" or \"json\". Overrides the config file.")
	f.BoolVar(&s.quiet, "quiet", false, "Suppress the split ID.")
}

func (s *splitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(s.configFile)
	if err != nil {
		glog.Errorf("Failed to load config: %v", err)
		return subcommands.ExitFailure
	}
	if s.format != "" {
		cfg.Format = s.format
	}
	if err := cfg.validate(); err != nil {
		glog.Errorf("Invalid flags: %v", err)
		return subcommands.ExitUsageError
	}

	if f.NArg() > 1 {
		glog.Errorf("Too many arguments (expected at most one secret)")
		return subcommands.ExitUsageError
	}

	var secret []byte
	if f.NArg() == 1 && f.Arg(0) != "-" {
		secret = []byte(f.Arg(0))
	} else {
		// Read the secret from stdin.
		secret, err = io.ReadAll(s.in)
		if err != nil {
			glog.Errorf("Failed to read secret from stdin: %v", err.Error())
			return subcommands.ExitFailure
		}
	}

	res, err := shares.NewSplitter(s.src).Split(secret)
	if err != nil {
		glog.Errorf("Failed to split secret: %v", err)
		return subcommands.ExitFailure
	}

	switch cfg.Format {
	case formatJSON:
		fields := map[string]any{
			constants.FieldShare1: res.Share1,
			constants.FieldShare2: res.Share2,
		}
		if !s.quiet {
			fields[constants.FieldID] = res.ID
		}
		st, err := structpb.NewStruct(fields)
		if err != nil {
			glog.Errorf("Failed to build JSON output: %v", err)
			return subcommands.ExitFailure
		}
		marshaled, err := protojson.Marshal(st)
		if err != nil {
			glog.Errorf("Failed to marshal JSON output: %v", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(s.out, "%s\n", marshaled)
	default:
		fmt.Fprintf(s.out, "Share 1: %s\n", res.Share1)
		fmt.Fprintf(s.out, "Share 2: %s\n", res.Share2)
		if !s.quiet {
			fmt.Fprintln(s.errOut, "Split ID:", res.ID)
		}
	}

	return subcommands.ExitSuccess
}

// recoverCmd handles CLI options for the recover command.
type recoverCmd struct {
	configFile string
	binary     string
	outPath    string

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newRecoverCmd() *recoverCmd {
	return &recoverCmd{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

func (*recoverCmd) Name() string { return "recover" }
func (*recoverCmd) Synopsis() string {
	return "recovers a secret from its two shares"
}
func (*recoverCmd) Usage() string {
	return `Usage: xplit recover [--config-file=<config_file>] [--binary=hex|raw] [--out=<file>] <share1> <share2>

The shares may be given in either order. A share of "-" is read as one line
from stdin. Surrounding whitespace is ignored; whitespace inside a share is
an error.

Examples:
  Recover a secret:
    $ xplit recover AAAAAAAAAA1... AAAAAAAAAA1...
    my secret message

  Read both shares from stdin, one per line:
    $ printf '%s\n%s\n' "$SHARE1" "$SHARE2" | xplit recover - -

  Write the exact recovered bytes to a file:
    $ xplit recover --out=secret.bin "$SHARE1" "$SHARE2"

Secrets that are not valid UTF-8 are printed as "Binary data (hex): ..."
unless --binary=raw is given.

Flags:
`
}
func (r *recoverCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.configFile, "config-file", "", "Path to an xplit YAML config file. Optional.")
	f.StringVar(&r.binary, "binary", "", "Output for non-UTF-8 secrets, \"hex\" or \"raw\". Overrides the config file.")
	f.StringVar(&r.outPath, "out", "-", "File to write the recovered secret to, \"-\" for stdout.")
}

func (r *recoverCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(r.configFile)
	if err != nil {
		glog.Errorf("Failed to load config: %v", err)
		return subcommands.ExitFailure
	}
	if r.binary != "" {
		cfg.Binary = r.binary
	}
	if err := cfg.validate(); err != nil {
		glog.Errorf("Invalid flags: %v", err)
		return subcommands.ExitUsageError
	}

	if f.NArg() != 2 {
		glog.Errorf("Expected exactly two shares, got %d arguments", f.NArg())
		return subcommands.ExitUsageError
	}

	stdin := bufio.NewReader(r.in)
	var shareTexts [2]string
	for i := range shareTexts {
		shareTexts[i] = f.Arg(i)
		if shareTexts[i] != "-" {
			continue
		}
		line, err := stdin.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			glog.Errorf("Failed to read share %d from stdin: %v", i+1, err)
			return subcommands.ExitFailure
		}
		shareTexts[i] = line
	}

	secret, err := shares.Recover(shareTexts[0], shareTexts[1])
	if err != nil {
		glog.Errorf("Failed to recover secret: %v", err)
		return subcommands.ExitFailure
	}

	if r.outPath != "-" {
		if err := os.WriteFile(r.outPath, secret, 0600); err != nil {
			glog.Errorf("Failed to write secret to %s: %v", r.outPath, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(r.errOut, "Wrote secret to", r.outPath)
		return subcommands.ExitSuccess
	}

	switch {
	case utf8.Valid(secret):
		fmt.Fprintln(r.out, string(secret))
	case cfg.Binary == binaryRaw:
		r.out.Write(secret)
	default:
		fmt.Fprintln(r.out, "Binary data (hex):", hex.EncodeToString(secret))
	}

	return subcommands.ExitSuccess
}

// versionCmd handles CLI options for the version command.
type versionCmd struct {
	out io.Writer
}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "prints the current version" }
func (*versionCmd) Usage() string          { return "Usage: xplit version" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (v *versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(v.out, "xplit version %s\n", xplitVersion)
	return subcommands.ExitSuccess
}

func main() {
	flag.Parse()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(newSplitCmd(), "")
	subcommands.Register(newRecoverCmd(), "")
	subcommands.Register(&versionCmd{out: os.Stdout}, "")

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
