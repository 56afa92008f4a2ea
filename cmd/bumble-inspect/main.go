// Copyright 2026 The Bumble Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bumble-foundation/bumble/lib/diag"
	"github.com/bumble-foundation/bumble/lib/pipeline"
	"github.com/bumble-foundation/bumble/lib/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		pipelinePath string
		raw          bool
		showVersion  bool
	)
	flags := pflag.NewFlagSet("bumble-inspect", pflag.ContinueOnError)
	flags.StringVar(&pipelinePath, "pipeline", "", "YAML pipeline config for unwrapping (omit for bare streams)")
	flags.BoolVar(&raw, "raw", false, "treat input as a bare stream even if --pipeline is set")
	flags.BoolVar(&showVersion, "version", false, "print version and exit")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: bumble-inspect [--pipeline CONFIG] [--raw] [FILE]\n\n")
		fmt.Fprintf(os.Stderr, "Reads a bumble stream from FILE (or stdin when omitted or \"-\"),\n")
		fmt.Fprintf(os.Stderr, "unwraps it if a pipeline config is given, and prints the decoded\n")
		fmt.Fprintf(os.Stderr, "value as CBOR diagnostic notation.\n\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if showVersion {
		fmt.Printf("bumble-inspect %s\n", version.Info())
		return 0
	}
	if flags.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "error: at most one input file\n")
		flags.Usage()
		return 2
	}

	data, err := readInput(flags.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if pipelinePath != "" && !raw {
		set, err := loadStageSet(pipelinePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}
		data, err = pipeline.Unwrap(data, set)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: unwrapping stream: %v\n", err)
			return 1
		}
	}

	notation, err := diag.Diagnose(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: decoding stream: %v\n", err)
		return 1
	}

	fmt.Println(notation)
	return 0
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}

// stageConfig describes one pipeline stage in the YAML config. Secret
// material is referenced by environment variable name, keeping keys
// out of config files.
type stageConfig struct {
	ID          string   `yaml:"id"`
	KeyEnv      string   `yaml:"key_env,omitempty"`
	Recipients  []string `yaml:"recipients,omitempty"`
	IdentityEnv string   `yaml:"identity_env,omitempty"`
}

type pipelineConfig struct {
	Stages []stageConfig `yaml:"stages"`
}

// loadStageSet reads the YAML config and builds the stage set used to
// resolve the envelope header.
func loadStageSet(path string) (*pipeline.StageSet, error) {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline config: %w", err)
	}

	var config pipelineConfig
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return nil, fmt.Errorf("parsing pipeline config %s: %w", path, err)
	}
	if len(config.Stages) == 0 {
		return nil, fmt.Errorf("pipeline config %s declares no stages", path)
	}

	set, err := pipeline.NewStageSet()
	if err != nil {
		return nil, err
	}
	for _, stage := range config.Stages {
		built, err := buildStage(stage)
		if err != nil {
			return nil, err
		}
		if err := set.Register(built); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func buildStage(config stageConfig) (pipeline.Stage, error) {
	switch config.ID {
	case "zstd":
		return pipeline.ZstdStage{}, nil
	case "lz4":
		return pipeline.LZ4Stage{}, nil
	case "sha256":
		return pipeline.SHA256Stage{}, nil
	case "blake3":
		return pipeline.Blake3Stage{}, nil
	case "base64":
		return pipeline.Base64Stage{}, nil
	case "hex":
		return pipeline.HexStage{}, nil
	case "null":
		return pipeline.NullStage{}, nil

	case "xchacha20poly1305":
		if config.KeyEnv == "" {
			return nil, fmt.Errorf("stage %q requires key_env", config.ID)
		}
		keyMaterial := os.Getenv(config.KeyEnv)
		if keyMaterial == "" {
			return nil, fmt.Errorf("stage %q: environment variable %s is empty", config.ID, config.KeyEnv)
		}
		return pipeline.NewEncryptionStage([]byte(keyMaterial))

	case "age":
		identity := ""
		if config.IdentityEnv != "" {
			identity = os.Getenv(config.IdentityEnv)
			if identity == "" {
				return nil, fmt.Errorf("stage %q: environment variable %s is empty", config.ID, config.IdentityEnv)
			}
		}
		return pipeline.NewAgeStage(config.Recipients, identity)

	default:
		return nil, fmt.Errorf("unknown stage id %q in pipeline config", config.ID)
	}
}
