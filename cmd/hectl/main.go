package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/s0l0ist/PSA/internal/config"
	"github.com/s0l0ist/PSA/pkg/he"
	"github.com/s0l0ist/PSA/pkg/he/params"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const (
	publicKeyFile      = "public.key"
	evaluationKeysFile = "evaluation.keys"
	secretKeyFile      = "secret.key"
	keysFlag           = "keys"
	secretKeyFileMode  = 0o600
	keyDirectoryMode   = 0o700
	publicKeyFileMode  = 0o644
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hectl",
	Short: "BFV context tooling for a client/server split",
	Long: `hectl derives BFV encryption parameters, generates client key material
and checks that a server accepts the evaluation keys a client produced.

Every setting can be given as a flag, as an HECTL_ environment variable
(HECTL_SECURITY_LEVEL=192) or in a config file.`,
	Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.AddFlags(rootCmd.PersistentFlags())

	checkKeysCmd.Flags().String(keysFlag, filepath.Join(".", evaluationKeysFile), "Path to a serialized evaluation key file")

	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(degreesCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(checkKeysCmd)
}

// setup loads the configuration for cmd and builds its logger.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.NewConfig(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the encryption parameters derived from the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, err := he.NewContext(cfg.ParameterSet(), he.WithLogger(logger))
		if err != nil {
			return err
		}
		p := ctx.Parameters()

		fmt.Printf("Parameters: %s\n", ctx.ParameterSet())
		fmt.Printf("  Fingerprint:   %s\n", ctx.Fingerprint())
		fmt.Printf("  Slots:         %d\n", ctx.SlotCount())
		fmt.Printf("  Plain modulus: %d\n", ctx.PlainModulus())
		fmt.Printf("  Q chain:       %v\n", p.Q())
		fmt.Printf("  P chain:       %v\n", p.P())
		fmt.Printf("  Modulus bits:  %.0f of %d allowed\n", p.LogQP(),
			params.MaxCoeffModulusBitCount(p.N(), ctx.ParameterSet().SecurityLevel))
		return nil
	},
}

var degreesCmd = &cobra.Command{
	Use:   "degrees",
	Short: "List the supported polynomial modulus degrees per security level",
	Run: func(cmd *cobra.Command, args []string) {
		for _, sec := range []params.SecurityLevel{params.TC128, params.TC192, params.TC256} {
			fmt.Printf("%s:\n", sec)
			for _, degree := range params.SupportedDegrees(sec) {
				sizes, _ := params.CoeffModulusBitSizes(degree, sec)
				fmt.Printf("  N=%-6d max %4d bits  chain %v\n", degree, params.MaxCoeffModulusBitCount(degree, sec), sizes)
			}
		}
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a client key set and write it to the output directory",
	Long: `Generate a fresh client bundle and write public.key, evaluation.keys and
secret.key to --out-dir. Only evaluation.keys is meant for the server; secret.key
is written with owner-only permissions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		degree, plainBits, securityLevel := cfg.FactoryInputs()
		client, err := he.NewClientContext(degree, plainBits, securityLevel, cfg.CompressionMode, he.WithLogger(logger))
		if err != nil {
			return err
		}

		pk, err := client.SerializePublicKey()
		if err != nil {
			return err
		}
		evk, err := client.SerializeEvaluationKeys()
		if err != nil {
			return err
		}
		sk, err := client.SerializeSecretKey()
		if err != nil {
			return err
		}

		if err = os.MkdirAll(cfg.OutDir, keyDirectoryMode); err != nil {
			return fmt.Errorf("failed to create %s: %w", cfg.OutDir, err)
		}
		files := []struct {
			name string
			data []byte
			mode os.FileMode
		}{
			{publicKeyFile, pk, publicKeyFileMode},
			{evaluationKeysFile, evk, publicKeyFileMode},
			{secretKeyFile, sk, secretKeyFileMode},
		}
		for _, f := range files {
			path := filepath.Join(cfg.OutDir, f.name)
			if err = os.WriteFile(path, f.data, f.mode); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			logger.Info("wrote key file",
				zap.String("path", path),
				zap.Int("bytes", len(f.data)),
				zap.Stringer("fingerprint", he.KeyFingerprint(f.data)),
			)
		}

		fmt.Printf("Generated keys for %s (%s compression) in %s\n",
			client.Context.ParameterSet(), client.Compression, cfg.OutDir)
		return nil
	},
}

var checkKeysCmd = &cobra.Command{
	Use:   "check-keys",
	Short: "Check that a server accepts a serialized evaluation key file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		path, _ := cmd.Flags().GetString(keysFlag)
		blob, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		degree, plainBits, securityLevel := cfg.FactoryInputs()
		server, err := he.NewServerContext(degree, plainBits, securityLevel, cfg.CompressionMode, he.WithLogger(logger))
		if err != nil {
			return err
		}
		if _, err = server.WithEvaluationKeys(blob); err != nil {
			return err
		}

		fmt.Printf("%s: accepted for %s (fingerprint %s)\n",
			path, server.Context.ParameterSet(), server.Context.Fingerprint())
		return nil
	},
}
