// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/config"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/metrics"
	x509certs "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/logger"
)

// Result lines printed by the command.
const (
	MsgValidated  = "SUCCESSFULLY VALIDATED"
	MsgFailed     = "FAILED TO VALIDATE"
	MsgVerifyTree = "verifyTree is"
)

var (
	// ErrValidationFailed is returned when no candidate path validates.
	ErrValidationFailed = errors.New("certificate path validation failed")

	// ErrLoad is returned when an input file cannot be read or decoded.
	ErrLoad = errors.New("failed to load certificates")
)

var (
	// OperationPerformed reports whether validation was attempted.
	OperationPerformed bool
	// OperationPerformedSuccessfully reports whether the last attempt validated.
	OperationPerformedSuccessfully bool
)

// options holds the flags of one command instance.
type options struct {
	configFile        string
	at                string
	maxDepth          int
	lenientCA         bool
	anchorConstraints bool
	subject           string
	table             bool
	jsonOutput        bool
	metricsFile       string
}

// NewCommand builds the validate-chain command. Output goes through log.
func NewCommand(version string, log logger.Logger) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   posix.GetExecutableName() + " <trustedCertFile> <cert_1> [cert_2 ... cert_n]",
		Short: "X.509 certificate path validator",
		Long: `Validate a certificate path against the trust anchors in trustedCertFile.

cert_1 is the leaf. The remaining certificates are candidate intermediates and
may be given in any order. A file holding a PEM or PKCS7 bundle contributes
every certificate in it, in order. On failure the verify tree lists every
branch the search tried and why it was rejected.`,
		Version:       version,
		Args:          usageArgs(cobra.MinimumNArgs(2)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), log, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to a JSON or YAML configuration file (default: $"+config.EnvConfigFile+")")
	flags.StringVarP(&opts.at, "time", "t", "", "validation time in RFC 3339 format (default: now)")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "maximum number of certificates in a path, anchor included")
	flags.BoolVar(&opts.lenientCA, "lenient-ca", false, "accept intermediates without a basicConstraints extension")
	flags.BoolVar(&opts.anchorConstraints, "anchor-constraints", false, "apply basic constraints to the trust anchor")
	flags.StringVarP(&opts.subject, "subject", "s", "", "require the leaf subject to match this DN or common name")
	flags.BoolVar(&opts.table, "table", false, "print the validated path as a markdown table")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print the validated path and verify tree as JSON")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics for this run to a textfile")
	cmd.MarkFlagsMutuallyExclusive("table", "json")

	return cmd
}

// Execute runs the root command with os.Args, handling any errors that occur during execution.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	cmd := NewCommand(version, log)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrValidationFailed) && !errors.Is(err, ErrLoad) {
			log.Printf("Error: %v", err)
		}
		return err
	}
	return nil
}

// run loads the inputs, validates the path and prints the outcome.
func run(ctx context.Context, log logger.Logger, opts *options, args []string) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	chainOpts, err := opts.apply(cfg)
	if err != nil {
		return err
	}

	rec := metrics.New()
	defer func() {
		if opts.metricsFile == "" {
			return
		}
		if err := prometheus.WriteToTextfile(opts.metricsFile, rec.Registry()); err != nil {
			log.Printf("Error writing metrics: %v", err)
		}
	}()

	trusted, certs, err := load(log, args)
	if err != nil {
		rec.ObserveLoadError(err)
		return err
	}

	anchors, err := x509chain.NewAnchorSet(trusted...)
	if err != nil {
		rec.ObserveLoadError(err)
		return fmt.Errorf("%w: %s: %w", ErrLoad, args[0], err)
	}
	params, err := x509chain.NewProcessingParams(anchors, chainOpts...)
	if err != nil {
		return err
	}

	OperationPerformed = true
	chain := x509chain.New(certs[0], certs[1:], params)

	start := time.Now()
	err = chain.Validate(ctx)
	rec.Observe(chain.Result(), chain.Tree(), err, time.Since(start))

	if opts.jsonOutput {
		data, jerr := chain.ToVisualizationJSON()
		if jerr != nil {
			return jerr
		}
		log.Printf("%s", data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		OperationPerformedSuccessfully = true
		return nil
	}

	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		log.Println(MsgFailed)
		log.Printf("%v", err)
		log.Println(MsgVerifyTree)
		log.Printf("%s", chain.Tree().Render())
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	log.Println(MsgValidated)
	if opts.table {
		log.Printf("%s", chain.RenderTable())
	} else {
		log.Printf("%s", chain.RenderASCIITree())
	}
	OperationPerformedSuccessfully = true
	return nil
}

// apply merges flags over the configuration. Flags win when set.
func (o *options) apply(cfg *config.Config) ([]x509chain.Option, error) {
	if o.maxDepth > 0 {
		cfg.Validation.MaxDepth = o.maxDepth
	}
	if o.lenientCA {
		cfg.Validation.LenientCA = true
	}
	if o.anchorConstraints {
		cfg.Validation.EnforceAnchorConstraints = true
	}
	if o.subject != "" {
		cfg.Validation.Subject = o.subject
	}

	opts := cfg.Options()
	if o.at != "" {
		at, err := time.Parse(time.RFC3339, o.at)
		if err != nil {
			return nil, fmt.Errorf("invalid --time %q: %w", o.at, err)
		}
		opts = append(opts, x509chain.WithValidationTime(at))
	}
	return opts, nil
}

// usageArgs wraps an argument validator so that a rejected command line
// prints the usage text before the error is returned.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			cmd.Print(cmd.UsageString())
			return err
		}
		return nil
	}
}

// load decodes every input file. The first file holds the trust anchors;
// the certificates of the others are flattened in argument order, so the
// first of them is the leaf. Each failure is reported under its file name
// and none stops the others from being read.
func load(log logger.Logger, args []string) ([]*x509certs.Certificate, []*x509certs.Certificate, error) {
	codec := x509certs.New()

	var trusted, certs []*x509certs.Certificate
	var errs []error
	for i, path := range args {
		loaded, err := codec.LoadFile(path)
		if err != nil {
			log.Printf("Error loading certificate: %v", err)
			errs = append(errs, err)
			continue
		}
		if i == 0 {
			trusted = loaded
			continue
		}
		certs = append(certs, loaded...)
	}

	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoad, errors.Join(errs...))
	}
	return trusted, certs, nil
}
