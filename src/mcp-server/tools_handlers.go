// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/H0llyW00dzZ/x509-chain-validator/src/internal/metrics"
	x509chain "github.com/H0llyW00dzZ/x509-chain-validator/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/x509-chain-validator/src/logger"
)

// Output formats accepted by the tools.
const (
	formatText     = "text"
	formatTable    = "table"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

const configResourceURI = "config://current"

// Result lines shared with the validate-chain command.
const (
	msgValidated  = "SUCCESSFULLY VALIDATED"
	msgFailed     = "FAILED TO VALIDATE"
	msgVerifyTree = "verifyTree is"
)

// handleValidateCertPath builds every candidate path from the leaf to the
// given trust anchors and validates them in order.
//
// Parameters:
//   - ctx: Context for cancellation; bounded by the configured timeout
//   - request: MCP tool call request with trusted_certs, chain and options
//   - deps: Shared server dependencies
//
// Returns:
//   - The outcome with the accepted path, or the verify tree on failure
//   - An error only for protocol level failures
//
// Input problems (unreadable data, malformed certificates, bad options) are
// reported as tool errors and validation is not attempted. A failed
// validation is a regular result since the verify tree is the answer.
func handleValidateCertPath(ctx context.Context, request mcp.CallToolRequest, deps *Dependencies) (*mcp.CallToolResult, error) {
	trustedInput, err := request.RequireString("trusted_certs")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trusted_certs parameter required: %v", err)), nil
	}
	chainInput, err := request.RequireString("chain")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chain parameter required: %v", err)), nil
	}

	format := request.GetString("format", formatText)
	switch format {
	case formatText, formatTable, formatJSON:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q: use 'text', 'table', or 'json'", format)), nil
	}

	cfg := *deps.Config
	if depth := request.GetInt("max_depth", 0); depth > 0 {
		cfg.Validation.MaxDepth = depth
	}
	if request.GetBool("lenient_ca", false) {
		cfg.Validation.LenientCA = true
	}
	if subject := strings.TrimSpace(request.GetString("subject", "")); subject != "" {
		cfg.Validation.Subject = subject
	}
	opts := cfg.Options()
	if at := request.GetString("validation_time", ""); at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid validation_time %q: %v", at, err)), nil
		}
		opts = append(opts, x509chain.WithValidationTime(t))
	}

	anchorCerts, err := decodeInputs(deps.Codec, "trusted_certs", trustedInput)
	if err != nil {
		deps.Recorder.ObserveLoadError(err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to load trust anchors: %v", err)), nil
	}
	chainCerts, err := decodeInputs(deps.Codec, "chain", chainInput)
	if err != nil {
		deps.Recorder.ObserveLoadError(err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to load certificate chain: %v", err)), nil
	}

	anchors, err := x509chain.NewAnchorSet(anchorCerts...)
	if err != nil {
		deps.Recorder.ObserveLoadError(err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to load trust anchors: %v", err)), nil
	}
	params, err := x509chain.NewProcessingParams(anchors, opts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	chain := x509chain.New(chainCerts[0], chainCerts[1:], params)
	start := time.Now()
	verr := chain.Validate(ctx)
	elapsed := time.Since(start)
	deps.Recorder.Observe(chain.Result(), chain.Tree(), verr, elapsed)

	if errors.Is(verr, context.Canceled) || errors.Is(verr, context.DeadlineExceeded) {
		deps.Logger.Logf(logger.LevelWarn, "validation of %q aborted after %s: %v", chainCerts[0].Label(), elapsed, verr)
		return mcp.NewToolResultError(fmt.Sprintf("validation aborted: %v", verr)), nil
	}
	if verr != nil {
		deps.Logger.Printf("validation of %q failed: %v", chainCerts[0].Label(), verr)
	} else {
		deps.Logger.Printf("validated %q with %d certificates in %s", chainCerts[0].Label(), len(chain.Result().Path), elapsed)
	}

	if format == formatJSON {
		data, err := chain.ToVisualizationJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	var b strings.Builder
	if verr != nil {
		fmt.Fprintf(&b, "%s\n%v\n\n%s\n%s", msgFailed, verr, msgVerifyTree, chain.Tree().Render())
		return mcp.NewToolResultText(b.String()), nil
	}

	b.WriteString(msgValidated)
	b.WriteString("\n\n")
	if format == formatTable {
		b.WriteString(chain.RenderTable())
	} else {
		b.WriteString(chain.RenderASCIITree())
	}
	return mcp.NewToolResultText(b.String()), nil
}

// cacheReport is the JSON form of the decode cache counters.
type cacheReport struct {
	Size   int   `json:"size"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// statsReport is the JSON body returned by get_validation_stats.
type statsReport struct {
	Metrics metrics.Stats `json:"metrics"`
	Cache   cacheReport   `json:"cache"`
}

// handleGetValidationStats reports the metrics recorded since the server started.
//
// Parameters:
//   - ctx: Context for cancellation (unused)
//   - request: MCP tool call request with an optional format
//   - deps: Shared server dependencies
//
// Returns:
//   - JSON or a markdown table of the counters
//   - An error only for protocol level failures
func handleGetValidationStats(_ context.Context, request mcp.CallToolRequest, deps *Dependencies) (*mcp.CallToolResult, error) {
	stats, err := deps.Recorder.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to gather metrics: %v", err)), nil
	}
	cm := deps.Codec.Metrics()
	report := statsReport{
		Metrics: stats,
		Cache:   cacheReport{Size: cm.Size, Hits: cm.Hits, Misses: cm.Misses},
	}

	switch format := request.GetString("format", formatJSON); format {
	case formatJSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode stats: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case formatMarkdown:
		return mcp.NewToolResultText(renderStats(report)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q: use 'json' or 'markdown'", format)), nil
	}
}

// renderStats formats report as a two column markdown table.
func renderStats(report statsReport) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Metric", "Value"})

	stats := report.Metrics
	rows := [][]string{
		{"validations", fmt.Sprintf("%.0f", stats.Total)},
	}
	for _, outcome := range []string{
		metrics.OutcomeValidated,
		metrics.OutcomeChainNotFound,
		metrics.OutcomeExpired,
		metrics.OutcomeNotYetValid,
		metrics.OutcomeSignature,
		metrics.OutcomeNotCA,
		metrics.OutcomePathLength,
		metrics.OutcomeTargetMismatch,
		metrics.OutcomeNameMismatch,
		metrics.OutcomeParseError,
		metrics.OutcomeInvalidAnchor,
		metrics.OutcomeCanceled,
		metrics.OutcomeOther,
	} {
		if v, ok := stats.Validations[outcome]; ok {
			rows = append(rows, []string{"outcome " + outcome, fmt.Sprintf("%.0f", v)})
		}
	}
	rows = append(rows,
		[]string{"rejected branches", fmt.Sprintf("%.0f", stats.RejectedBranches)},
		[]string{"validation time total", fmt.Sprintf("%.6fs", stats.DurationSum)},
		[]string{"validated paths", fmt.Sprintf("%d", stats.PathLengthCount)},
		[]string{"cache size", fmt.Sprintf("%d", report.Cache.Size)},
		[]string{"cache hits", fmt.Sprintf("%d", report.Cache.Hits)},
		[]string{"cache misses", fmt.Sprintf("%d", report.Cache.Misses)},
	)

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// handleConfigResource serves the effective configuration as JSON.
func handleConfigResource(_ context.Context, _ mcp.ReadResourceRequest, deps *Dependencies) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(deps.Config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      configResourceURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
