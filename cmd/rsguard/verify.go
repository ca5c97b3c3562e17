package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesprial/rs-introspect/internal/config"
	ierrors "github.com/jamesprial/rs-introspect/internal/errors"
	"github.com/jamesprial/rs-introspect/internal/oauth"
	pkgoauth "github.com/jamesprial/rs-introspect/pkg/oauth"
)

var (
	okFmt   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failFmt = color.New(color.FgRed, color.Bold).SprintFunc()
	keyFmt  = color.New(color.FgCyan).SprintFunc()
	dimFmt  = color.New(color.Faint).SprintFunc()
)

type verifyOptions struct {
	token                string
	header               string
	query                string
	requiredScopes       []string
	requiredEntitlements []string
	output               string
	timeout              time.Duration
}

// challengeOutput is the machine readable rendering of a failed verification.
type challengeOutput struct {
	Status           int    `json:"status" yaml:"status"`
	WWWAuthenticate  string `json:"www_authenticate,omitempty" yaml:"www_authenticate,omitempty"`
	Error            string `json:"error" yaml:"error"`
	ErrorDescription string `json:"error_description" yaml:"error_description"`
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify one access token against the introspection endpoint",
		Long: `Verify one access token the way the server would and print its claims,
or the challenge the server would answer with.

The token is given with exactly one of --token, --header or --query. Giving
--header together with --query reproduces the "more than one method" error.

Exit status is 0 when the token is accepted, 1 when it is rejected and 2
when verification failed for an internal reason.

Examples:
  rsguard verify --token 2YotnFZFEjr1zCsicMWpAA
  rsguard verify --header "Bearer 2YotnFZFEjr1zCsicMWpAA" --require-scope read -o json
  INTROSPECTION_ENDPOINT=file:///srv/fixtures/ rsguard verify --query abc -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.token, "token", "", "access token, sent as an Authorization: Bearer header")
	f.StringVar(&opts.header, "header", "", "raw Authorization header value")
	f.StringVar(&opts.query, "query", "", "access_token query parameter value")
	f.StringSliceVar(&opts.requiredScopes, "require-scope", nil, "scope the token must grant (repeatable)")
	f.StringSliceVar(&opts.requiredEntitlements, "require-entitlement", nil, "entitlement the token must carry (repeatable)")
	f.StringVarP(&opts.output, "output", "o", "text", "output format: text, json, yaml")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall verification timeout")
	cmd.MarkFlagsMutuallyExclusive("token", "header")

	return cmd
}

func runVerify(ctx context.Context, root *rootOptions, opts *verifyOptions) error {
	switch opts.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q: must be text, json or yaml", opts.output)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	cfg, err := config.LoadIntrospection(root.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	verifier, oauthCfg, err := newVerifier(ctx, cfg, root.logger)
	if err != nil {
		return err
	}
	root.logger.Debug("verifying token", "endpoint", oauthCfg.IntrospectionEndpoint, "method", oauthCfg.IntrospectionMethod)

	header := opts.header
	if opts.token != "" {
		header = pkgoauth.BearerToken + " " + opts.token
	}

	claims, err := verifier.Verify(ctx, header, opts.query)
	if err == nil {
		err = checkRequirements(claims, opts)
	}
	if err != nil {
		c := ierrors.MapToHTTP(err, cfg.Guard.Realm)
		if perr := printChallenge(root.stdout, opts.output, c); perr != nil {
			return perr
		}
		if c.Status >= http.StatusInternalServerError {
			if ve, ok := ierrors.As(err); ok && ve.Err != nil {
				root.logger.Error("verification failed", "error", ve.Err)
			}
			return &exitError{code: 2}
		}
		return &exitError{code: 1}
	}

	return printClaims(root.stdout, opts.output, claims)
}

func checkRequirements(claims *oauth.Claims, opts *verifyOptions) error {
	if len(opts.requiredScopes) > 0 {
		if err := claims.RequireAllScopes(opts.requiredScopes...); err != nil {
			return err
		}
	}
	for _, e := range opts.requiredEntitlements {
		if err := claims.RequireEntitlement(e); err != nil {
			return err
		}
	}
	return nil
}

func printClaims(w io.Writer, format string, claims *oauth.Claims) error {
	switch format {
	case "json":
		return writeJSON(w, claims)
	case "yaml":
		return writeYAML(w, claims)
	}

	fmt.Fprintf(w, "%s token accepted\n", okFmt("✓"))

	// Round trip through JSON to list exactly the exposed claims.
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s %s\n", keyFmt(k+":"), formatValue(fields[k]))
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, " ")
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprint(x)
	default:
		return fmt.Sprint(x)
	}
}

func printChallenge(w io.Writer, format string, c ierrors.Challenge) error {
	out := challengeOutput{
		Status:           c.Status,
		WWWAuthenticate:  c.WWWAuthenticate,
		Error:            c.Body.Error,
		ErrorDescription: c.Body.ErrorDescription,
	}

	switch format {
	case "json":
		return writeJSON(w, out)
	case "yaml":
		return writeYAML(w, out)
	}

	fmt.Fprintf(w, "%s %d %s: %s\n", failFmt("✗"), out.Status, out.Error, out.ErrorDescription)
	if c.HasHeader() {
		fmt.Fprintf(w, "  %s %s\n", dimFmt(pkgoauth.HeaderWWWAuthenticate+":"), out.WWWAuthenticate)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
